// Package seed creates the service's collections and fills them with sample
// records on first run.
//
// Each collection moves through its own state machine:
//
//	Check -> Create -> Populate -> Done   (collection absent)
//	Check -> Done                         (collection present)
//
// so a collection that already exists is never written to, and one that is
// missing is always populated. The check and the create are separate store
// calls: two seeders racing on an empty database may both populate.
package seed

import (
	"context"
	"fmt"

	"catalog-svc/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type State int

const (
	Check State = iota
	Create
	Populate
	Done
)

func (s State) String() string {
	switch s {
	case Check:
		return "check"
	case Create:
		return "create"
	case Populate:
		return "populate"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Record is a literal document. An empty Key lets the store assign one.
type Record struct {
	Key string
	Doc any
}

type Collection struct {
	Name    string
	Records []Record
}

// Result describes what happened to one collection.
type Result struct {
	Collection  string
	Transitions []State
	Inserted    int
}

// Created reports whether this run created the collection.
func (r Result) Created() bool {
	for _, s := range r.Transitions {
		if s == Create {
			return true
		}
	}
	return false
}

type Seeder struct {
	store       store.Store
	logger      *zap.Logger
	collections []Collection
}

func New(s store.Store, logger *zap.Logger, collections ...Collection) *Seeder {
	return &Seeder{store: s, logger: logger, collections: collections}
}

// Run seeds every collection in order and stops at the first failure. The
// returned results cover every collection attempted, including the failed one.
func (s *Seeder) Run(ctx context.Context) ([]Result, error) {
	ctx, span := otel.Tracer("catalog-service").Start(ctx, "Seed")
	defer span.End()

	results := make([]Result, 0, len(s.collections))
	for _, c := range s.collections {
		res, err := s.seed(ctx, c)
		results = append(results, res)
		if err != nil {
			span.RecordError(err)
			return results, fmt.Errorf("seed %s in state %s: %w", c.Name, res.Transitions[len(res.Transitions)-1], err)
		}
		span.SetAttributes(attribute.Int("seed."+c.Name+".inserted", res.Inserted))
	}
	return results, nil
}

func (s *Seeder) seed(ctx context.Context, c Collection) (Result, error) {
	res := Result{Collection: c.Name, Transitions: []State{Check}}

	state := Check
	for state != Done {
		next, err := s.step(ctx, c, state, &res)
		if err != nil {
			return res, err
		}
		state = next
		res.Transitions = append(res.Transitions, state)
	}

	s.logger.Info("Collection seeded",
		zap.String("collection", c.Name),
		zap.Bool("created", res.Created()),
		zap.Int("inserted", res.Inserted))
	return res, nil
}

func (s *Seeder) step(ctx context.Context, c Collection, state State, res *Result) (State, error) {
	switch state {
	case Check:
		exists, err := s.store.HasCollection(ctx, c.Name)
		if err != nil {
			return state, err
		}
		if exists {
			return Done, nil
		}
		return Create, nil

	case Create:
		if err := s.store.CreateCollection(ctx, c.Name); err != nil {
			return state, err
		}
		return Populate, nil

	case Populate:
		for _, r := range c.Records {
			if _, err := s.store.Save(ctx, c.Name, r.Key, r.Doc); err != nil {
				return state, err
			}
			res.Inserted++
		}
		return Done, nil
	}
	return Done, nil
}
