package store

import (
	"context"
	"errors"

	"catalog-svc/circuitbreaker"
)

// Guarded routes every call through a circuit breaker. An open circuit is
// reported as an *Error so callers treat it like any other store failure.
type Guarded struct {
	next    Store
	breaker *circuitbreaker.CircuitBreaker
}

func Guard(next Store, breaker *circuitbreaker.CircuitBreaker) *Guarded {
	return &Guarded{next: next, breaker: breaker}
}

func (g *Guarded) HasCollection(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		exists, err = g.next.HasCollection(ctx, name)
		return err
	})
	return exists, g.wrap("has-collection", name, err)
}

func (g *Guarded) CreateCollection(ctx context.Context, name string) error {
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.CreateCollection(ctx, name)
	})
	return g.wrap("create-collection", name, err)
}

func (g *Guarded) Save(ctx context.Context, collection, key string, doc any) (string, error) {
	var saved string
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		saved, err = g.next.Save(ctx, collection, key, doc)
		return err
	})
	return saved, g.wrap("save", collection, err)
}

func (g *Guarded) Find(ctx context.Context, q RangeQuery) ([]Document, error) {
	var docs []Document
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		docs, err = g.next.Find(ctx, q)
		return err
	})
	return docs, g.wrap("find", q.Collection, err)
}

func (g *Guarded) wrap(op, collection string, err error) error {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return &Error{Op: op, Collection: collection, Err: err}
	}
	return err
}
