// Package store keeps schema-free JSON documents in named collections.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Document is a stored record: its key and its JSON body.
type Document struct {
	Key  string
	Body json.RawMessage
}

// RangeQuery selects documents whose numeric Field lies strictly between
// Min and Max. Backends pass Field, Min and Max as bind parameters.
type RangeQuery struct {
	Collection string
	Field      string
	Min        float64
	Max        float64
}

type Store interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	// CreateCollection creates the collection if it does not exist yet.
	CreateCollection(ctx context.Context, name string) error
	// Save inserts doc under key, generating a key when key is empty.
	Save(ctx context.Context, collection, key string, doc any) (string, error)
	// Find returns matching documents in store-defined order.
	Find(ctx context.Context, q RangeQuery) ([]Document, error)
}

// Error wraps any failure of the underlying database.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
