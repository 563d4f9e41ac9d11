// Package schema describes request parameters declaratively and binds raw
// input against those descriptions.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Type string

const (
	String Type = "string"
	Number Type = "number"
	Object Type = "object"
)

// Source tells the router where a top-level parameter is read from.
type Source int

const (
	InPath Source = iota
	InBody
)

// Schema is a constraint tree over a named value. Fields are checked in
// declaration order.
type Schema struct {
	Name     string
	In       Source
	Type     Type
	Required bool
	// Positive requires a number strictly greater than zero.
	Positive bool
	// GreaterThan names a sibling field this number must strictly exceed.
	GreaterThan string
	Description string
	Fields      []Schema
}

// ValidationError reports the first constraint a value violated.
type ValidationError struct {
	Field      string
	Constraint string
	Message    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

var validate = validator.New()

// Validate binds raw against s. Strings bind to string, numbers to float64
// and objects to map[string]any holding only declared fields. An absent
// optional value binds to nil.
func Validate(s Schema, raw any) (any, error) {
	return bind(s, raw)
}

func bind(s Schema, raw any) (any, error) {
	if raw == nil {
		if s.Required {
			return nil, violation(s.Name, "required", "is required")
		}
		return nil, nil
	}

	switch s.Type {
	case String:
		str, ok := raw.(string)
		if !ok {
			return nil, violation(s.Name, "type", "must be a string")
		}
		if s.Required && validate.Var(str, "required") != nil {
			return nil, violation(s.Name, "required", "must not be empty")
		}
		return str, nil

	case Number:
		n, ok := toFloat(raw)
		if !ok {
			return nil, violation(s.Name, "type", "must be a number")
		}
		if s.Positive && validate.Var(n, "gt=0") != nil {
			return nil, violation(s.Name, "positive", "must be a positive number")
		}
		return n, nil

	case Object:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, violation(s.Name, "type", "must be an object")
		}
		return bindObject(s, m)
	}

	return nil, fmt.Errorf("schema %q: unsupported type %q", s.Name, s.Type)
}

func bindObject(s Schema, m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		v, err := bind(f, m[f.Name])
		if err != nil {
			return nil, err
		}
		if v != nil {
			out[f.Name] = v
		}
	}

	// Cross-field checks only run once every field passed on its own.
	for _, f := range s.Fields {
		if f.GreaterThan == "" {
			continue
		}
		v, ok := out[f.Name].(float64)
		if !ok {
			continue
		}
		other, ok := out[f.GreaterThan].(float64)
		if !ok {
			continue
		}
		if validate.VarWithValue(v, other, "gtfield") != nil {
			return nil, violation(f.Name, "greater", "must be greater than "+f.GreaterThan)
		}
	}
	return out, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func violation(field, constraint, msg string) *ValidationError {
	return &ValidationError{Field: field, Constraint: constraint, Message: msg}
}
