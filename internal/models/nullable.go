package models

import "encoding/json"

// Nullable is a JSON field that distinguishes between:
// - field absent: Set=false, Valid=false
// - field present with null: Set=true, Valid=false
// - field present with value: Set=true, Valid=true
//
// Pointer fields cannot tell the first two apart, which PATCH semantics need.
type Nullable[T any] struct {
	Value T
	Valid bool // true if Value is not null
	Set   bool // true if field was present in JSON
}

// NullableOf returns a set, non-null value
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	if string(data) == "null" {
		var zero T
		n.Value = zero
		n.Valid = false
		return nil
	}

	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ToPtr returns nil for null, otherwise a pointer to a copy of Value
func (n Nullable[T]) ToPtr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
