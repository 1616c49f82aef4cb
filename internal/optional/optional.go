// Package optional provides a tri-state value used in partial update requests.
//
// A Value distinguishes between a field that was not supplied, a field that was explicitly
// set to null and a field that was set to a value. Unlike the zero value of T, an unset Value
// can not be confused with a legitimate falsy value such as 0, false or "".
package optional

import (
	"bytes"
	"encoding/json"
)

type Value[T any] struct {
	value T
	set   bool
	null  bool
}

// Some returns a Value holding v
func Some[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// Null returns a Value that was explicitly cleared
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// Get returns the value and true when a non-null value was supplied
func (v Value[T]) Get() (T, bool) {
	if !v.set || v.null {
		var zero T
		return zero, false
	}
	return v.value, true
}

// Or returns the supplied value or def when the field was unset or null
func (v Value[T]) Or(def T) T {
	if val, ok := v.Get(); ok {
		return val
	}
	return def
}

// IsSet reports whether the field was present (a null counts as present)
func (v Value[T]) IsSet() bool {
	return v.set
}

// IsZero reports whether the field was not supplied (used by the omitzero json option)
func (v Value[T]) IsZero() bool {
	return !v.set
}

// IsNull reports whether the field was explicitly set to null
func (v Value[T]) IsNull() bool {
	return v.set && v.null
}

// Apply assigns the supplied value to dst. It returns false when the field was null,
// so the caller can decide whether clearing is permitted for this field.
func (v Value[T]) Apply(dst *T) bool {
	if !v.set {
		return true
	}
	if v.null {
		return false
	}
	*dst = v.value
	return true
}

// ApplyNullable assigns the supplied value to dst, setting dst to nil when the field was null.
func (v Value[T]) ApplyNullable(dst **T) {
	if !v.set {
		return
	}
	if v.null {
		*dst = nil
		return
	}
	val := v.value
	*dst = &val
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.null = true
		var zero T
		v.value = zero
		return nil
	}
	v.null = false
	return json.Unmarshal(data, &v.value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
