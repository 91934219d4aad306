// Package nonempty provides construction-time-checked non-empty string and
// slice wrappers standing in for the host framework's NonEmptyStr and
// NonEmptyVec, which carry their "len >= 1" invariant at the type level.
// Go has no const-generic length types, so the invariant is enforced once
// at construction and then trusted, the same tradeoff the framework's own
// glue types document for languages that can't express it statically.
package nonempty

import "errors"

// ErrEmpty is returned by every constructor in this package when given an
// empty input.
var ErrEmpty = errors.New("nonempty: value must not be empty")

// Str is a string guaranteed non-empty at construction time.
type Str struct {
	v string
}

// NewStr validates s and returns a Str, or ErrEmpty if s is empty.
func NewStr(s string) (Str, error) {
	if s == "" {
		return Str{}, ErrEmpty
	}
	return Str{v: s}, nil
}

// MustStr panics if s is empty. Use only for compile-time-known literals.
func MustStr(s string) Str {
	v, err := NewStr(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the underlying string.
func (s Str) String() string { return s.v }

// Vec is a slice guaranteed to hold at least one element at construction.
type Vec[T any] struct {
	items []T
}

// NewVec validates items and returns a Vec, or ErrEmpty if items is empty.
// The backing slice is retained, not copied.
func NewVec[T any](items []T) (Vec[T], error) {
	if len(items) == 0 {
		return Vec[T]{}, ErrEmpty
	}
	return Vec[T]{items: items}, nil
}

// Of builds a Vec from one required element plus any number of others,
// a construction path that can never fail.
func Of[T any](first T, rest ...T) Vec[T] {
	return Vec[T]{items: append([]T{first}, rest...)}
}

// Slice returns the underlying elements. Callers must not mutate the
// returned slice's length in a way that empties it out from under other
// holders; treat it as read-only.
func (v Vec[T]) Slice() []T { return v.items }

// First returns the first element, which always exists by construction.
func (v Vec[T]) First() T { return v.items[0] }

// Len returns the number of elements.
func (v Vec[T]) Len() int { return len(v.items) }
