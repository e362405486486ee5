// Package nullable provides an explicit value-or-null type and the null
// layouts the engine uses to mark absent values in collections.
package nullable

import (
	"cmp"
	"errors"
	"fmt"
)

// ErrNull is returned when a null value is used where a value is required.
var ErrNull = errors.New("nullable: value is null")

// Nullable holds either a valid value or null.
type Nullable[T any] struct {
	value T
	valid bool
}

// Valid wraps a present value.
func Valid[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, valid: true}
}

// Null returns the absent value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{}
}

// FromOption converts a comma-ok pair.
func FromOption[T any](v T, ok bool) Nullable[T] {
	if !ok {
		return Null[T]()
	}
	return Valid(v)
}

// FromPointer treats nil as null.
func FromPointer[T any](p *T) Nullable[T] {
	if p == nil {
		return Null[T]()
	}
	return Valid(*p)
}

func (n Nullable[T]) IsValid() bool { return n.valid }

func (n Nullable[T]) IsNull() bool { return !n.valid }

// Option returns the value and whether it is present.
func (n Nullable[T]) Option() (T, bool) { return n.value, n.valid }

// Pointer returns a pointer to a copy of the value, or nil.
func (n Nullable[T]) Pointer() *T {
	if !n.valid {
		return nil
	}
	v := n.value
	return &v
}

// Unwrap returns the value and panics on null.
func (n Nullable[T]) Unwrap() T {
	return n.Expect("called Unwrap on a null value")
}

// Expect returns the value and panics with msg on null.
func (n Nullable[T]) Expect(msg string) T {
	if !n.valid {
		panic(msg)
	}
	return n.value
}

// UnwrapOr returns the value or def.
func (n Nullable[T]) UnwrapOr(def T) T {
	if !n.valid {
		return def
	}
	return n.value
}

// ValidOr returns the value, or err when null.
func (n Nullable[T]) ValidOr(err error) (T, error) {
	if !n.valid {
		var zero T
		return zero, err
	}
	return n.value, nil
}

func (n Nullable[T]) String() string {
	if !n.valid {
		return "Null"
	}
	return fmt.Sprintf("Valid(%v)", n.value)
}

// Map applies f to a valid value.
func Map[T, U any](n Nullable[T], f func(T) U) Nullable[U] {
	if !n.valid {
		return Null[U]()
	}
	return Valid(f(n.value))
}

// AndThen applies f to a valid value and flattens the result.
func AndThen[T, U any](n Nullable[T], f func(T) Nullable[U]) Nullable[U] {
	if !n.valid {
		return Null[U]()
	}
	return f(n.value)
}

// Equal reports whether both are null or both are valid with equal values.
func Equal[T comparable](a, b Nullable[T]) bool {
	if a.valid != b.valid {
		return false
	}
	return !a.valid || a.value == b.value
}

// Compare orders two valid values. When either side is null the pair is
// incomparable and ok is false.
func Compare[T cmp.Ordered](a, b Nullable[T]) (c int, ok bool) {
	if !a.valid || !b.valid {
		return 0, false
	}
	return cmp.Compare(a.value, b.value), true
}
