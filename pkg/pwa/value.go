package pwa

type valueKind uint8

const (
	kindUnset valueKind = iota
	kindLiteral
	kindComputed
)

// Value is either a literal or a deferred computation evaluated at
// resolution time. The zero Value is unset and leaves the lower layer in place.
type Value[T any] struct {
	kind    valueKind
	literal T
	compute func() T
}

// Literal wraps a plain value
func Literal[T any](v T) Value[T] {
	return Value[T]{kind: kindLiteral, literal: v}
}

// Computed wraps a closure; a nil closure yields an unset Value
func Computed[T any](fn func() T) Value[T] {
	if fn == nil {
		return Value[T]{}
	}
	return Value[T]{kind: kindComputed, compute: fn}
}

// IsSet reports whether the value overrides anything
func (v Value[T]) IsSet() bool {
	return v.kind != kindUnset
}

// Get returns the literal or runs the closure. Callers evaluate each field once.
func (v Value[T]) Get() T {
	if v.kind == kindComputed {
		return v.compute()
	}
	return v.literal
}
