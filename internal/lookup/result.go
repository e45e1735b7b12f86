// Package lookup provides the result type used by priority-ordered lookups
// where absence is an expected outcome rather than an error.
package lookup

// Result holds either a found value or the reason nothing was found.
// The zero value is a NotFound with an empty reason.
type Result[T any] struct {
	value  T
	found  bool
	reason string
}

// Found wraps a located value.
func Found[T any](v T) Result[T] {
	return Result[T]{value: v, found: true}
}

// NotFound records absence along with a human-readable reason.
func NotFound[T any](reason string) Result[T] {
	return Result[T]{reason: reason}
}

// Value returns the wrapped value and whether it was found.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.found
}

// IsFound reports whether a value was located.
func (r Result[T]) IsFound() bool {
	return r.found
}

// Reason explains why no value was found. Empty for Found results.
func (r Result[T]) Reason() string {
	return r.reason
}

// Or returns the first Found result, evaluating the fallbacks lazily in order.
// When none are found the last NotFound is returned.
func Or[T any](first Result[T], rest ...func() Result[T]) Result[T] {
	current := first
	for _, next := range rest {
		if current.found {
			return current
		}
		current = next()
	}
	return current
}
