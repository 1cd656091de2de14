package stout

import "fmt"

// DefaultCapacity is the number of elements per node when none is configured.
const DefaultCapacity = 4

// Option is a functional option for configuring a List.
type Option[E any] func(*List[E])

// WithCapacity sets the number of elements each node can hold.
// The capacity must be positive and even; New rejects anything else.
func WithCapacity[E any](n int) Option[E] {
	return func(l *List[E]) {
		l.capacity = n
	}
}

// WithOrder sets the natural order used by SortReverse and by Sort(nil).
// The function returns a negative number when a < b, zero when equal and a
// positive number when a > b.
func WithOrder[E any](cmp func(a, b E) int) Option[E] {
	return func(l *List[E]) {
		l.order = cmp
	}
}

// WithFormatter sets how elements are printed by Render and String.
func WithFormatter[E any](format func(E) string) Option[E] {
	return func(l *List[E]) {
		if format != nil {
			l.format = format
		}
	}
}

// validCapacity reports whether n can be used as a node capacity.
func validCapacity(n int) error {
	if n <= 0 || n%2 != 0 {
		return fmt.Errorf("node capacity %d must be positive and even: %w", n, ErrInvalidArgument)
	}
	return nil
}

func defaultFormat[E any](v E) string {
	return fmt.Sprint(v)
}
