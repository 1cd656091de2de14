package stout

import (
	"errors"
	"fmt"
)

// Errors returned by list and iterator operations.
var (
	// ErrInvalidArgument indicates a nil element or an unusable node capacity.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfBounds indicates a logical position outside the valid range.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrIllegalState indicates Set or Delete on an iterator without a commit point.
	ErrIllegalState = errors.New("iterator has no current element")

	// ErrNoSuchElement indicates an iterator moved past either end of the list.
	ErrNoSuchElement = errors.New("no such element")

	// ErrNoOrder indicates a sort was requested on a list without a natural order.
	ErrNoOrder = errors.New("list has no element order")
)

// IndexError describes a rejected logical position.
type IndexError struct {
	Op    string // Operation name (e.g., "insert", "remove")
	Index int
	Size  int
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of bounds for size %d", e.Op, e.Index, e.Size)
}

// Unwrap returns ErrOutOfBounds.
func (e *IndexError) Unwrap() error {
	return ErrOutOfBounds
}

// InvariantError reports a structural inconsistency found by Check.
type InvariantError struct {
	Node    int // zero-based node index, -1 for list-wide problems
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Node < 0 {
		return "stout: " + e.Message
	}
	return fmt.Sprintf("stout: node %d: %s", e.Node, e.Message)
}
