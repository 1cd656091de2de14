package stout

import "fmt"

// Iterator is a bidirectional cursor over a List.
//
// The cursor sits between elements: NextIndex is the position Next would
// return. Set and Delete act on the element most recently returned by Next or
// Previous (the commit point) and fail with ErrIllegalState when there is none.
// Insert and Delete clear the commit point.
//
// An Iterator is invalidated by any structural change made to the list other
// than through the iterator itself.
type Iterator[E any] struct {
	list      *List[E]
	index     int         // next position to be returned by Next
	last      location[E] // element returned by the latest Next or Previous
	committed bool
}

// Iter returns an iterator positioned before the first element.
func (l *List[E]) Iter() *Iterator[E] {
	return &Iterator[E]{list: l}
}

// IterAt returns an iterator positioned before logical position pos.
// pos may equal Len() to start at the end.
func (l *List[E]) IterAt(pos int) (*Iterator[E], error) {
	if pos < 0 || pos > l.size {
		return nil, &IndexError{Op: "iterator", Index: pos, Size: l.size}
	}
	return &Iterator[E]{list: l, index: pos}, nil
}

// HasNext reports whether Next would return an element.
func (it *Iterator[E]) HasNext() bool {
	return it.index < it.list.size
}

// HasPrevious reports whether Previous would return an element.
func (it *Iterator[E]) HasPrevious() bool {
	return it.index > 0
}

// NextIndex returns the position of the element Next would return.
func (it *Iterator[E]) NextIndex() int {
	return it.index
}

// PreviousIndex returns the position of the element Previous would return.
func (it *Iterator[E]) PreviousIndex() int {
	return it.index - 1
}

// Next returns the element after the cursor and advances past it.
func (it *Iterator[E]) Next() (E, error) {
	if !it.HasNext() {
		var zero E
		return zero, ErrNoSuchElement
	}
	loc := it.list.find(it.index)
	it.index++
	it.last = loc
	it.committed = true
	return loc.node.data[loc.offset], nil
}

// Previous returns the element before the cursor and moves back over it.
func (it *Iterator[E]) Previous() (E, error) {
	if !it.HasPrevious() {
		var zero E
		return zero, ErrNoSuchElement
	}
	it.index--
	loc := it.list.find(it.index)
	it.last = loc
	it.committed = true
	return loc.node.data[loc.offset], nil
}

// Set replaces the element most recently returned by Next or Previous.
// The list structure and size are unchanged.
func (it *Iterator[E]) Set(item E) error {
	if isNil(item) {
		return fmt.Errorf("iterator set: nil element: %w", ErrInvalidArgument)
	}
	if !it.committed {
		return fmt.Errorf("iterator set: %w", ErrIllegalState)
	}
	it.last.node.data[it.last.offset] = item
	return nil
}

// Insert puts item at the cursor; a following Next is unaffected and a
// following Previous returns item.
func (it *Iterator[E]) Insert(item E) error {
	if err := it.list.Insert(it.index, item); err != nil {
		return err
	}
	it.index++
	it.committed = false
	return nil
}

// Delete removes the element most recently returned by Next or Previous.
func (it *Iterator[E]) Delete() error {
	if !it.committed {
		return fmt.Errorf("iterator delete: %w", ErrIllegalState)
	}

	// The committed element lies before the cursor after a Next; removing it
	// shifts the cursor position left by one.
	cur := it.list.find(it.index)
	if it.last.offset < cur.offset || it.last.node == cur.node.prev {
		it.index--
	}

	it.list.removeAt(it.last)
	it.last = location[E]{}
	it.committed = false
	return nil
}
