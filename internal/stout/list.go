package stout

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
)

// List is an unrolled doubly linked list.
// Every node except the last holds at least Capacity()/2 elements.
type List[E any] struct {
	head *node[E] // sentinel, never holds data
	tail *node[E] // sentinel, never holds data
	size int

	capacity int
	order    func(a, b E) int
	format   func(E) string
	pool     *nodePool[E]
}

// location is a resolved logical position: a node and an offset inside it.
// The append point is (tail, 0).
type location[E any] struct {
	node   *node[E]
	offset int
}

// New creates an empty list.
// It returns ErrInvalidArgument if the configured capacity is not positive and even.
func New[E any](opts ...Option[E]) (*List[E], error) {
	l := &List[E]{
		capacity: DefaultCapacity,
		format:   defaultFormat[E],
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := validCapacity(l.capacity); err != nil {
		return nil, err
	}

	l.pool = newNodePool[E](l.capacity)
	l.head = &node[E]{}
	l.tail = &node[E]{}
	l.head.next = l.tail
	l.tail.prev = l.head
	return l, nil
}

// NewOrdered creates an empty list whose natural order is cmp.Compare.
func NewOrdered[E cmp.Ordered](opts ...Option[E]) (*List[E], error) {
	all := make([]Option[E], 0, len(opts)+1)
	all = append(all, WithOrder[E](cmp.Compare[E]))
	all = append(all, opts...)
	return New(all...)
}

// Len returns the number of elements.
func (l *List[E]) Len() int {
	return l.size
}

// IsEmpty reports whether the list holds no elements.
func (l *List[E]) IsEmpty() bool {
	return l.size == 0
}

// Capacity returns the number of elements a node can hold.
func (l *List[E]) Capacity() int {
	return l.capacity
}

// NodeCount returns the number of data nodes in the chain.
func (l *List[E]) NodeCount() int {
	n := 0
	for cur := l.head.next; cur != l.tail; cur = cur.next {
		n++
	}
	return n
}

// find resolves a logical position to a node and offset.
// The caller guarantees 0 <= pos <= size.
func (l *List[E]) find(pos int) location[E] {
	if pos == l.size {
		return location[E]{node: l.tail}
	}

	cur := l.head.next
	end := cur.count
	for cur != l.tail && end <= pos {
		cur = cur.next
		end += cur.count
	}
	return location[E]{node: cur, offset: pos - (end - cur.count)}
}

// link inserts n immediately after prev.
func (l *List[E]) link(prev, n *node[E]) {
	n.prev = prev
	n.next = prev.next
	prev.next.prev = n
	prev.next = n
}

// unlink detaches n from the chain.
func (l *List[E]) unlink(n *node[E]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = nil
	n.next = nil
}

// Add appends item at the end of the list.
func (l *List[E]) Add(item E) error {
	return l.Insert(l.size, item)
}

// Insert puts item before logical position pos, so that Get(pos) returns it.
// pos may equal Len() to append.
func (l *List[E]) Insert(pos int, item E) error {
	if isNil(item) {
		return fmt.Errorf("insert: nil element: %w", ErrInvalidArgument)
	}
	if pos < 0 || pos > l.size {
		return &IndexError{Op: "insert", Index: pos, Size: l.size}
	}

	l.insertAt(l.find(pos), item)
	return nil
}

// insertAt performs the structural part of an insertion at a resolved location.
func (l *List[E]) insertAt(loc location[E], item E) {
	n, offset := loc.node, loc.offset

	switch {
	case l.size == 0:
		fresh := l.pool.get()
		fresh.push(item)
		l.link(l.head, fresh)

	case offset == 0 && n.prev != l.head && !n.prev.full():
		// Between two nodes: fill the predecessor instead of shifting.
		n.prev.push(item)

	case offset == 0 && n == l.tail:
		// Appending after a full last node.
		fresh := l.pool.get()
		fresh.push(item)
		l.link(l.tail.prev, fresh)

	case !n.full():
		n.insertAt(offset, item)

	default:
		l.split(n, offset, item)
	}

	l.size++
}

// split moves the upper half of the full node n into a new successor and then
// inserts item at offset, counted from the start of n.
func (l *List[E]) split(n *node[E], offset int, item E) {
	mid := l.capacity / 2

	fresh := l.pool.get()
	l.link(n, fresh)
	for i := mid; i < l.capacity; i++ {
		fresh.push(n.data[i])
	}
	n.truncate(mid)

	if offset <= mid {
		n.insertAt(offset, item)
	} else {
		fresh.insertAt(offset-mid, item)
	}
}

// Remove deletes and returns the element at logical position pos.
func (l *List[E]) Remove(pos int) (E, error) {
	if pos < 0 || pos >= l.size {
		var zero E
		return zero, &IndexError{Op: "remove", Index: pos, Size: l.size}
	}
	return l.removeAt(l.find(pos)), nil
}

// removeAt deletes the element at a resolved location and restores the
// half-full rule by borrowing from or merging with the successor.
func (l *List[E]) removeAt(loc location[E]) E {
	n, offset := loc.node, loc.offset
	mid := l.capacity / 2
	last := n.next == l.tail

	var item E
	switch {
	case last && n.count == 1:
		item = n.data[0]
		l.unlink(n)
		l.pool.put(n)

	case last || n.count > mid:
		item = n.removeAt(offset)

	default:
		item = n.removeAt(offset)
		succ := n.next
		if succ.count > mid {
			// Borrow the successor's first element.
			n.push(succ.removeAt(0))
		} else {
			for i := 0; i < succ.count; i++ {
				n.push(succ.data[i])
			}
			l.unlink(succ)
			l.pool.put(succ)
		}
	}

	l.size--
	return item
}

// Get returns the element at logical position pos.
func (l *List[E]) Get(pos int) (E, error) {
	if pos < 0 || pos >= l.size {
		var zero E
		return zero, &IndexError{Op: "get", Index: pos, Size: l.size}
	}
	loc := l.find(pos)
	return loc.node.data[loc.offset], nil
}

// Set replaces the element at logical position pos and returns the old one.
func (l *List[E]) Set(pos int, item E) (E, error) {
	var zero E
	if isNil(item) {
		return zero, fmt.Errorf("set: nil element: %w", ErrInvalidArgument)
	}
	if pos < 0 || pos >= l.size {
		return zero, &IndexError{Op: "set", Index: pos, Size: l.size}
	}
	loc := l.find(pos)
	old := loc.node.data[loc.offset]
	loc.node.data[loc.offset] = item
	return old, nil
}

// Clear removes every element.
func (l *List[E]) Clear() {
	cur := l.head.next
	for cur != l.tail {
		next := cur.next
		l.pool.put(cur)
		cur = next
	}
	l.head.next = l.tail
	l.tail.prev = l.head
	l.size = 0
}

// Values returns the elements in order as a new slice.
func (l *List[E]) Values() []E {
	out := make([]E, 0, l.size)
	for cur := l.head.next; cur != l.tail; cur = cur.next {
		out = append(out, cur.data[:cur.count]...)
	}
	return out
}

// Nodes returns a copy of each data node's occupied slots, head to tail.
func (l *List[E]) Nodes() [][]E {
	var out [][]E
	for cur := l.head.next; cur != l.tail; cur = cur.next {
		out = append(out, append([]E(nil), cur.data[:cur.count]...))
	}
	return out
}

// All returns an iterator over positions and elements, front to back.
// The list must not be modified during iteration.
func (l *List[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		pos := 0
		for cur := l.head.next; cur != l.tail; cur = cur.next {
			for i := 0; i < cur.count; i++ {
				if !yield(pos, cur.data[i]) {
					return
				}
				pos++
			}
		}
	}
}

// Backward returns an iterator over positions and elements, back to front.
// The list must not be modified during iteration.
func (l *List[E]) Backward() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		pos := l.size - 1
		for cur := l.tail.prev; cur != l.head; cur = cur.prev {
			for i := cur.count - 1; i >= 0; i-- {
				if !yield(pos, cur.data[i]) {
					return
				}
				pos--
			}
		}
	}
}

// Check verifies the chain links, the size accounting and the half-full rule.
// It returns nil for a consistent list and an *InvariantError otherwise.
func (l *List[E]) Check() error {
	if l.head.prev != nil || l.tail.next != nil {
		return &InvariantError{Node: -1, Message: "sentinel has an outer link"}
	}

	mid := l.capacity / 2
	total := 0
	idx := 0
	prev := l.head
	for cur := l.head.next; cur != l.tail; cur = cur.next {
		if cur == nil {
			return &InvariantError{Node: idx, Message: "chain ends before tail"}
		}
		if cur.prev != prev {
			return &InvariantError{Node: idx, Message: "previous link does not match"}
		}
		if cur.count < 1 || cur.count > l.capacity {
			return &InvariantError{Node: idx, Message: fmt.Sprintf("count %d outside [1, %d]", cur.count, l.capacity)}
		}
		if cur.next != l.tail && cur.count < mid {
			return &InvariantError{Node: idx, Message: fmt.Sprintf("count %d below half of capacity %d", cur.count, l.capacity)}
		}
		total += cur.count
		prev = cur
		idx++
	}
	if l.tail.prev != prev {
		return &InvariantError{Node: -1, Message: "tail does not point at the last node"}
	}
	if total != l.size {
		return &InvariantError{Node: -1, Message: fmt.Sprintf("size %d but nodes hold %d", l.size, total)}
	}
	return nil
}

// isNil reports whether v is an absent element: a nil interface, pointer,
// channel or function.
func isNil[E any](v E) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
