package stout

import "sync"

// node is a fixed-capacity run of elements in the chain.
// Slots [0, count) are occupied; slots [count, len(data)) hold the zero value.
type node[E any] struct {
	data  []E
	count int
	next  *node[E]
	prev  *node[E]
}

// full reports whether the node has no free slot.
func (n *node[E]) full() bool {
	return n.count == len(n.data)
}

// push appends item at the first free slot.
// Precondition: !n.full().
func (n *node[E]) push(item E) {
	n.data[n.count] = item
	n.count++
}

// insertAt puts item at offset, shifting later elements one slot right.
// Precondition: !n.full() and 0 <= offset <= count.
func (n *node[E]) insertAt(offset int, item E) {
	copy(n.data[offset+1:n.count+1], n.data[offset:n.count])
	n.data[offset] = item
	n.count++
}

// removeAt deletes the element at offset, shifting later elements one slot left.
// Precondition: 0 <= offset < count.
func (n *node[E]) removeAt(offset int) E {
	var zero E
	item := n.data[offset]
	copy(n.data[offset:n.count-1], n.data[offset+1:n.count])
	n.count--
	n.data[n.count] = zero
	return item
}

// truncate drops every element from offset on.
func (n *node[E]) truncate(offset int) {
	clear(n.data[offset:n.count])
	n.count = offset
}

// nodePool recycles nodes of a single capacity.
type nodePool[E any] struct {
	pool sync.Pool
}

func newNodePool[E any](capacity int) *nodePool[E] {
	return &nodePool[E]{
		pool: sync.Pool{
			New: func() interface{} {
				return &node[E]{data: make([]E, capacity)}
			},
		},
	}
}

// get retrieves an empty, unlinked node.
func (p *nodePool[E]) get() *node[E] {
	return p.pool.Get().(*node[E])
}

// put returns a node to the pool.
// The node must already be unlinked and should not be used afterwards.
func (p *nodePool[E]) put(n *node[E]) {
	if n == nil {
		return
	}
	clear(n.data)
	n.count = 0
	n.next = nil
	n.prev = nil
	p.pool.Put(n)
}
