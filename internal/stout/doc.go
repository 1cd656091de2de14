// Package stout provides an unrolled doubly linked list.
//
// A stout list stores up to Capacity elements per node instead of one, which
// cuts per-element pointer overhead while keeping insertion and removal near a
// known position cheap. Every node except the last holds at least Capacity/2
// elements. Insertion fills the previous node before allocating, splits a full
// node in half when it has to, and removal borrows one element from the
// successor or merges with it when a node would fall below half full.
//
// Key features:
//   - Positional Insert, Remove, Get and Set
//   - A bidirectional Iterator with in-place Set, Insert and Delete
//   - Sort (stable, caller-supplied order) and SortReverse (natural order)
//   - Render for inspecting node boundaries while debugging
//
// Basic usage:
//
//	l, _ := stout.NewOrdered[string]()
//	l.Add("b")
//	l.Add("a")
//	l.Sort(nil)
//	fmt.Println(l.Render()) // [(a, b, -, -)]
//
// A List is not safe for concurrent use. An Iterator is only valid while the
// list is mutated exclusively through that iterator.
package stout
