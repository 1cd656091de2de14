package stout

import "strings"

// String returns the elements in order, e.g. "[A, B, C]".
func (l *List[E]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for pos, v := range l.All() {
		if pos > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(l.format(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Render returns the node structure, one parenthesized group per node with
// empty slots shown as "-", e.g. "[(A, B, C, D), (E, -, -, -)]".
func (l *List[E]) Render() string {
	return l.render(-1)
}

// RenderWithCursor is Render with the iterator position marked: "| " before
// the element NextIndex refers to, or " |" after the last element when the
// iterator is at the end. An empty list renders as "[]" with no marker.
func (l *List[E]) RenderWithCursor(it *Iterator[E]) string {
	if it == nil {
		return l.render(-1)
	}
	return l.render(it.NextIndex())
}

func (l *List[E]) render(cursor int) string {
	var sb strings.Builder
	sb.WriteByte('[')

	count := 0
	for cur := l.head.next; cur != l.tail; cur = cur.next {
		if cur != l.head.next {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for i := 0; i < l.capacity; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			if i >= cur.count {
				sb.WriteByte('-')
				continue
			}
			if cursor == count {
				sb.WriteString("| ")
			}
			sb.WriteString(l.format(cur.data[i]))
			count++
			if cursor == l.size && count == l.size {
				sb.WriteString(" |")
			}
		}
		sb.WriteByte(')')
	}

	sb.WriteByte(']')
	return sb.String()
}
