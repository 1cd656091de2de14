package stout

// Sort reorders the list into non-decreasing order using cmp, keeping equal
// elements in their original order. A nil cmp uses the list's natural order.
// Afterwards every node except possibly the last is full.
func (l *List[E]) Sort(cmp func(a, b E) int) error {
	if cmp == nil {
		cmp = l.order
	}
	if cmp == nil {
		return ErrNoOrder
	}

	items := l.Values()
	insertionSort(items, cmp)
	l.refill(items)
	return nil
}

// SortReverse reorders the list into non-increasing order using the list's
// natural order. Afterwards every node except possibly the last is full.
func (l *List[E]) SortReverse() error {
	if l.order == nil {
		return ErrNoOrder
	}

	items := l.Values()
	bubbleSortDescending(items, l.order)
	l.refill(items)
	return nil
}

// refill replaces the contents with items, appending through the regular
// insertion path, which packs every node before allocating the next.
// The comparison runs on a copy before refill, so a panicking comparison
// leaves the list as it was.
func (l *List[E]) refill(items []E) {
	l.Clear()
	for _, v := range items {
		l.insertAt(l.find(l.size), v)
	}
}

// insertionSort sorts s in non-decreasing order; equal elements keep their order.
func insertionSort[E any](s []E, cmp func(a, b E) int) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && cmp(s[j], v) > 0 {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}

// bubbleSortDescending sorts s in non-increasing order, stopping after the
// first pass without swaps.
func bubbleSortDescending[E any](s []E, cmp func(a, b E) int) {
	for i := 1; i < len(s); i++ {
		swapped := false
		for j := 0; j < len(s)-i; j++ {
			if cmp(s[j], s[j+1]) < 0 {
				s[j], s[j+1] = s[j+1], s[j]
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}
