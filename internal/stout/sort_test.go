package stout

import (
	"cmp"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"
)

// assertPacked checks that every node but the last is full.
func assertPacked[E any](t *testing.T, l *List[E]) {
	t.Helper()
	nodes := l.Nodes()
	for i, n := range nodes {
		if i < len(nodes)-1 && len(n) != l.Capacity() {
			t.Errorf("node %d holds %d elements, want %d", i, len(n), l.Capacity())
		}
	}
	if err := l.Check(); err != nil {
		t.Error(err)
	}
}

// fragment removes every third element so the list has partly filled nodes.
func fragment(t *testing.T, l *List[int]) {
	t.Helper()
	for pos := l.Len() - 1; pos >= 0; pos -= 3 {
		if _, err := l.Remove(pos); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSort(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, capacity := range []int{2, 4, 10} {
		values := make([]int, 57)
		for i := range values {
			values[i] = rng.Intn(30)
		}
		l := newInts(t, capacity, values...)
		fragment(t, l)
		before := l.Values()

		if err := l.Sort(nil); err != nil {
			t.Fatalf("Sort() error = %v", err)
		}

		got := l.Values()
		if !slices.IsSorted(got) {
			t.Errorf("capacity %d: Sort() result not ascending: %v", capacity, got)
		}
		slices.Sort(before)
		if !slices.Equal(got, before) {
			t.Errorf("capacity %d: Sort() changed the elements", capacity)
		}
		assertPacked(t, l)
	}
}

func TestSortStable(t *testing.T) {
	type pair struct {
		key   int
		label string
	}
	l, err := New[pair]()
	if err != nil {
		t.Fatal(err)
	}
	input := []pair{{2, "a"}, {1, "b"}, {2, "c"}, {1, "d"}, {0, "e"}, {2, "f"}}
	for _, p := range input {
		if err := l.Add(p); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.Sort(nil); !errors.Is(err, ErrNoOrder) {
		t.Errorf("Sort(nil) without order error = %v, want ErrNoOrder", err)
	}
	if err := l.SortReverse(); !errors.Is(err, ErrNoOrder) {
		t.Errorf("SortReverse() without order error = %v, want ErrNoOrder", err)
	}
	if l.Len() != len(input) {
		t.Fatalf("failed sort changed Len() to %d", l.Len())
	}

	err = l.Sort(func(a, b pair) int { return cmp.Compare(a.key, b.key) })
	if err != nil {
		t.Fatal(err)
	}
	var labels strings.Builder
	for _, p := range l.All() {
		labels.WriteString(p.label)
	}
	if got := labels.String(); got != "ebdacf" {
		t.Errorf("sorted labels = %q, want %q", got, "ebdacf")
	}
	assertPacked(t, l)
}

func TestSortReverse(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	values := make([]int, 33)
	for i := range values {
		values[i] = rng.Intn(100)
	}
	l := newInts(t, 4, values...)
	fragment(t, l)
	before := l.Values()

	if err := l.SortReverse(); err != nil {
		t.Fatal(err)
	}
	got := l.Values()
	want := slices.Clone(before)
	slices.SortFunc(want, func(a, b int) int { return cmp.Compare(b, a) })
	if !slices.Equal(got, want) {
		t.Errorf("SortReverse() = %v, want %v", got, want)
	}
	assertPacked(t, l)
}

func TestSortWithOrderOption(t *testing.T) {
	byLen := func(a, b string) int { return cmp.Compare(len(a), len(b)) }
	l, err := New(WithOrder(byLen), WithCapacity[string](2))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"ccc", "a", "dddd", "bb"} {
		if err := l.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.SortReverse(); err != nil {
		t.Fatal(err)
	}
	if got := l.String(); got != "[dddd, ccc, bb, a]" {
		t.Errorf("SortReverse() = %s", got)
	}
	if err := l.Sort(nil); err != nil {
		t.Fatal(err)
	}
	assertNodes(t, l, [][]string{{"a", "bb"}, {"ccc", "dddd"}})
}

func TestSortEmptyAndSingle(t *testing.T) {
	l := newInts(t, 4)
	if err := l.Sort(nil); err != nil {
		t.Fatal(err)
	}
	if err := l.SortReverse(); err != nil {
		t.Fatal(err)
	}
	assertNodes(t, l, nil)

	if err := l.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := l.SortReverse(); err != nil {
		t.Fatal(err)
	}
	assertNodes(t, l, [][]int{{1}})
}

func TestInsertionSortHelpers(t *testing.T) {
	s := []int{5, 2, 4, 6, 1, 3}
	insertionSort(s, cmp.Compare[int])
	if !slices.Equal(s, []int{1, 2, 3, 4, 5, 6}) {
		t.Errorf("insertionSort = %v", s)
	}
	bubbleSortDescending(s, cmp.Compare[int])
	if !slices.Equal(s, []int{6, 5, 4, 3, 2, 1}) {
		t.Errorf("bubbleSortDescending = %v", s)
	}
}

func TestSortPanickingComparisonLeavesListIntact(t *testing.T) {
	l := newInts(t, 4, 3, 1, 2, 5, 4)
	before := l.Nodes()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("comparison panic was swallowed")
			}
		}()
		_ = l.Sort(func(a, b int) int { panic("boom") })
	}()

	assertNodes(t, l, before)
}
