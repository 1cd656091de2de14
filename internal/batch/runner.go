package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dshills/stoutlist/internal/logging"
	"github.com/dshills/stoutlist/internal/stout"
)

// Step is the outcome of one operation.
type Step struct {
	Index  int
	Op     Op
	Result string // element returned by remove, get, set, next or previous
	Err    error
	Render string // list structure after the op, with the cursor if one is open
}

// Report is the outcome of a plan.
type Report struct {
	Plan     string
	Capacity int
	Initial  string
	Steps    []Step
	Final    []string
}

// Failed returns the steps that returned an error.
func (r *Report) Failed() []Step {
	var out []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// WriteTo writes a human-readable transcript.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "plan %s (capacity %d)\n", r.Plan, r.Capacity)
	fmt.Fprintf(&sb, "  start  %s\n", r.Initial)
	for _, s := range r.Steps {
		fmt.Fprintf(&sb, "%3d %-18s", s.Index, s.Op)
		switch {
		case s.Err != nil:
			fmt.Fprintf(&sb, " error: %v\n", s.Err)
			continue
		case s.Result != "":
			fmt.Fprintf(&sb, " -> %s", s.Result)
		}
		fmt.Fprintf(&sb, "  %s\n", s.Render)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Runner replays plans.
type Runner struct {
	logger   *logging.Logger
	capacity int
}

// NewRunner creates a runner. capacity is used for plans that do not set one.
func NewRunner(capacity int, logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{
		logger:   logger.WithComponent("batch"),
		capacity: capacity,
	}
}

// Run applies every op of p to a fresh list.
// It returns an error only when p fails validation, when the list cannot be built, when ctx is done or
// when p.Check finds a broken invariant.
func (r *Runner) Run(ctx context.Context, p *Plan) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", p.Name, err)
	}

	capacity := p.Capacity
	if capacity == 0 {
		capacity = r.capacity
	}
	l, err := stout.NewOrdered(stout.WithCapacity[string](capacity))
	if err != nil {
		return nil, err
	}
	for _, v := range p.Values {
		if err := l.Add(v); err != nil {
			return nil, err
		}
	}

	log := r.logger.WithFields(map[string]any{"plan": p.Name, "session": uuid.NewString()})
	log.Info("running %d ops", len(p.Ops))

	rep := &Report{Plan: p.Name, Capacity: capacity, Initial: l.Render()}
	var it *stout.Iterator[string]

	for i, op := range p.Ops {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		step := Step{Index: i, Op: op}
		step.Result, step.Err = apply(l, &it, op)
		step.Render = l.RenderWithCursor(it)
		if step.Err != nil {
			log.Warn("op %d %s: %v", i, op, step.Err)
		} else {
			log.Debug("op %d %s -> %s", i, op, step.Render)
		}
		rep.Steps = append(rep.Steps, step)

		if p.Check {
			if err := l.Check(); err != nil {
				return rep, fmt.Errorf("after op %d %s: %w", i, op, err)
			}
		}
	}

	rep.Final = l.Values()
	log.Info("finished with %d elements, %d failed ops", l.Len(), len(rep.Failed()))
	return rep, nil
}

// apply runs one op. *it is the open cursor, replaced by iter and dropped by
// any structural change made outside it.
func apply(l *stout.List[string], it **stout.Iterator[string], op Op) (string, error) {
	switch op.Op {
	case OpAdd:
		*it = nil
		return "", l.Add(*op.Value)
	case OpInsert:
		*it = nil
		return "", l.Insert(*op.Pos, *op.Value)
	case OpRemove:
		*it = nil
		return l.Remove(*op.Pos)
	case OpGet:
		return l.Get(*op.Pos)
	case OpSet:
		return l.Set(*op.Pos, *op.Value)
	case OpClear:
		*it = nil
		l.Clear()
		return "", nil
	case OpSort:
		*it = nil
		if op.Value != nil {
			// A value names the language whose collation orders the elements.
			tag, err := language.Parse(*op.Value)
			if err != nil {
				return "", fmt.Errorf("sort: %w", err)
			}
			return "", l.Sort(collate.New(tag).CompareString)
		}
		return "", l.Sort(nil)
	case OpSortReverse:
		*it = nil
		return "", l.SortReverse()
	case OpRender:
		return "", nil
	case OpIter:
		pos := 0
		if op.Pos != nil {
			pos = *op.Pos
		}
		next, err := l.IterAt(pos)
		if err != nil {
			return "", err
		}
		*it = next
		return "", nil
	}

	// Cursor operations
	if *it == nil {
		return "", fmt.Errorf("%s: no open iterator", op.Op)
	}
	switch op.Op {
	case OpNext:
		return (*it).Next()
	case OpPrevious:
		return (*it).Previous()
	case OpIterSet:
		return "", (*it).Set(*op.Value)
	case OpIterInsert:
		return "", (*it).Insert(*op.Value)
	case OpDelete:
		return "", (*it).Delete()
	}
	return "", fmt.Errorf("%q: %w", op.Op, ErrUnknownOp)
}
