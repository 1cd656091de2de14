// Package viewer draws a stout list in the terminal and lets the user walk
// it with an iterator, insert, delete and sort while watching nodes split,
// borrow and merge.
package viewer

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"github.com/dshills/stoutlist/internal/logging"
	"github.com/dshills/stoutlist/internal/stout"
)

const helpLine = "←/h →/l move  i insert  x delete  s sort  S reverse  c check  q quit"

// Viewer is an interactive view of a List[string].
// The caller owns the screen: it initializes it before Run and finalizes it after.
type Viewer struct {
	screen tcell.Screen
	list   *stout.List[string]
	it     *stout.Iterator[string]
	theme  Theme
	logger *logging.Logger
	id     string

	inserting bool
	input     []rune
	status    string
	failed    bool
	done      bool
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithTheme sets the theme.
func WithTheme(t Theme) Option {
	return func(v *Viewer) {
		v.theme = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// New creates a viewer over list with the iterator before the first element.
func New(screen tcell.Screen, list *stout.List[string], opts ...Option) *Viewer {
	dark, _ := ThemeByName("dark")
	v := &Viewer{
		screen: screen,
		list:   list,
		it:     list.Iter(),
		theme:  dark,
		logger: logging.Nop(),
		id:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.WithComponent("viewer").WithField("session", v.id)
	return v
}

// Status returns the current status line and whether it reports an error.
func (v *Viewer) Status() (string, bool) {
	return v.status, v.failed
}

// Cursor returns the iterator position.
func (v *Viewer) Cursor() int {
	return v.it.NextIndex()
}

// Done reports whether the user asked to quit.
func (v *Viewer) Done() bool {
	return v.done
}

// Run draws the list and handles events until the user quits or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	v.logger.Info("viewing %d elements (capacity %d)", v.list.Len(), v.list.Capacity())
	v.Draw()
	for !v.done {
		ev := v.screen.PollEvent()
		if ev == nil {
			// Screen finalized
			return nil
		}
		if _, ok := ev.(*tcell.EventInterrupt); ok && ctx.Err() != nil {
			return ctx.Err()
		}
		v.HandleEvent(ev)
		v.Draw()
	}
	return nil
}

// HandleEvent applies one terminal event.
func (v *Viewer) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		if v.inserting {
			v.handleInput(ev)
			return
		}
		v.handleKey(ev)
	}
}

func (v *Viewer) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyLeft:
		v.move(-1)
		return
	case tcell.KeyRight:
		v.move(1)
		return
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.done = true
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'h':
		v.move(-1)
	case 'l':
		v.move(1)
	case 'i':
		v.inserting = true
		v.input = v.input[:0]
		v.setStatus("", false)
	case 'x':
		v.delete()
	case 's':
		v.sort(false)
	case 'S':
		v.sort(true)
	case 'c':
		if err := v.list.Check(); err != nil {
			v.setStatus(err.Error(), true)
		} else {
			v.setStatus("structure ok", false)
		}
	case 'q':
		v.done = true
	}
}

func (v *Viewer) handleInput(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		v.inserting = false
		text := string(v.input)
		if text == "" {
			v.setStatus("nothing inserted", false)
			return
		}
		if err := v.it.Insert(text); err != nil {
			v.setStatus(err.Error(), true)
			return
		}
		v.logger.Debug("inserted %q before %d", text, v.it.NextIndex())
		v.setStatus(fmt.Sprintf("inserted %s", text), false)
	case tcell.KeyEscape:
		v.inserting = false
		v.setStatus("insert cancelled", false)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case tcell.KeyRune:
		v.input = append(v.input, ev.Rune())
	}
}

func (v *Viewer) move(dir int) {
	var (
		item string
		err  error
	)
	if dir < 0 {
		item, err = v.it.Previous()
	} else {
		item, err = v.it.Next()
	}
	if err != nil {
		v.setStatus("no element in that direction", true)
		return
	}
	v.setStatus(fmt.Sprintf("passed %s", item), false)
}

func (v *Viewer) delete() {
	if err := v.it.Delete(); err != nil {
		v.setStatus("move before deleting", true)
		return
	}
	v.logger.Debug("deleted at %d, %d nodes", v.it.NextIndex(), v.list.NodeCount())
	v.setStatus("deleted", false)
}

func (v *Viewer) sort(reverse bool) {
	var err error
	if reverse {
		err = v.list.SortReverse()
	} else {
		err = v.list.Sort(nil)
	}
	if err != nil {
		v.setStatus(err.Error(), true)
		return
	}
	// A sort rebuilds the chain; reopen the cursor at the same position.
	it, err := v.list.IterAt(min(v.it.NextIndex(), v.list.Len()))
	if err != nil {
		it = v.list.Iter()
	}
	v.it = it
	if reverse {
		v.setStatus("sorted descending", false)
	} else {
		v.setStatus("sorted", false)
	}
}

func (v *Viewer) setStatus(msg string, failed bool) {
	v.status = msg
	v.failed = failed
	if failed {
		v.logger.Warn("%s", msg)
	}
}

// Draw renders the header, one row per node, the status line and the help line.
func (v *Viewer) Draw() {
	v.screen.SetStyle(v.theme.Base)
	v.screen.Clear()
	w, h := v.screen.Size()

	header := fmt.Sprintf(" stoutlist  capacity %d  size %d  nodes %d  cursor %d",
		v.list.Capacity(), v.list.Len(), v.list.NodeCount(), v.it.NextIndex())
	v.fill(0, v.theme.Header, w)
	v.drawText(0, 0, v.theme.Header, header)

	cursor := v.it.NextIndex()
	pos := 0
	row := 2
	for i, node := range v.list.Nodes() {
		if row >= h-2 {
			break
		}
		x := v.drawText(0, row, v.theme.Label, fmt.Sprintf("%3d ", i))
		for slot := 0; slot < v.list.Capacity(); slot++ {
			x = v.drawText(x, row, v.theme.Base, " ")
			if slot >= len(node) {
				x = v.drawText(x, row, v.theme.Empty, "-")
				continue
			}
			style := v.theme.Slot
			if pos == cursor {
				style = v.theme.Cursor
			}
			x = v.drawText(x, row, style, node[slot])
			pos++
			if cursor == v.list.Len() && pos == cursor {
				x = v.drawText(x, row, v.theme.Cursor, "|")
			}
		}
		row++
	}

	status, style := v.status, v.theme.Status
	if v.failed {
		style = v.theme.Error
	}
	if v.inserting {
		status = "insert: " + string(v.input)
	}
	v.drawText(0, h-2, style, status)
	v.drawText(0, h-1, v.theme.Label, helpLine)
	v.screen.Show()
}

func (v *Viewer) fill(y int, style tcell.Style, w int) {
	v.drawText(0, y, style, strings.Repeat(" ", w))
}

// drawText draws s from column x and returns the column after it.
// Text is cut at the right edge of the screen.
func (v *Viewer) drawText(x, y int, style tcell.Style, s string) int {
	w, _ := v.screen.Size()
	g := uniseg.NewGraphemes(s)
	for g.Next() && x < w {
		runes := g.Runes()
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += max(g.Width(), 1)
	}
	return x
}
