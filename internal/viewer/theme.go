package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the styles used to draw the viewer.
type Theme struct {
	Name   string
	Base   tcell.Style
	Header tcell.Style
	Label  tcell.Style
	Slot   tcell.Style
	Empty  tcell.Style
	Cursor tcell.Style
	Status tcell.Style
	Error  tcell.Style
}

type palette struct {
	bg, fg, accent, muted, err string
}

var palettes = map[string]palette{
	"dark":  {bg: "#1e1e2e", fg: "#cdd6f4", accent: "#89b4fa", muted: "#585b70", err: "#f38ba8"},
	"light": {bg: "#eff1f5", fg: "#4c4f69", accent: "#1e66f5", muted: "#9ca0b0", err: "#d20f39"},
}

// ThemeByName returns the "dark" or "light" theme.
func ThemeByName(name string) (Theme, error) {
	p, ok := palettes[name]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q", name)
	}

	bg, fg := mustHex(p.bg), mustHex(p.fg)
	accent, muted, errc := mustHex(p.accent), mustHex(p.muted), mustHex(p.err)
	// The header band sits a quarter of the way from the background to the accent.
	band := bg.BlendLab(accent, 0.25).Clamped()

	base := tcell.StyleDefault.Background(toTcell(bg)).Foreground(toTcell(fg))
	return Theme{
		Name:   name,
		Base:   base,
		Header: base.Background(toTcell(band)).Bold(true),
		Label:  base.Foreground(toTcell(muted)),
		Slot:   base,
		Empty:  base.Foreground(toTcell(muted)).Dim(true),
		Cursor: base.Background(toTcell(accent)).Foreground(toTcell(bg)).Bold(true),
		Status: base.Foreground(toTcell(accent)),
		Error:  base.Foreground(toTcell(errc)).Bold(true),
	}, nil
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("viewer: bad palette color %q: %v", s, err))
	}
	return c
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
