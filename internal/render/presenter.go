package render

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/vmath"
	"github.com/mattn/go-runewidth"
)

// Presenter turns one frame of sorted requests into output.
type Presenter interface {
	Present(q *Queues, cam *Camera) error
}

// HeadlessPresenter discards frames, counting what it was handed.
type HeadlessPresenter struct {
	Frames   int
	Requests int
}

func (h *HeadlessPresenter) Present(q *Queues, _ *Camera) error {
	h.Frames++
	h.Requests += q.Len()
	return nil
}

// TerminalPresenter draws requests onto a tcell screen. Screen-space
// coordinates are given in a virtual widthxheight pixel space and scaled to
// the terminal; world units are two columns by one row at zoom 1, so square
// glyphs stay square.
type TerminalPresenter struct {
	screen        tcell.Screen
	glyphs        *data.GlyphTable
	width, height int // virtual resolution of UI, text and pixel coordinates
}

const (
	unitCols = 2
	unitRows = 1
)

func NewTerminalPresenter(screen tcell.Screen, glyphs *data.GlyphTable, width, height int) *TerminalPresenter {
	return &TerminalPresenter{screen: screen, glyphs: glyphs, width: width, height: height}
}

func (p *TerminalPresenter) Present(q *Queues, cam *Camera) error {
	p.screen.Clear()
	w, h := p.screen.Size()

	for _, r := range q.Images {
		sx, sy, ok := cam.WorldToScreen(vmath.V(r.X, r.Y), w, h, unitCols, unitRows)
		if !ok {
			continue
		}
		p.putGlyph(sx, sy, r.Image, r.Tint)
	}
	for _, r := range q.UI {
		sx, sy := p.toCell(r.X, r.Y, w, h)
		p.putGlyph(sx, sy, r.Image, r.Tint)
	}
	for _, r := range q.Text {
		sx, sy := p.toCell(r.X, r.Y, w, h)
		p.drawText(sx, sy, r.Text, tcell.StyleDefault.Foreground(toColor(r.Color)))
	}
	for _, r := range q.Pixels {
		sx, sy := p.toCell(r.X, r.Y, w, h)
		p.screen.SetContent(sx, sy, ' ', nil, tcell.StyleDefault.Background(toColor(r.Color)))
	}

	p.screen.Show()
	return nil
}

// toCell scales a virtual pixel coordinate to a terminal cell.
func (p *TerminalPresenter) toCell(x, y, w, h int) (int, int) {
	if p.width <= 0 || p.height <= 0 {
		return x, y
	}
	return x * w / p.width, y * h / p.height
}

func (p *TerminalPresenter) putGlyph(x, y int, image string, tint Color) {
	symbol := fallbackSymbol(image)
	style := tcell.StyleDefault.Foreground(toColor(tint))
	if g, ok := p.glyphs.Get(image); ok {
		if g.Symbol != "" {
			symbol = g.Symbol
		}
		if g.Color != "" {
			style = style.Foreground(tcell.GetColor(g.Color))
		}
	}
	runes := []rune(symbol)
	if len(runes) == 0 {
		return
	}
	var combc []rune
	if len(runes) > 1 {
		combc = runes[1:]
	}
	p.screen.SetContent(x, y, runes[0], combc, style)
	if runewidth.StringWidth(symbol) == 2 {
		// Fill the second column to avoid rendering artifacts.
		p.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

func (p *TerminalPresenter) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		p.screen.SetContent(col, y, ch, nil, style)
		col += runewidth.RuneWidth(ch)
	}
}

func fallbackSymbol(image string) string {
	for _, ch := range image {
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			return string(unicode.ToUpper(ch))
		}
	}
	return "?"
}

func toColor(c Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
