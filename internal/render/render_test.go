package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/vmath"
)

func TestQueuesSortIsStable(t *testing.T) {
	q := NewQueues()
	q.DrawImage(ImageRequest{Image: "b", SortingOrder: 2})
	q.DrawImage(ImageRequest{Image: "a1", SortingOrder: 1})
	q.DrawImage(ImageRequest{Image: "a2", SortingOrder: 1})
	q.DrawUI(UIRequest{Image: "top", SortingOrder: 9})
	q.DrawUI(UIRequest{Image: "bottom", SortingOrder: -1})
	q.DrawText(TextRequest{Text: "x"})
	q.DrawPixel(PixelRequest{})
	q.Sort()

	var got []string
	for _, r := range q.Images {
		got = append(got, r.Image)
	}
	if len(got) != 3 || got[0] != "a1" || got[1] != "a2" || got[2] != "b" {
		t.Errorf("images = %v", got)
	}
	if q.UI[0].Image != "bottom" {
		t.Errorf("ui = %+v", q.UI)
	}
	if q.Len() != 7 {
		t.Errorf("Len = %d", q.Len())
	}
	q.Reset()
	if q.Len() != 0 {
		t.Errorf("Len after Reset = %d", q.Len())
	}
}

func TestRGBAClamps(t *testing.T) {
	if c := RGBA(-5, 300, 7, 255); c != (Color{R: 0, G: 255, B: 7, A: 255}) {
		t.Errorf("RGBA = %+v", c)
	}
}

func TestWorldToScreen(t *testing.T) {
	cam := NewCamera()
	cam.Position = vmath.V(10, 0)
	x, y, ok := cam.WorldToScreen(vmath.V(12, 1), 80, 24, 2, 1)
	if !ok || x != 44 || y != 13 {
		t.Errorf("got %d,%d,%v", x, y, ok)
	}
	cam.SetZoom(2)
	if x, _, _ = cam.WorldToScreen(vmath.V(12, 0), 80, 24, 2, 1); x != 48 {
		t.Errorf("zoomed x = %d", x)
	}
	cam.SetZoom(-1)
	if cam.Zoom != 2 {
		t.Error("negative zoom accepted")
	}
	if _, _, ok = cam.WorldToScreen(vmath.V(-100, 0), 80, 24, 2, 1); ok {
		t.Error("off-screen point visible")
	}
}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	ss.SetSize(80, 24)
	if err := ss.Init(); err != nil {
		t.Fatalf("SimulationScreen.Init: %v", err)
	}
	t.Cleanup(ss.Fini)
	return ss
}

func TestTerminalPresenter(t *testing.T) {
	ss := newScreen(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "glyphs.yaml")
	if err := os.WriteFile(path, []byte("ball:\n  symbol: \"@\"\n  color: yellow\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	glyphs, err := data.LoadGlyphTable(path)
	if err != nil {
		t.Fatal(err)
	}
	p := NewTerminalPresenter(ss, glyphs, 160, 48)

	q := NewQueues()
	q.DrawImage(ImageRequest{Image: "ball", X: 1, Y: 2, Tint: White})
	q.DrawImage(ImageRequest{Image: "crate", X: 0, Y: 0, Tint: White})
	q.DrawImage(ImageRequest{Image: "far", X: 500, Y: 0, Tint: White})
	q.DrawUI(UIRequest{Image: "_9", X: 0, Y: 0, Tint: White})
	q.DrawText(TextRequest{Text: "hi", X: 20, Y: 10, Color: White})
	if err := p.Present(q, NewCamera()); err != nil {
		t.Fatal(err)
	}

	cell := func(x, y int) rune {
		r, _, _, _ := ss.GetContent(x, y)
		return r
	}
	if got := cell(42, 14); got != '@' {
		t.Errorf("ball glyph = %q", got)
	}
	if got := cell(40, 12); got != 'C' {
		t.Errorf("fallback glyph = %q", got)
	}
	if got := cell(0, 0); got != '9' {
		t.Errorf("ui glyph = %q", got)
	}
	if cell(10, 5) != 'h' || cell(11, 5) != 'i' {
		t.Errorf("text = %q%q", cell(10, 5), cell(11, 5))
	}
}

func TestHeadlessPresenterCounts(t *testing.T) {
	h := &HeadlessPresenter{}
	q := NewQueues()
	q.DrawText(TextRequest{Text: "a"})
	q.DrawPixel(PixelRequest{})
	_ = h.Present(q, NewCamera())
	_ = h.Present(NewQueues(), NewCamera())
	if h.Frames != 2 || h.Requests != 2 {
		t.Errorf("frames=%d requests=%d", h.Frames, h.Requests)
	}
}

func TestFallbackSymbol(t *testing.T) {
	for in, want := range map[string]string{"player": "P", "_x": "X", "": "?", "--": "?"} {
		if got := fallbackSymbol(in); got != want {
			t.Errorf("fallbackSymbol(%q) = %q", in, got)
		}
	}
}
