package render

import "sort"

// Color is an RGBA tint, each channel 0-255.
type Color struct {
	R, G, B, A uint8
}

// White is the default tint.
var White = Color{255, 255, 255, 255}

// RGBA clamps script-supplied channels into a Color.
func RGBA(r, g, b, a int) Color {
	return Color{clamp(r), clamp(g), clamp(b), clamp(a)}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// ImageRequest draws an image in world space, through the camera.
type ImageRequest struct {
	Image          string
	X, Y           float64
	Rotation       float64 // degrees, clockwise
	ScaleX, ScaleY float64
	PivotX, PivotY float64
	Tint           Color
	SortingOrder   int
}

// UIRequest draws an image in screen space.
type UIRequest struct {
	Image        string
	X, Y         int
	Tint         Color
	SortingOrder int
}

// TextRequest draws text in screen space. Text is drawn in request order.
type TextRequest struct {
	Text  string
	X, Y  int
	Font  string
	Size  int
	Color Color
}

// PixelRequest sets one screen-space point.
type PixelRequest struct {
	X, Y  int
	Color Color
}

// Queues collects the draw requests of one frame. Scripts fill them during
// the update phases; the render phase sorts, presents and resets them.
type Queues struct {
	Images []ImageRequest
	UI     []UIRequest
	Text   []TextRequest
	Pixels []PixelRequest
}

func NewQueues() *Queues {
	return &Queues{
		Images: make([]ImageRequest, 0, 64),
		UI:     make([]UIRequest, 0, 16),
		Text:   make([]TextRequest, 0, 16),
		Pixels: make([]PixelRequest, 0, 64),
	}
}

func (q *Queues) DrawImage(r ImageRequest) { q.Images = append(q.Images, r) }
func (q *Queues) DrawUI(r UIRequest)       { q.UI = append(q.UI, r) }
func (q *Queues) DrawText(r TextRequest)   { q.Text = append(q.Text, r) }
func (q *Queues) DrawPixel(r PixelRequest) { q.Pixels = append(q.Pixels, r) }

// Sort orders image and UI requests by sorting order. Requests sharing an
// order keep submission order.
func (q *Queues) Sort() {
	sort.SliceStable(q.Images, func(i, j int) bool {
		return q.Images[i].SortingOrder < q.Images[j].SortingOrder
	})
	sort.SliceStable(q.UI, func(i, j int) bool {
		return q.UI[i].SortingOrder < q.UI[j].SortingOrder
	})
}

// Reset empties every queue, keeping capacity.
func (q *Queues) Reset() {
	q.Images = q.Images[:0]
	q.UI = q.UI[:0]
	q.Text = q.Text[:0]
	q.Pixels = q.Pixels[:0]
}

// Len returns the total number of queued requests.
func (q *Queues) Len() int {
	return len(q.Images) + len(q.UI) + len(q.Text) + len(q.Pixels)
}
