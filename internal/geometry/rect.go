// Package geometry provides the rectangle math shared by the tracker,
// the overlay surfaces, and the masking engine.
//
// All engine-facing coordinates use bottom-left-origin screen space.
// The X11 backend converts to and from the server's top-left-origin
// space at the boundary (see FlipY).
package geometry

// Rect describes a rectangular region. In screen space the origin is the
// bottom-left corner of the primary display's coordinate system.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() int { return r.X + r.Width }

// MaxY returns the exclusive top edge.
func (r Rect) MaxY() int { return r.Y + r.Height }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Translate returns the rectangle shifted by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersects reports whether a and b overlap with positive area.
func Intersects(a, b Rect) bool {
	return a.X < b.MaxX() && a.MaxX() > b.X && a.Y < b.MaxY() && a.MaxY() > b.Y
}

// Intersect returns the overlap of a and b. The zero Rect is returned when
// they do not overlap.
func Intersect(a, b Rect) Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.MaxX(), b.MaxX())
	y2 := min(a.MaxY(), b.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// FlipY converts a rectangle between top-left-origin and bottom-left-origin
// coordinate spaces of total height `height`. The conversion is its own
// inverse: applying it twice yields the original rectangle.
func FlipY(r Rect, height int) Rect {
	return Rect{
		X:      r.X,
		Y:      height - r.Y - r.Height,
		Width:  r.Width,
		Height: r.Height,
	}
}
