// Package mask is the per-surface compositing engine. It turns the current
// dim/blur settings and the active window cutouts into concrete fill
// geometry and backdrop filter parameters. Everything here is pure
// computation; applying the results to a window is the backend's job.
package mask

import (
	"math"
	"sort"

	"github.com/dimveil/dimveil/internal/geometry"
)

// RoundedRect is a rectangle with uniformly rounded corners, in
// surface-local coordinates.
type RoundedRect struct {
	Rect   geometry.Rect
	Radius int
}

// Fill computes the dim-fill geometry for a surface: the bounds shape minus
// every cutout, combined with even-odd parity and rasterized into
// non-overlapping horizontal bands.
//
// Even-odd parity means a point is filled when an odd number of shape
// boundaries enclose it (the bounds count as one). A single cutout covering
// the whole surface therefore yields an empty fill, and the overlap of two
// cutouts is filled again, matching the layered look of stacked windows.
func Fill(bounds RoundedRect, cutouts []RoundedRect) []geometry.Rect {
	if bounds.Rect.Empty() {
		return nil
	}

	shapes := make([]RoundedRect, 0, len(cutouts)+1)
	shapes = append(shapes, bounds)
	for _, c := range cutouts {
		// Clip to the surface so parity flips cannot occur outside it.
		clipped := geometry.Intersect(c.Rect, bounds.Rect)
		if !clipped.Empty() {
			shapes = append(shapes, RoundedRect{Rect: clipped, Radius: c.Radius})
		}
	}

	var (
		rects     []geometry.Rect
		bandStart int
		bandSpans []span
	)

	flush := func(endY int) {
		for _, s := range bandSpans {
			rects = append(rects, geometry.Rect{
				X:      s.x1,
				Y:      bandStart,
				Width:  s.x2 - s.x1,
				Height: endY - bandStart,
			})
		}
	}

	for y := bounds.Rect.Y; y < bounds.Rect.MaxY(); y++ {
		spans := scanline(shapes, y)
		if y == bounds.Rect.Y {
			bandStart, bandSpans = y, spans
			continue
		}
		if !spansEqual(spans, bandSpans) {
			flush(y)
			bandStart, bandSpans = y, spans
		}
	}
	flush(bounds.Rect.MaxY())

	return rects
}

type span struct {
	x1, x2 int
}

// scanline computes the even-odd filled x-intervals at scanline y.
// Every shape boundary crossing flips coverage parity, so the filled
// intervals are exactly the gaps between consecutive sorted edges at odd
// crossing depth.
func scanline(shapes []RoundedRect, y int) []span {
	var edges []int
	for _, s := range shapes {
		if x1, x2, ok := rowSpan(s, y); ok {
			edges = append(edges, x1, x2)
		}
	}
	if len(edges) == 0 {
		return nil
	}
	sort.Ints(edges)

	var out []span
	for i := 0; i+1 < len(edges); i += 2 {
		if edges[i] < edges[i+1] {
			out = append(out, span{x1: edges[i], x2: edges[i+1]})
		}
	}
	return mergeAdjacent(out)
}

// rowSpan returns the horizontal extent of a rounded rectangle at scanline
// y, narrowed inside the corner bands by the circular corner profile.
func rowSpan(s RoundedRect, y int) (x1, x2 int, ok bool) {
	r := s.Rect
	if y < r.Y || y >= r.MaxY() {
		return 0, 0, false
	}

	radius := cornerRadius(s)
	if radius == 0 {
		return r.X, r.MaxX(), true
	}

	// Distance of the scanline center from the nearest corner arc center.
	var dy float64
	switch {
	case y-r.Y < radius:
		dy = float64(radius) - (float64(y-r.Y) + 0.5)
	case r.MaxY()-y <= radius:
		dy = float64(radius) - (float64(r.MaxY()-y) - 0.5)
	default:
		return r.X, r.MaxX(), true
	}

	fr := float64(radius)
	inset := int(math.Ceil(fr - math.Sqrt(fr*fr-dy*dy)))
	x1 = r.X + inset
	x2 = r.MaxX() - inset
	if x2 <= x1 {
		return 0, 0, false
	}
	return x1, x2, true
}

// cornerRadius clamps the configured radius so opposing arcs never cross.
func cornerRadius(s RoundedRect) int {
	radius := s.Radius
	if radius < 0 {
		radius = 0
	}
	if m := s.Rect.Width / 2; radius > m {
		radius = m
	}
	if m := s.Rect.Height / 2; radius > m {
		radius = m
	}
	return radius
}

func mergeAdjacent(spans []span) []span {
	if len(spans) < 2 {
		return spans
	}
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.x1 <= last.x2 {
			if s.x2 > last.x2 {
				last.x2 = s.x2
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

func spansEqual(a, b []span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
