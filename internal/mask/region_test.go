package mask

import (
	"testing"

	"github.com/dimveil/dimveil/internal/geometry"
)

func rr(x, y, w, h int) RoundedRect {
	return RoundedRect{Rect: geometry.Rect{X: x, Y: y, Width: w, Height: h}}
}

func fillArea(rects []geometry.Rect) int {
	total := 0
	for _, r := range rects {
		total += r.Width * r.Height
	}
	return total
}

func coveredAt(rects []geometry.Rect, x, y int) bool {
	for _, r := range rects {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}

func TestFillNoCutouts(t *testing.T) {
	bounds := rr(0, 0, 100, 50)
	rects := Fill(bounds, nil)
	if len(rects) != 1 || rects[0] != bounds.Rect {
		t.Fatalf("Fill with no cutouts = %v, want [%v]", rects, bounds.Rect)
	}
}

func TestFillEmptyBounds(t *testing.T) {
	if rects := Fill(rr(0, 0, 0, 0), []RoundedRect{rr(0, 0, 10, 10)}); rects != nil {
		t.Fatalf("empty bounds produced fill %v", rects)
	}
}

func TestFillCoveringCutout(t *testing.T) {
	bounds := rr(0, 0, 100, 100)
	if rects := Fill(bounds, []RoundedRect{bounds}); len(rects) != 0 {
		t.Fatalf("cutout covering the surface produced fill %v", rects)
	}
	// Oversized cutouts are clipped to the surface first, so one window
	// spanning past the edges still empties the fill.
	big := rr(-50, -50, 200, 200)
	if rects := Fill(bounds, []RoundedRect{big}); len(rects) != 0 {
		t.Fatalf("oversized cutout produced fill %v", rects)
	}
}

func TestFillCenteredCutout(t *testing.T) {
	bounds := rr(0, 0, 100, 100)
	rects := Fill(bounds, []RoundedRect{rr(25, 25, 50, 50)})

	if got, want := fillArea(rects), 100*100-50*50; got != want {
		t.Fatalf("fill area = %d, want %d", got, want)
	}
	for _, p := range [][2]int{{10, 50}, {50, 10}, {90, 50}, {50, 90}} {
		if !coveredAt(rects, p[0], p[1]) {
			t.Errorf("point %v outside the cutout should be dimmed", p)
		}
	}
	if coveredAt(rects, 50, 50) {
		t.Errorf("center of the cutout should be clear")
	}
}

func TestFillOverlappingCutoutsRefill(t *testing.T) {
	// Even-odd parity: the overlap of two cutouts is enclosed by three
	// boundaries (bounds plus both cutouts) and is dimmed again.
	bounds := rr(0, 0, 100, 100)
	rects := Fill(bounds, []RoundedRect{rr(10, 10, 40, 40), rr(30, 30, 40, 40)})

	if !coveredAt(rects, 40, 40) {
		t.Errorf("overlap of both cutouts should be dimmed")
	}
	if coveredAt(rects, 20, 20) {
		t.Errorf("area of the first cutout only should be clear")
	}
	if coveredAt(rects, 60, 60) {
		t.Errorf("area of the second cutout only should be clear")
	}
	if !coveredAt(rects, 5, 5) {
		t.Errorf("area outside both cutouts should be dimmed")
	}
}

func TestFillCutoutOutsideBounds(t *testing.T) {
	bounds := rr(0, 0, 100, 100)
	rects := Fill(bounds, []RoundedRect{rr(200, 0, 50, 50)})
	if len(rects) != 1 || rects[0] != bounds.Rect {
		t.Fatalf("cutout outside the surface changed the fill: %v", rects)
	}
}

func TestFillCutoutStraddlingEdge(t *testing.T) {
	bounds := rr(0, 0, 100, 100)
	rects := Fill(bounds, []RoundedRect{rr(-25, 40, 50, 20)})

	if got, want := fillArea(rects), 100*100-25*20; got != want {
		t.Fatalf("fill area = %d, want %d", got, want)
	}
	for _, r := range rects {
		if r.X < 0 || r.Y < 0 || r.MaxX() > 100 || r.MaxY() > 100 {
			t.Fatalf("fill rect %v extends past the surface", r)
		}
	}
	if coveredAt(rects, 10, 50) {
		t.Errorf("clipped cutout interior should be clear")
	}
	if !coveredAt(rects, 30, 50) {
		t.Errorf("area beyond the clipped cutout should be dimmed")
	}
}

func TestFillBandsDisjoint(t *testing.T) {
	bounds := rr(0, 0, 200, 120)
	rects := Fill(bounds, []RoundedRect{rr(20, 10, 60, 80), rr(100, 30, 60, 60)})
	for i, a := range rects {
		for _, b := range rects[i+1:] {
			if geometry.Intersects(a, b) {
				t.Fatalf("fill bands overlap: %v and %v", a, b)
			}
		}
	}
}

func TestFillRoundedBoundsInsetCorners(t *testing.T) {
	bounds := RoundedRect{Rect: geometry.Rect{Width: 100, Height: 100}, Radius: 10}
	rects := Fill(bounds, nil)

	if coveredAt(rects, 0, 0) {
		t.Errorf("corner pixel should sit outside the rounded fill")
	}
	if !coveredAt(rects, 50, 0) {
		t.Errorf("edge midpoint should be filled")
	}
	if !coveredAt(rects, 0, 50) {
		t.Errorf("side midpoint outside the corner band should be filled")
	}
	if !coveredAt(rects, 50, 50) {
		t.Errorf("center should be filled")
	}
	if got, full := fillArea(rects), 100*100; got >= full {
		t.Errorf("rounded fill area = %d, want less than %d", got, full)
	}
}

func TestFillRoundedCutout(t *testing.T) {
	bounds := rr(0, 0, 100, 100)
	cut := RoundedRect{Rect: geometry.Rect{X: 20, Y: 20, Width: 60, Height: 60}, Radius: 12}
	rects := Fill(bounds, []RoundedRect{cut})

	// The cutout's corner arcs leave its corner pixels dimmed while the
	// straight edges stay clear.
	if !coveredAt(rects, 20, 20) {
		t.Errorf("rounded cutout corner should remain dimmed")
	}
	if coveredAt(rects, 50, 50) {
		t.Errorf("cutout center should be clear")
	}
	if coveredAt(rects, 50, 20) {
		t.Errorf("cutout edge midpoint should be clear")
	}
	square := 100*100 - 60*60
	if got := fillArea(rects); got <= square {
		t.Errorf("fill area = %d, want more than %d for a rounded cutout", got, square)
	}
}
