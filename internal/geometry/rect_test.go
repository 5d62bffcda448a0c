package geometry

import "testing"

func TestIntersectDisjoint(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 200, Y: 0, Width: 50, Height: 50}

	if Intersects(a, b) {
		t.Fatalf("expected no intersection")
	}
	if got := Intersect(a, b); !got.Empty() {
		t.Fatalf("expected empty intersection, got %+v", got)
	}
}

func TestIntersectPartialOverlap(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	b := Rect{X: 1800, Y: 100, Width: 400, Height: 300}

	got := Intersect(a, b)
	want := Rect{X: 1800, Y: 100, Width: 120, Height: 300}
	if got != want {
		t.Fatalf("Intersect = %+v, want %+v", got, want)
	}
}

func TestIntersectTouchingEdgesIsEmpty(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 100, Y: 0, Width: 100, Height: 100}

	if Intersects(a, b) {
		t.Fatalf("rects sharing only an edge should not intersect")
	}
}

func TestFlipYRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		r      Rect
		height int
		want   Rect
	}{
		{
			name:   "window near top of a 1080p screen",
			r:      Rect{X: 100, Y: 50, Width: 400, Height: 300},
			height: 1080,
			want:   Rect{X: 100, Y: 730, Width: 400, Height: 300},
		},
		{
			name:   "full screen maps to itself",
			r:      Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			height: 1080,
			want:   Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FlipY(tc.r, tc.height)
			if got != tc.want {
				t.Fatalf("FlipY = %+v, want %+v", got, tc.want)
			}
			if back := FlipY(got, tc.height); back != tc.r {
				t.Fatalf("FlipY round trip = %+v, want %+v", back, tc.r)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	r := Rect{X: 1800, Y: 100, Width: 400, Height: 300}
	got := r.Translate(-1920, 0)
	want := Rect{X: -120, Y: 100, Width: 400, Height: 300}
	if got != want {
		t.Fatalf("Translate = %+v, want %+v", got, want)
	}
}
