// seehuhn.de/go/labelmask - rasterise image annotation shapes
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package labelmask

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func pts(coords ...float64) []vec.Vec2 {
	res := make([]vec.Vec2, len(coords)/2)
	for i := range res {
		res[i] = vec.Vec2{X: coords[2*i], Y: coords[2*i+1]}
	}
	return res
}

func mustRasterize(t *testing.T, h, w int, s Shape) *Mask {
	t.Helper()
	m, err := Rasterize(h, w, s)
	if err != nil {
		t.Fatal(err)
	}
	if m.Height() != h || m.Width() != w {
		t.Fatalf("mask is %dx%d, want %dx%d", m.Height(), m.Width(), h, w)
	}
	return m
}

func TestRectangleScenario(t *testing.T) {
	m := mustRasterize(t, 10, 10, Shape{Kind: Rectangle, Points: pts(2, 2, 7, 7)})
	for y := range 10 {
		for x := range 10 {
			want := x >= 2 && x <= 7 && y >= 2 && y <= 7
			if m.At(x, y) != want {
				t.Errorf("pixel (%d,%d) = %t, want %t", x, y, m.At(x, y), want)
			}
		}
	}
}

func TestRectangleCorners(t *testing.T) {
	// all four corner orders give the same closed box
	ref := mustRasterize(t, 20, 20, Shape{Kind: Rectangle, Points: pts(3.2, 4, 15, 11.5)})
	for _, p := range [][]vec.Vec2{
		pts(15, 11.5, 3.2, 4),
		pts(3.2, 11.5, 15, 4),
		pts(15, 4, 3.2, 11.5),
	} {
		m := mustRasterize(t, 20, 20, Shape{Kind: Rectangle, Points: p})
		if !m.Equal(ref) {
			t.Errorf("corners %v give a different mask", p)
		}
	}
	if ref.Count() != 12*8 {
		t.Errorf("%d pixels set, want 96", ref.Count())
	}
}

func TestPointScenario(t *testing.T) {
	m := mustRasterize(t, 10, 10, Shape{Kind: Point, Points: pts(5, 5), PointRadius: 1})
	want := map[[2]int]bool{{5, 5}: true, {4, 5}: true, {6, 5}: true, {5, 4}: true, {5, 6}: true}
	for y := range 10 {
		for x := range 10 {
			if m.At(x, y) != want[[2]int{x, y}] {
				t.Errorf("pixel (%d,%d) = %t", x, y, m.At(x, y))
			}
		}
	}
}

func TestPointDefaultRadius(t *testing.T) {
	m := mustRasterize(t, 20, 20, Shape{Kind: Point, Points: pts(10, 10)})
	if !m.At(15, 10) || m.At(16, 10) || !m.At(10, 5) || m.At(10, 4) {
		t.Error("default point radius is not 5")
	}
}

func TestPointZeroRadius(t *testing.T) {
	// zero selects the default, a single pixel needs a one-point linestrip
	zero := mustRasterize(t, 20, 20, Shape{Kind: Point, Points: pts(10, 10)})
	five := mustRasterize(t, 20, 20, Shape{Kind: Point, Points: pts(10, 10), PointRadius: DefaultPointRadius})
	if !zero.Equal(five) {
		t.Error("zero radius differs from the default radius")
	}
	dot := mustRasterize(t, 20, 20, Shape{Kind: LineStrip, Points: pts(10, 10)})
	if dot.Count() != 1 || !dot.At(10, 10) {
		t.Errorf("one-point linestrip sets %d pixels", dot.Count())
	}
}

func TestCircle(t *testing.T) {
	for _, s := range []Shape{
		{Kind: Circle, Points: pts(16, 16, 16, 6)},
		{Kind: Circle, Points: pts(10.5, 20.25, 14, 17)},
		{Kind: Circle, Points: pts(3, 3, 3.2, 3.1)},
		{Kind: Circle, Points: pts(16, 16, 16, 16)},
	} {
		m := mustRasterize(t, 32, 32, s)
		c := s.Points[0]
		r := s.Points[1].Sub(c).Length()

		cx, cy := int(math.Round(c.X)), int(math.Round(c.Y))
		if c.X == float64(cx) && c.Y == float64(cy) && !m.At(cx, cy) {
			t.Errorf("%v: centre pixel not set", s.Points)
		}
		for y := range 32 {
			for x := range 32 {
				d := vec.Vec2{X: float64(x), Y: float64(y)}.Sub(c).Length()
				if d > r+1 && m.At(x, y) {
					t.Errorf("%v: pixel (%d,%d) at distance %g is set", s.Points, x, y, d)
				}
				if d < r-1e-6 && !m.At(x, y) {
					t.Errorf("%v: pixel (%d,%d) at distance %g is not set", s.Points, x, y, d)
				}
			}
		}
	}
}

func TestLineWidthRows(t *testing.T) {
	for _, width := range []int{1, 3, 10} {
		m := mustRasterize(t, 64, 64, Shape{Kind: Line, Points: pts(8, 30, 56, 30), LineWidth: width})
		n := 0
		for y := range 64 {
			if m.At(32, y) {
				n++
			}
		}
		if n != width {
			t.Errorf("width %d: %d rows covered", width, n)
		}
	}

	// the default width is 10
	m := mustRasterize(t, 64, 64, Shape{Kind: LineStrip, Points: pts(8, 30, 56, 30)})
	if got := len(rowsCovered(m, 32)); got != DefaultLineWidth {
		t.Errorf("default width: %d rows covered", got)
	}
}

func TestLineDirection(t *testing.T) {
	// Turning a line by 90 degrees must not change its width.
	for _, width := range []int{1, 2, 10} {
		horizontal := mustRasterize(t, 64, 64, Shape{Kind: Line, Points: pts(10, 30, 50, 30), LineWidth: width})
		vertical := mustRasterize(t, 64, 64, Shape{Kind: Line, Points: pts(30, 10, 30, 50), LineWidth: width})

		cols := 0
		for x := range 64 {
			if vertical.At(x, 40) {
				cols++
			}
		}
		if rows := len(rowsCovered(horizontal, 40)); rows != width || cols != width {
			t.Errorf("width %d: %d rows, %d columns covered", width, rows, cols)
		}
		for y := range 64 {
			for x := range 64 {
				if horizontal.At(x, y) != vertical.At(y, x) {
					t.Fatalf("width %d: pixel (%d,%d) differs from its transpose", width, x, y)
				}
			}
		}
	}
}

func TestThinLineConnected(t *testing.T) {
	// A line narrower than a pixel still sets every pixel along its path.
	m := mustRasterize(t, 64, 64, Shape{Kind: Line, Points: pts(3.3, 60.2, 61.7, 2.6), LineWidth: 1})
	for x := 4; x <= 61; x++ {
		if len(rowsCovered(m, x)) == 0 {
			t.Errorf("column %d is empty", x)
		}
	}
	if !m.At(3, 60) || !m.At(62, 3) {
		t.Error("end points not set")
	}
}

func TestLineStripSinglePoint(t *testing.T) {
	m := mustRasterize(t, 10, 10, Shape{Kind: LineStrip, Points: pts(4.2, 6.7)})
	if m.Count() != 1 || !m.At(4, 7) {
		t.Errorf("%d pixels set", m.Count())
	}
}

func TestPolygonOutline(t *testing.T) {
	tri := Shape{Kind: Polygon, Points: pts(2.5, 3.2, 28.7, 8.1, 9.4, 27.9)}
	m := mustRasterize(t, 32, 32, tri)

	// vertices
	for _, p := range tri.Points {
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		if !m.At(x, y) {
			t.Errorf("vertex pixel (%d,%d) not set", x, y)
		}
	}
	// edges, including the closing edge
	for i := range tri.Points {
		a, b := tri.Points[i], tri.Points[(i+1)%len(tri.Points)]
		for k := 0; k <= 20; k++ {
			p := a.Add(b.Sub(a).Mul(float64(k) / 20))
			x, y := int(math.Round(p.X)), int(math.Round(p.Y))
			if !m.At(x, y) && !m.At(x+1, y) && !m.At(x-1, y) && !m.At(x, y+1) && !m.At(x, y-1) {
				t.Errorf("no pixel near edge point %v", p)
			}
		}
	}
	// interior
	if !m.At(13, 13) {
		t.Error("interior pixel not set")
	}
}

func TestPolygonClosedSquare(t *testing.T) {
	// With the outline traced, a square is closed on all four sides.
	m := mustRasterize(t, 10, 10, Shape{Kind: Polygon, Points: pts(2, 2, 6, 2, 6, 6, 2, 6)})
	if m.Count() != 25 {
		t.Errorf("%d pixels set, want 25", m.Count())
	}
}

func TestPolygonFillRule(t *testing.T) {
	var star []vec.Vec2
	for _, i := range []int{0, 2, 4, 1, 3} {
		angle := float64(i)*2*math.Pi/5 - math.Pi/2
		star = append(star, vec.Vec2{X: 32 + 25*math.Cos(angle), Y: 32 + 25*math.Sin(angle)})
	}
	s := Shape{Kind: Polygon, Points: star}

	evenOdd, err := RasterizeWith(64, 64, s, Options{Rule: EvenOdd})
	if err != nil {
		t.Fatal(err)
	}
	nonZero, err := RasterizeWith(64, 64, s, Options{Rule: NonZero})
	if err != nil {
		t.Fatal(err)
	}
	def := mustRasterize(t, 64, 64, s)

	if !def.Equal(evenOdd) {
		t.Error("default fill rule is not even-odd")
	}
	if evenOdd.At(32, 32) || !nonZero.At(32, 32) {
		t.Error("fill rules give the wrong centre")
	}
}

func TestRasterizeErrors(t *testing.T) {
	cases := []struct {
		name   string
		s      Shape
		detail string
	}{
		{"point with 2 points", Shape{Kind: Point, Points: pts(1, 1, 2, 2)}, "exactly 1"},
		{"circle with 3 points", Shape{Kind: Circle, Points: pts(1, 1, 2, 2, 3, 3)}, "exactly 2"},
		{"rectangle with 1 point", Shape{Kind: Rectangle, Points: pts(1, 1)}, "exactly 2"},
		{"line with 3 points", Shape{Kind: Line, Points: pts(1, 1, 2, 2, 3, 3)}, "exactly 2"},
		{"empty linestrip", Shape{Kind: LineStrip}, "at least 1"},
		{"polygon with 2 points", Shape{Kind: Polygon, Points: pts(1, 1, 5, 5)}, "more than 2"},
		{"unknown kind", Shape{Kind: Kind(42), Points: pts(1, 1, 2, 2, 3, 3)}, "unknown shape kind"},
		{"negative width", Shape{Kind: Line, Points: pts(1, 1, 5, 5), LineWidth: -1}, "line width"},
		{"negative radius", Shape{Kind: Point, Points: pts(1, 1), PointRadius: -3}, "point radius"},
		{"NaN", Shape{Kind: Rectangle, Points: pts(1, math.NaN(), 5, 5)}, "non-finite"},
		{"Inf", Shape{Kind: Polygon, Points: pts(1, 1, 5, 5, math.Inf(1), 2)}, "non-finite"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Rasterize(10, 10, tc.s)
			if m != nil {
				t.Error("partial result returned")
			}
			var shapeErr *InvalidShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("got %v, want *InvalidShapeError", err)
			}
			if !strings.Contains(err.Error(), tc.detail) {
				t.Errorf("error %q does not mention %q", err, tc.detail)
			}
		})
	}
}

func TestRasterizeDimensions(t *testing.T) {
	valid := Shape{Kind: Point, Points: pts(1, 1)}
	invalid := Shape{Kind: Point, Points: pts(1, 1, 2, 2)}

	for _, size := range [][2]int{{0, 100}, {100, 0}, {-5, 5}} {
		for _, s := range []Shape{valid, invalid} {
			m, err := Rasterize(size[0], size[1], s)
			var dimErr *InvalidDimensionsError
			if !errors.As(err, &dimErr) {
				t.Errorf("size %v: got %v, want *InvalidDimensionsError", size, err)
				continue
			}
			if m != nil {
				t.Error("partial result returned")
			}
			if dimErr.Height != size[0] || dimErr.Width != size[1] {
				t.Errorf("error reports %dx%d", dimErr.Height, dimErr.Width)
			}
		}
	}
}

func TestRasterizeTooLarge(t *testing.T) {
	s := Shape{Kind: Rectangle, Points: pts(0, 0, 10, 10)}
	for _, size := range [][2]int{
		{math.MaxInt, math.MaxInt}, // the product overflows
		{math.MaxInt / 2, 3},
		{MaxPixels, 2},
		{1 << 20, 1 << 20},
	} {
		m, err := Rasterize(size[0], size[1], s)
		var dimErr *InvalidDimensionsError
		if !errors.As(err, &dimErr) || dimErr.Limit != MaxPixels {
			t.Errorf("size %v: got %v, want pixel limit error", size, err)
		}
		if m != nil {
			t.Errorf("size %v: mask returned", size)
		}
	}
}

func TestCheckDimensions(t *testing.T) {
	cases := []struct {
		height, width, max int
		ok                 bool
	}{
		{10, 10, 100, true},
		{10, 11, 100, false},
		{1, 100, 100, true},
		{100, 1, 99, false},
		{0, 10, 100, false},
		{math.MaxInt, math.MaxInt, MaxPixels, false},
	}
	for _, tc := range cases {
		err := CheckDimensions(tc.height, tc.width, tc.max)
		if (err == nil) != tc.ok {
			t.Errorf("CheckDimensions(%d, %d, %d) = %v", tc.height, tc.width, tc.max, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	for tag, want := range map[string]Kind{
		"":          Polygon,
		"polygon":   Polygon,
		"circle":    Circle,
		"rectangle": Rectangle,
		"line":      Line,
		"linestrip": LineStrip,
		"point":     Point,
	} {
		got, err := ParseKind(tag)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", tag, got, err)
		}
		if tag != "" && got.String() != tag {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}

	for _, tag := range []string{"mask", "Polygon", "points", "ellipse"} {
		_, err := ParseKind(tag)
		var shapeErr *InvalidShapeError
		if !errors.As(err, &shapeErr) || shapeErr.Tag != tag {
			t.Errorf("ParseKind(%q): got %v", tag, err)
		}
	}
	if s := Kind(17).String(); s != "Kind(17)" {
		t.Errorf("Kind(17).String() = %q", s)
	}
}

func TestRasterizeIdempotent(t *testing.T) {
	shapes := []Shape{
		{Kind: Polygon, Points: pts(3, 4, 50, 10, 30, 60, 10, 40)},
		{Kind: LineStrip, Points: pts(5, 5, 60, 20, 5, 50), LineWidth: 7},
		{Kind: Circle, Points: pts(30, 30, 45, 41)},
	}
	for _, s := range shapes {
		a := mustRasterize(t, 64, 64, s)
		b := mustRasterize(t, 64, 64, s)
		if !a.Equal(b) {
			t.Errorf("%v: repeated calls differ", s.Kind)
		}
	}
}

func TestRasterizeConcurrent(t *testing.T) {
	s := Shape{Kind: LineStrip, Points: pts(5, 5, 120, 40, 10, 120), LineWidth: 9}
	want := mustRasterize(t, 128, 128, s)

	var wg sync.WaitGroup
	results := make([]*Mask, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Rasterize(128, 128, s)
		}()
	}
	wg.Wait()

	for i, m := range results {
		if m == nil || !m.Equal(want) {
			t.Errorf("goroutine %d gave a different result", i)
		}
	}
}

func TestRasterizeDoesNotModifyShape(t *testing.T) {
	s := Shape{Kind: Polygon, Points: pts(1, 1, 9, 2, 5, 8)}
	orig := append([]vec.Vec2(nil), s.Points...)
	mustRasterize(t, 10, 10, s)
	for i := range orig {
		if s.Points[i] != orig[i] {
			t.Fatal("Rasterize modified the shape points")
		}
	}
}
