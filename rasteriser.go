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
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// edge is a non-horizontal polygon edge.
type edge struct {
	x0, y0 float64 // start point
	x1, y1 float64 // end point
	dxdy   float64 // (x1-x0)/(y1-y0)
	dir    int     // +1 if the edge runs downwards, -1 if upwards
}

// crossing is the intersection of an edge with a scanline.
type crossing struct {
	x   float64
	dir int
}

// FillRule selects how the interior of a self-intersecting polygon is
// determined.
type FillRule int

const (
	// EvenOdd sets a pixel if a ray from its centre crosses the outline
	// an odd number of times.
	EvenOdd FillRule = iota

	// NonZero sets a pixel if the winding number of the outline around
	// its centre is not zero.
	NonZero
)

func (r FillRule) String() string {
	switch r {
	case EvenOdd:
		return "evenodd"
	case NonZero:
		return "nonzero"
	default:
		return "FillRule(?)"
	}
}

// Rasteriser converts polygons, polylines, disks and boxes into pixel
// spans. A pixel is covered when its centre lies inside the shape or on
// its boundary.
//
// Output is delivered through an emit callback, one half-open span
// [x0, x1) of row y at a time. Spans are clipped to Clip. Spans of one
// call may touch or overlap.
//
// Internal buffers grow as needed and are reused between calls.
// A Rasteriser is not safe for concurrent use.
type Rasteriser struct {
	// Clip bounds the output. Coordinates must be integer-aligned;
	// pixel (x, y) is inside if LLx <= x < URx and LLy <= y < URy.
	Clip rect.Rect

	// Rule is the fill rule used by FillPolygon.
	Rule FillRule

	// Width is the stroke width. Must be positive for Stroke.
	Width float64

	// Cap is the style of stroke end points.
	Cap graphics.LineCapStyle

	// Join is the style of stroke corners.
	Join graphics.LineJoinStyle

	// MiterLimit caps the length of miter joins. Must be at least 1.
	MiterLimit float64

	// Flatness is the maximal distance between an arc and its polygonal
	// approximation, used for round caps and joins. Must be positive.
	Flatness float64

	edges         []edge
	activeIdx     []int
	crossings     []crossing
	stroke        []vec.Vec2      // stroke outline vertices, all polygons contiguous
	strokeOffsets []int           // start index of each polygon in stroke
	segs          []strokeSegment // stroke segments in path order
	rsegs         []strokeSegment // the same segments, reversed

	edgeBBoxFirst bool
	edgeYMin      float64
	edgeYMax      float64
}

// NewRasteriser returns a Rasteriser for the given clip rectangle.
// Strokes default to width 1 with butt caps and bevel joins, which is
// how labelme draws lines.
func NewRasteriser(clip rect.Rect) *Rasteriser {
	r := &Rasteriser{}
	r.Reset(clip)
	return r
}

// Reset restores the default parameters and sets a new clip rectangle.
// Buffer capacity is kept.
func (r *Rasteriser) Reset(clip rect.Rect) {
	r.Clip = clip
	r.Rule = EvenOdd
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinBevel
	r.MiterLimit = defaultMiterLimit
	r.Flatness = defaultFlatness

	r.edges = r.edges[:0]
	r.activeIdx = r.activeIdx[:0]
	r.crossings = r.crossings[:0]
	r.stroke = r.stroke[:0]
	r.strokeOffsets = r.strokeOffsets[:0]
	r.segs = r.segs[:0]
	r.rsegs = r.rsegs[:0]
}

// clipBounds returns the clip rectangle as half-open integer ranges.
func (r *Rasteriser) clipBounds() (xMin, xMax, yMin, yMax int) {
	return int(r.Clip.LLx), int(r.Clip.URx), int(r.Clip.LLy), int(r.Clip.URy)
}

// FillPolygon fills the closed polygon with vertices pts, using Rule.
// The closing edge from the last point back to the first is implied.
func (r *Rasteriser) FillPolygon(pts []vec.Vec2, emit func(y, x0, x1 int)) {
	r.edges = r.edges[:0]
	r.edgeBBoxFirst = true
	for i := range pts {
		r.addEdge(pts[i], pts[(i+1)%len(pts)])
	}
	r.fillEdges(r.Rule, true, emit)
}

// addEdge appends the edge from p0 to p1 to the edge list.
func (r *Rasteriser) addEdge(p0, p1 vec.Vec2) {
	// Horizontal edges never cross a scanline.
	dy := p1.Y - p0.Y
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	dir := 1
	if dy < 0 {
		dir = -1
	}

	r.edges = append(r.edges, edge{
		x0: p0.X, y0: p0.Y,
		x1: p1.X, y1: p1.Y,
		dxdy: (p1.X - p0.X) / dy,
		dir:  dir,
	})

	lo, hi := min(p0.Y, p1.Y), max(p0.Y, p1.Y)
	if r.edgeBBoxFirst {
		r.edgeYMin, r.edgeYMax = lo, hi
		r.edgeBBoxFirst = false
	} else {
		r.edgeYMin = min(r.edgeYMin, lo)
		r.edgeYMax = max(r.edgeYMax, hi)
	}
}

// fillEdges scans the collected edges with an active edge list.
//
// An edge covers the scanlines y with yMin <= y < yMax, so a vertex
// shared by two edges is counted once and horizontal edges are never
// needed. If closedRight is false, rows use the same half-open rule,
// so that the result does not change when the shape is transposed.
func (r *Rasteriser) fillEdges(rule FillRule, closedRight bool, emit func(y, x0, x1 int)) {
	if len(r.edges) == 0 {
		return
	}
	xMin, xMax, yMin, yMax := r.clipBounds()

	yFirst := clampFloor(math.Ceil(r.edgeYMin), yMin, yMax)
	yLast := clampFloor(math.Ceil(r.edgeYMax), yMin, yMax)
	if yFirst >= yLast {
		return
	}

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(min(a.y0, a.y1), min(b.y0, b.y1))
	})

	r.activeIdx = r.activeIdx[:0]
	nextEdge := 0
	for y := yFirst; y < yLast; y++ {
		yf := float64(y)

		for nextEdge < len(r.edges) {
			e := &r.edges[nextEdge]
			if min(e.y0, e.y1) > yf {
				break
			}
			r.activeIdx = append(r.activeIdx, nextEdge)
			nextEdge++
		}

		r.crossings = r.crossings[:0]
		for i := 0; i < len(r.activeIdx); {
			e := &r.edges[r.activeIdx[i]]
			if max(e.y0, e.y1) <= yf {
				// swap-remove
				r.activeIdx[i] = r.activeIdx[len(r.activeIdx)-1]
				r.activeIdx = r.activeIdx[:len(r.activeIdx)-1]
				continue
			}
			r.crossings = append(r.crossings, crossing{
				x:   e.x0 + e.dxdy*(yf-e.y0),
				dir: e.dir,
			})
			i++
		}
		if len(r.crossings) < 2 {
			continue
		}

		slices.SortFunc(r.crossings, func(a, b crossing) int {
			return cmp.Compare(a.x, b.x)
		})

		winding := 0
		for i := range len(r.crossings) - 1 {
			if rule == EvenOdd {
				winding ^= 1
			} else {
				winding += r.crossings[i].dir
			}
			if winding == 0 {
				continue
			}
			xa, xb := r.crossings[i].x, r.crossings[i+1].x
			if closedRight {
				r.emitSpan(y, xa, xb, xMin, xMax, emit)
			} else {
				r.emitHalfOpen(y, xa, xb, xMin, xMax, emit)
			}
		}
	}
}

// emitSpan emits the pixels of row y whose centres lie in [xa, xb].
func (r *Rasteriser) emitSpan(y int, xa, xb float64, xMin, xMax int, emit func(y, x0, x1 int)) {
	x0 := clampFloor(math.Ceil(xa-spanEpsilon), xMin, xMax)
	x1 := clampFloor(math.Floor(xb+spanEpsilon)+1, xMin, xMax)
	if x0 < x1 {
		emit(y, x0, x1)
	}
}

// emitHalfOpen emits the pixels of row y whose centres lie in [xa, xb).
func (r *Rasteriser) emitHalfOpen(y int, xa, xb float64, xMin, xMax int, emit func(y, x0, x1 int)) {
	x0 := clampFloor(math.Ceil(xa-spanEpsilon), xMin, xMax)
	x1 := clampFloor(math.Ceil(xb-spanEpsilon), xMin, xMax)
	if x0 < x1 {
		emit(y, x0, x1)
	}
}

// FillDisk fills the disk of the given radius around center.
func (r *Rasteriser) FillDisk(center vec.Vec2, radius float64, emit func(y, x0, x1 int)) {
	if radius < 0 {
		return
	}
	xMin, xMax, yMin, yMax := r.clipBounds()

	yFirst := clampFloor(math.Ceil(center.Y-radius-spanEpsilon), yMin, yMax)
	yLast := clampFloor(math.Floor(center.Y+radius+spanEpsilon)+1, yMin, yMax)
	r2 := radius * radius
	for y := yFirst; y < yLast; y++ {
		dy := float64(y) - center.Y
		rem := r2 - dy*dy
		if rem < -spanEpsilon*max(1, r2) {
			continue
		}
		dx := math.Sqrt(max(rem, 0))
		r.emitSpan(y, center.X-dx, center.X+dx, xMin, xMax, emit)
	}
}

// FillBox fills the axis-aligned box with opposite corners a and b.
func (r *Rasteriser) FillBox(a, b vec.Vec2, emit func(y, x0, x1 int)) {
	xMin, xMax, yMin, yMax := r.clipBounds()

	yFirst := clampFloor(math.Ceil(min(a.Y, b.Y)-spanEpsilon), yMin, yMax)
	yLast := clampFloor(math.Floor(max(a.Y, b.Y)+spanEpsilon)+1, yMin, yMax)
	for y := yFirst; y < yLast; y++ {
		r.emitSpan(y, min(a.X, b.X), max(a.X, b.X), xMin, xMax, emit)
	}
}

// TraceLine sets the one-pixel wide Bresenham line between the pixels
// nearest to a and b, both end points included.
func (r *Rasteriser) TraceLine(a, b vec.Vec2, emit func(y, x0, x1 int)) {
	xMin, xMax, yMin, yMax := r.clipBounds()

	// Clip the segment to a slightly enlarged clip box first, so that the
	// loop below is bounded by the clip size.
	box := rect.Rect{
		LLx: float64(xMin) - 1, LLy: float64(yMin) - 1,
		URx: float64(xMax), URy: float64(yMax),
	}
	a, b, ok := clipSegment(a, b, box)
	if !ok {
		return
	}

	x0, y0 := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if x0 >= xMin && x0 < xMax && y0 >= yMin && y0 < yMax {
			emit(y0, x0, x0+1)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipSegment clips the segment from a to b to the box, using the
// Liang-Barsky algorithm. It returns ok=false if nothing is left.
func clipSegment(a, b vec.Vec2, box rect.Rect) (vec.Vec2, vec.Vec2, bool) {
	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	for _, c := range [4]struct{ p, q float64 }{
		{-d.X, a.X - box.LLx},
		{d.X, box.URx - a.X},
		{-d.Y, a.Y - box.LLy},
		{d.Y, box.URy - a.Y},
	} {
		if c.p == 0 {
			if c.q < 0 {
				return a, b, false
			}
			continue
		}
		t := c.q / c.p
		if c.p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	return a.Add(d.Mul(t0)), a.Add(d.Mul(t1)), true
}

// clampFloor converts v to an int in the range [lo, hi].
func clampFloor(v float64, lo, hi int) int {
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(math.Floor(v))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Default values for rasteriser parameters.
const (
	// defaultFlatness is the default arc flattening tolerance in pixels.
	defaultFlatness = 0.25

	// defaultMiterLimit matches PDF/PostScript. Joins are bevelled when
	// the interior angle is less than approximately 11.5 degrees.
	defaultMiterLimit = 10.0
)

// Numerical tolerances for the rasteriser.
const (
	// horizontalEdgeThreshold is the minimum vertical extent for an edge
	// to take part in the scanline fill.
	horizontalEdgeThreshold = 1e-10

	// spanEpsilon absorbs rounding errors when deciding whether a pixel
	// centre lies on a boundary.
	spanEpsilon = 1e-9

	// zeroLengthThreshold is the minimum length for a stroke segment.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold detects nearly collinear segments where no
	// join is needed.
	collinearityThreshold = 1e-6

	// cuspCosineThreshold detects a path doubling back on itself.
	// cos(179.43°) ≈ -0.9999
	cuspCosineThreshold = -0.9999
)
