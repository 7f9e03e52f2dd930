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
	"math"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment is one straight piece of a stroked polyline.
type strokeSegment struct {
	A, B vec.Vec2 // end points
	T    vec.Vec2 // unit tangent (A→B direction)
	N    vec.Vec2 // unit normal (90° CCW from T)
}

// reversed returns the segment traversed from B to A.
// The +N side of the result is the -N side of s.
func (s strokeSegment) reversed() strokeSegment {
	return strokeSegment{A: s.B, B: s.A, T: s.T.Mul(-1), N: s.N.Mul(-1)}
}

// Stroke fills the outline of the polyline through pts, using Width, Cap,
// Join and MiterLimit. If closed is set, the last point is joined back to
// the first and no caps are drawn.
//
// A pixel is covered if its centre lies in the outline, with the right
// and bottom boundaries excluded. A stroke of integer width w thus
// covers w pixels across, whatever its direction.
func (r *Rasteriser) Stroke(pts []vec.Vec2, closed bool, emit func(y, x0, x1 int)) {
	r.segs = r.segs[:0]
	for i := 1; i < len(pts); i++ {
		r.addStrokeSegment(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 {
		r.addStrokeSegment(pts[len(pts)-1], pts[0])
	}

	r.stroke = r.stroke[:0]
	r.strokeOffsets = r.strokeOffsets[:0]
	d := r.Width / 2

	if len(r.segs) == 0 {
		// A path without extent has no direction, so only a round cap
		// leaves a mark.
		if len(pts) > 0 && r.Cap == graphics.LineCapRound {
			r.FillDisk(pts[0], d, emit)
		}
		return
	}

	r.rsegs = r.rsegs[:0]
	for i := len(r.segs) - 1; i >= 0; i-- {
		r.rsegs = append(r.rsegs, r.segs[i].reversed())
	}

	if closed {
		// Two loops of opposite orientation; the nonzero rule leaves the
		// inside of the inner loop empty.
		r.strokeOffsets = append(r.strokeOffsets, len(r.stroke))
		r.strokeClosedSide(r.segs, d)
		r.strokeOffsets = append(r.strokeOffsets, len(r.stroke))
		r.strokeClosedSide(r.rsegs, d)
	} else {
		first := &r.segs[0]
		last := &r.segs[len(r.segs)-1]

		r.strokeOffsets = append(r.strokeOffsets, len(r.stroke))
		r.addCap(first.A, first.T.Mul(-1), d)
		r.strokeOpenSide(r.segs, d)
		r.addCap(last.B, last.T, d)
		r.strokeOpenSide(r.rsegs, d)
	}

	r.fillStrokeOutlines(emit)
}

// addStrokeSegment appends the segment from a to b, unless it is too short
// to have a direction.
func (r *Rasteriser) addStrokeSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / length)
	n := vec.Vec2{X: -t.Y, Y: t.X}
	r.segs = append(r.segs, strokeSegment{A: a, B: b, T: t, N: n})
}

// strokeOpenSide appends the +N offset of an open polyline, from the
// start of the first segment to the end of the last one.
func (r *Rasteriser) strokeOpenSide(segs []strokeSegment, d float64) {
	r.stroke = append(r.stroke, segs[0].A.Add(segs[0].N.Mul(d)))
	for i := range len(segs) - 1 {
		r.addCorner(&segs[i], &segs[i+1], d)
	}
	last := &segs[len(segs)-1]
	r.stroke = append(r.stroke, last.B.Add(last.N.Mul(d)))
}

// strokeClosedSide appends the +N offset of a closed polyline as one loop.
func (r *Rasteriser) strokeClosedSide(segs []strokeSegment, d float64) {
	for i := range segs {
		r.addCorner(&segs[i], &segs[(i+1)%len(segs)], d)
	}
}

// addCorner appends the +N side geometry where s1 ends and s2 starts.
func (r *Rasteriser) addCorner(s1, s2 *strokeSegment, d float64) {
	P := s1.B
	cosTheta := s1.T.Dot(s2.T)
	sinTheta := s1.T.X*s2.T.Y - s1.T.Y*s2.T.X

	switch {
	case cosTheta < cuspCosineThreshold:
		// The path doubles back: go around the tip.
		r.stroke = append(r.stroke, P.Add(s1.N.Mul(d)))
		r.addCap(P, s1.T, d)
		r.stroke = append(r.stroke, P.Add(s2.N.Mul(d)))

	case math.Abs(sinTheta) < collinearityThreshold:
		r.stroke = append(r.stroke, P.Add(s1.N.Mul(d)), P.Add(s2.N.Mul(d)))

	case sinTheta > 0:
		// The path turns towards +N, this is the inner side.
		if q, ok := innerIntersection(P, s1.N, s2.N, cosTheta, d); ok {
			r.stroke = append(r.stroke, q)
		} else {
			r.stroke = append(r.stroke, P.Add(s1.N.Mul(d)), P.Add(s2.N.Mul(d)))
		}

	default:
		// Outer side.
		r.stroke = append(r.stroke, P.Add(s1.N.Mul(d)))
		r.addJoin(P, s1.T, s2.T, cosTheta, sinTheta, d)
		r.stroke = append(r.stroke, P.Add(s2.N.Mul(d)))
	}
}

// innerIntersection returns the point where the +N offset lines of two
// segments meeting at P intersect.
func innerIntersection(P, N1, N2 vec.Vec2, cosTheta, d float64) (vec.Vec2, bool) {
	if cosTheta > 1-1e-9 {
		return vec.Vec2{}, false
	}
	// cos(θ/2)
	halfAngle := math.Sqrt((1 + cosTheta) / 2)
	if halfAngle < 1e-9 {
		return vec.Vec2{}, false
	}

	dir := N1.Add(N2)
	dirLen := dir.Length()
	if dirLen < 1e-9 {
		return vec.Vec2{}, false
	}
	dir = dir.Mul(1 / dirLen)

	return P.Add(dir.Mul(d / halfAngle)), true
}

// addCap appends a line cap at P. T points away from the line.
// The cap leads from P+N·d to P-N·d, where N is T rotated by 90° CCW;
// for butt caps the caller's offset points are all that is needed.
func (r *Rasteriser) addCap(P, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}

	switch r.Cap {
	case graphics.LineCapSquare:
		ext := P.Add(T.Mul(d))
		r.stroke = append(r.stroke, ext.Add(N.Mul(d)), ext.Sub(N.Mul(d)))

	case graphics.LineCapRound:
		// half circle from +N through T to -N
		r.addArc(P, d, N, -math.Pi, true)
	}
}

// addJoin appends the outer join geometry at P, where the tangent turns
// from T1 to T2.
func (r *Rasteriser) addJoin(P, T1, T2 vec.Vec2, cosTheta, sinTheta, d float64) {
	N1 := vec.Vec2{X: -T1.Y, Y: T1.X}

	switch r.Join {
	case graphics.LineJoinMiter:
		// The miter length relative to the line width is 1/sin(φ/2), where
		// φ is the angle at the corner. sin(φ/2) = cos(θ/2).
		sinHalf := math.Sqrt((1 + cosTheta) / 2)
		const miterEpsilon = 1e-10
		if sinHalf > 0 && 1/sinHalf <= r.MiterLimit+miterEpsilon {
			N2 := vec.Vec2{X: -T2.Y, Y: T2.X}
			bisector := N1.Add(N2)
			if l := bisector.Length(); l > zeroLengthThreshold {
				r.stroke = append(r.stroke, P.Add(bisector.Mul(d/(l*sinHalf))))
			}
		}
		// otherwise bevel

	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cosTheta)))
		if sinTheta < 0 {
			angle = -angle
		}
		r.addArc(P, d, N1, angle, false)
	}
}

// addArc appends arc vertices to the stroke outline.
// startDir is the unit vector from center to the start of the arc,
// sweep is the angle in radians (positive = CCW).
func (r *Rasteriser) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	n := 1
	if radius > r.Flatness {
		// A chord spanning the angle θ deviates from the arc by
		// r·(1-cos(θ/2)); solve for the flatness tolerance.
		step := 2 * math.Acos(1-r.Flatness/radius)
		if step > 0 && !math.IsNaN(step) {
			n = max(int(math.Ceil(math.Abs(sweep)/step)), 1)
		} else {
			n = 8
		}
	}

	dt := sweep / float64(n)
	i0 := 1
	if includeStart {
		i0 = 0
	}
	for i := i0; i <= n; i++ {
		sin, cos := math.Sincos(float64(i) * dt)
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		r.stroke = append(r.stroke, center.Add(dir.Mul(radius)))
	}
}

// fillStrokeOutlines fills all stroke polygons together, using the nonzero
// rule so that overlapping parts are painted once.
func (r *Rasteriser) fillStrokeOutlines(emit func(y, x0, x1 int)) {
	r.edges = r.edges[:0]
	r.edgeBBoxFirst = true

	for i, start := range r.strokeOffsets {
		end := len(r.stroke)
		if i+1 < len(r.strokeOffsets) {
			end = r.strokeOffsets[i+1]
		}
		poly := r.stroke[start:end]
		if len(poly) < 3 {
			continue
		}
		for j := 1; j < len(poly); j++ {
			r.addEdge(poly[j-1], poly[j])
		}
		r.addEdge(poly[len(poly)-1], poly[0])
	}

	r.fillEdges(NonZero, false, emit)
}
