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

// Package labelmask converts image annotation shapes, as produced by
// labelling tools like labelme, into binary masks.
//
// Pixel (x, y) of a mask is the unit square centred on the point (x, y).
// A pixel is set when its centre is covered by the shape, including the
// shape boundary.
package labelmask

//go:generate go run ./testcases/export
//go:generate go run ./testcases/genpdf

import (
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Options controls details of Rasterize which are not part of the shape.
// The zero value gives the default behaviour.
type Options struct {
	// Rule is the fill rule for polygons.
	Rule FillRule
}

// Rasterize returns the mask of the given size covered by s.
//
// The result is either a complete mask or an error:
// *InvalidDimensionsError if height or width is not positive or the mask
// would have more than MaxPixels pixels, and
// *InvalidShapeError if the shape is malformed.
func Rasterize(height, width int, s Shape) (*Mask, error) {
	return RasterizeWith(height, width, s, Options{})
}

// RasterizeWith is like Rasterize, but allows to change the options.
func RasterizeWith(height, width int, s Shape, opt Options) (*Mask, error) {
	if err := CheckDimensions(height, width, MaxPixels); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m := newMask(height, width)
	r := NewRasteriser(rect.Rect{URx: float64(width), URy: float64(height)})
	r.Rule = opt.Rule
	emit := m.setSpan

	pts := s.Points
	switch s.Kind {
	case Circle:
		r.FillDisk(pts[0], pts[1].Sub(pts[0]).Length(), emit)

	case Rectangle:
		r.FillBox(pts[0], pts[1], emit)

	case Line, LineStrip:
		r.Width = s.lineWidth()
		r.Stroke(pts, false, emit)
		traceOpen(r, pts, emit)

	case Point:
		r.FillDisk(pts[0], s.pointRadius(), emit)

	default:
		r.FillPolygon(pts, emit)
		traceOpen(r, pts, emit)
		r.TraceLine(pts[len(pts)-1], pts[0], emit)
	}

	return m, nil
}

// traceOpen draws the one-pixel centre line of the polyline through pts.
func traceOpen(r *Rasteriser, pts []vec.Vec2, emit func(y, x0, x1 int)) {
	if len(pts) == 1 {
		r.TraceLine(pts[0], pts[0], emit)
		return
	}
	for i := 1; i < len(pts); i++ {
		r.TraceLine(pts[i-1], pts[i], emit)
	}
}
