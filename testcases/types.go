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

// Package testcases is a catalogue of annotation shapes used by the tests,
// the benchmarks and the reference image tools.
package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

// TestCase defines a single rasterisation test.
type TestCase struct {
	Name   string             // lowercase a-z, 0-9 and _ only
	Shape  labelmask.Shape    // the shape to rasterise
	Width  int                // mask width in pixels
	Height int                // mask height in pixels
	Rule   labelmask.FillRule // fill rule for polygons
}

// Options returns the rasteriser options for the test case.
func (tc *TestCase) Options() labelmask.Options {
	return labelmask.Options{Rule: tc.Rule}
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}
