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
	"strconv"

	"seehuhn.de/go/geom/vec"
)

// Kind identifies the geometry of an annotation shape.
type Kind int

const (
	Polygon Kind = iota
	Circle
	Rectangle
	Line
	LineStrip
	Point
)

var kindNames = [...]string{
	Polygon:   "polygon",
	Circle:    "circle",
	Rectangle: "rectangle",
	Line:      "line",
	LineStrip: "linestrip",
	Point:     "point",
}

// String returns the labelme tag for the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps a labelme shape_type tag to a Kind.
// The empty tag is a polygon, as in files written by early labelme
// versions. Unknown tags give an *InvalidShapeError.
func ParseKind(tag string) (Kind, error) {
	if tag == "" {
		return Polygon, nil
	}
	for k, name := range kindNames {
		if name == tag {
			return Kind(k), nil
		}
	}
	return 0, &InvalidShapeError{Tag: tag}
}

// Default values for the size parameters of a Shape.
const (
	DefaultLineWidth   = 10
	DefaultPointRadius = 5
)

// Shape is a single annotation shape in image coordinates.
// Pixel (x, y) is the unit square centred on the point (x, y),
// with y growing downwards.
type Shape struct {
	Kind   Kind
	Points []vec.Vec2

	// LineWidth is the stroke width for Line and LineStrip shapes.
	// Zero means DefaultLineWidth. The one pixel wide centre line is
	// always drawn in addition to the stroke.
	LineWidth int

	// PointRadius is the disk radius for Point shapes.
	// Zero means DefaultPointRadius, so a radius of zero cannot be
	// requested. A LineStrip with a single point marks exactly one pixel.
	PointRadius int
}

// Validate checks the point count and parameters of s.
func (s *Shape) Validate() error {
	n := len(s.Points)
	var want string
	switch s.Kind {
	case Circle, Rectangle, Line:
		if n != 2 {
			want = "exactly 2"
		}
	case Point:
		if n != 1 {
			want = "exactly 1"
		}
	case LineStrip:
		if n < 1 {
			want = "at least 1"
		}
	case Polygon:
		if n <= 2 {
			want = "more than 2"
		}
	default:
		return &InvalidShapeError{Kind: s.Kind, Got: n, Reason: "unknown shape kind"}
	}
	if want != "" {
		return &InvalidShapeError{Kind: s.Kind, Want: want, Got: n}
	}

	if s.LineWidth < 0 {
		return &InvalidShapeError{Kind: s.Kind, Got: n, Reason: "negative line width"}
	}
	if s.PointRadius < 0 {
		return &InvalidShapeError{Kind: s.Kind, Got: n, Reason: "negative point radius"}
	}
	for _, p := range s.Points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return &InvalidShapeError{Kind: s.Kind, Got: n, Reason: "non-finite coordinate"}
		}
	}
	return nil
}

func (s *Shape) lineWidth() float64 {
	if s.LineWidth == 0 {
		return DefaultLineWidth
	}
	return float64(s.LineWidth)
}

func (s *Shape) pointRadius() float64 {
	if s.PointRadius == 0 {
		return DefaultPointRadius
	}
	return float64(s.PointRadius)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
