package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

var rectangleCases = []TestCase{
	{
		Name:   "axis_corners",
		Shape:  twoPoint(labelmask.Rectangle, pt(10, 12), pt(50, 40)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "swapped_corners",
		Shape:  twoPoint(labelmask.Rectangle, pt(50, 40), pt(10, 12)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "fractional",
		Shape:  twoPoint(labelmask.Rectangle, pt(10.4, 12.6), pt(49.5, 40.5)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "degenerate",
		Shape:  twoPoint(labelmask.Rectangle, pt(20, 20), pt(20, 40)),
		Width:  64,
		Height: 64,
	},
}

var circleCases = []TestCase{
	{
		Name:   "centered",
		Shape:  twoPoint(labelmask.Circle, pt(32, 32), pt(32, 12)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "diagonal_radius",
		Shape:  twoPoint(labelmask.Circle, pt(30, 34), pt(40, 44)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "clipped",
		Shape:  twoPoint(labelmask.Circle, pt(60, 4), pt(60, 24)),
		Width:  64,
		Height: 64,
	},
}

var lineCases = []TestCase{
	{
		Name:   "horizontal",
		Shape:  twoPoint(labelmask.Line, pt(10, 32), pt(54, 32)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "diagonal",
		Shape:  twoPoint(labelmask.Line, pt(10, 10), pt(54, 50)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "thin",
		Shape:  withWidth(twoPoint(labelmask.Line, pt(5, 60), pt(60, 3)), 1),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "strip_corner",
		Shape:  strip(4, pt(10, 50), pt(32, 14), pt(54, 50)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "strip_zigzag",
		Shape:  strip(6, pt(6, 40), pt(18, 20), pt(30, 40), pt(42, 20), pt(58, 40)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "strip_reversal",
		Shape:  strip(6, pt(10, 32), pt(50, 32), pt(30, 32)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "strip_single_point",
		Shape:  strip(6, pt(32, 32)),
		Width:  64,
		Height: 64,
	},
}

var pointCases = []TestCase{
	{
		Name:   "default_radius",
		Shape:  labelmask.Shape{Kind: labelmask.Point, Points: []vec.Vec2{pt(32, 32)}},
		Width:  64,
		Height: 64,
	},
	{
		Name: "radius_one",
		Shape: labelmask.Shape{
			Kind: labelmask.Point, Points: []vec.Vec2{pt(5, 5)}, PointRadius: 1,
		},
		Width:  10,
		Height: 10,
	},
	{
		Name: "corner",
		Shape: labelmask.Shape{
			Kind: labelmask.Point, Points: []vec.Vec2{pt(0, 0)}, PointRadius: 8,
		},
		Width:  64,
		Height: 64,
	},
}

func twoPoint(kind labelmask.Kind, a, b vec.Vec2) labelmask.Shape {
	return labelmask.Shape{Kind: kind, Points: []vec.Vec2{a, b}}
}

func strip(width int, pts ...vec.Vec2) labelmask.Shape {
	return labelmask.Shape{Kind: labelmask.LineStrip, Points: pts, LineWidth: width}
}

func withWidth(s labelmask.Shape, width int) labelmask.Shape {
	s.LineWidth = width
	return s
}
