package testcases

import (
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

var precisionCases = []TestCase{
	{
		Name:   "subpixel_offset_00",
		Shape:  polygon(offsetSquare(20, 20, 24, 0.0)...),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "subpixel_offset_25",
		Shape:  polygon(offsetSquare(20, 20, 24, 0.25)...),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "subpixel_offset_50",
		Shape:  polygon(offsetSquare(20, 20, 24, 0.5)...),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "subpixel_offset_75",
		Shape:  polygon(offsetSquare(20, 20, 24, 0.75)...),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "thin_line_y_integer",
		Shape:  withWidth(twoPoint(labelmask.Line, pt(5, 10), pt(59, 10)), 1),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "thin_line_y_half",
		Shape:  withWidth(twoPoint(labelmask.Line, pt(5, 10.5), pt(59, 10.5)), 1),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "far_outside",
		Shape:  polygon(pt(-1e6, -1e6), pt(1e6, -1e6), pt(0, 1e6)),
		Width:  64,
		Height: 64,
	},
}

// offsetSquare returns the corners of an axis-aligned square whose top
// left corner is shifted by offset in both directions.
func offsetSquare(x, y, size, offset float64) []vec.Vec2 {
	x += offset
	y += offset
	return []vec.Vec2{pt(x, y), pt(x+size, y), pt(x+size, y+size), pt(x, y+size)}
}
