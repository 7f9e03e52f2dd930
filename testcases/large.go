package testcases

import "seehuhn.de/go/labelmask"

// largeCases use masks in the size range of real photographs.
var largeCases = []TestCase{
	{
		Name:   "diamond",
		Shape:  polygon(diamond(256, 256, 180)...),
		Width:  512,
		Height: 512,
	},
	{
		Name:   "star_nonzero",
		Shape:  polygon(fivePointStar(256, 256, 240)...),
		Width:  512,
		Height: 512,
		Rule:   labelmask.NonZero,
	},
	{
		Name:   "clipped_rectangle",
		Shape:  twoPoint(labelmask.Rectangle, pt(-100, 100), pt(612, 400)),
		Width:  512,
		Height: 512,
	},
	{
		Name:   "thick_strip",
		Shape:  strip(40, pt(40, 40), pt(470, 80), pt(60, 300), pt(480, 470)),
		Width:  512,
		Height: 512,
	},
	{
		Name:   "big_circle",
		Shape:  twoPoint(labelmask.Circle, pt(256, 256), pt(256, 16)),
		Width:  512,
		Height: 512,
	},
}
