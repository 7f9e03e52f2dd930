package testcases

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

var polygonCases = []TestCase{
	{
		Name:   "triangle",
		Shape:  polygon(pt(10, 50), pt(32, 10), pt(54, 50)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "star_evenodd",
		Shape:  polygon(fivePointStar(32, 32, 25)...),
		Width:  64,
		Height: 64,
		Rule:   labelmask.EvenOdd,
	},
	{
		Name:   "star_nonzero",
		Shape:  polygon(fivePointStar(32, 32, 25)...),
		Width:  64,
		Height: 64,
		Rule:   labelmask.NonZero,
	},
	{
		Name:   "square",
		Shape:  polygon(pt(10, 10), pt(44, 10), pt(44, 44), pt(10, 44)),
		Width:  64,
		Height: 64,
	},
	{
		Name: "concave_l",
		Shape: polygon(
			pt(8, 8), pt(24, 8), pt(24, 40), pt(56, 40), pt(56, 56), pt(8, 56),
		),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "sliver",
		Shape:  polygon(pt(4, 30), pt(60, 31), pt(4, 32)),
		Width:  64,
		Height: 64,
	},
	{
		Name:   "duplicate_vertices",
		Shape:  polygon(pt(10, 10), pt(10, 10), pt(50, 12), pt(50, 12), pt(30, 50)),
		Width:  64,
		Height: 64,
	},
}

// polygon builds a polygon shape.
func polygon(pts ...vec.Vec2) labelmask.Shape {
	return labelmask.Shape{Kind: labelmask.Polygon, Points: pts}
}

// fivePointStar returns the vertices of a self-intersecting five-pointed
// star, connecting every second point of a regular pentagon.
func fivePointStar(cx, cy, r float64) []vec.Vec2 {
	corners := make([]vec.Vec2, 5)
	for i := range 5 {
		angle := float64(i)*2*math.Pi/5 - math.Pi/2
		corners[i] = vec.Vec2{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}

	order := []int{0, 2, 4, 1, 3}
	pts := make([]vec.Vec2, len(order))
	for i, j := range order {
		pts[i] = corners[j]
	}
	return pts
}

// diamond returns the vertices of a square rotated by 45 degrees.
func diamond(cx, cy, r float64) []vec.Vec2 {
	return []vec.Vec2{pt(cx, cy-r), pt(cx+r, cy), pt(cx, cy+r), pt(cx-r, cy)}
}
