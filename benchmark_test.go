package labelmask_test

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

var benchSizes = []int{20, 200, 2000}

// regularPolygon returns n points on a circle, as produced by tracing the
// outline of a round object by hand.
func regularPolygon(cx, cy, r float64, n int) []vec.Vec2 {
	pts := make([]vec.Vec2, n)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vec.Vec2{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)}
	}
	return pts
}

// BenchmarkRasterizePolygon benchmarks the complete conversion of a
// polygon annotation into a mask.
func BenchmarkRasterizePolygon(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			center := float64(size) / 2
			s := labelmask.Shape{
				Kind:   labelmask.Polygon,
				Points: regularPolygon(center, center, float64(size)*0.45, 64),
			}

			b.ReportAllocs()
			for b.Loop() {
				if _, err := labelmask.Rasterize(size, size, s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRasteriserPolygon benchmarks the scanline fill alone, reusing
// one Rasteriser and one output buffer.
func BenchmarkRasteriserPolygon(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{URx: float64(size), URy: float64(size)}
			r := labelmask.NewRasteriser(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			center := float64(size) / 2
			pts := regularPolygon(center, center, float64(size)*0.45, 64)

			b.ResetTimer()
			b.ReportAllocs()

			for b.Loop() {
				r.Reset(clip)
				r.FillPolygon(pts, func(y, x0, x1 int) {
					row := dst.Pix[y*dst.Stride:]
					for x := x0; x < x1; x++ {
						row[x] = 255
					}
				})
			}
		})
	}
}

// BenchmarkVectorPolygon benchmarks x/image/vector filling the same
// polygon, with anti-aliasing.
func BenchmarkVectorPolygon(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})

			center := float64(size) / 2
			pts := regularPolygon(center, center, float64(size)*0.45, 64)

			b.ResetTimer()
			b.ReportAllocs()

			for b.Loop() {
				r.Reset(size, size)
				// vector samples pixel areas, so shift by half a pixel
				r.MoveTo(float32(pts[0].X+0.5), float32(pts[0].Y+0.5))
				for _, p := range pts[1:] {
					r.LineTo(float32(p.X+0.5), float32(p.Y+0.5))
				}
				r.ClosePath()
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// BenchmarkRasterizeLineStrip benchmarks a thick polyline annotation.
func BenchmarkRasterizeLineStrip(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			f := float64(size)
			s := labelmask.Shape{
				Kind: labelmask.LineStrip,
				Points: []vec.Vec2{
					{X: 0.1 * f, Y: 0.1 * f}, {X: 0.9 * f, Y: 0.2 * f},
					{X: 0.2 * f, Y: 0.5 * f}, {X: 0.9 * f, Y: 0.9 * f},
				},
				LineWidth: max(size/20, 1),
			}

			b.ReportAllocs()
			for b.Loop() {
				if _, err := labelmask.Rasterize(size, size, s); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
