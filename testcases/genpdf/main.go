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

// Command genpdf generates reference images for the mask tests.
// It draws every test case into a PDF file and renders the PDF to an
// anti-aliased grey PNG using Ghostscript. Grey values give the pixel
// coverage, so the tests can tell interior pixels from boundary pixels.
package main

import (
	"fmt"
	"maps"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/testcases"
)

const refDir = "testdata/reference"

func main() {
	if err := os.MkdirAll(refDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			pdfPath := filepath.Join(refDir, name+".pdf")
			pngPath := filepath.Join(refDir, name+".png")

			if err := generatePDF(tc, pdfPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			if err := renderPNG(pdfPath, pngPath); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
			if err := os.Remove(pdfPath); err != nil {
				panic(err)
			}
		}
	}
}

// pathBuilder is the subset of the PDF page writer used for drawing shapes.
type pathBuilder interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	CurveTo(x1, y1, x2, y2, x3, y3 float64)
	ClosePath()
}

func generatePDF(tc testcases.TestCase, pdfPath string) error {
	// 1 point = 1 pixel at 72 DPI
	paper := &pdf.Rectangle{
		URx: float64(tc.Width),
		URy: float64(tc.Height),
	}

	page, err := document.CreateSinglePage(pdfPath, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// black background, so that grey values are coverage values
	page.SetFillColor(color.DeviceGray(0))
	page.Rectangle(0, 0, float64(tc.Width), float64(tc.Height))
	page.Fill()

	// Mask coordinates have the origin at the centre of the top-left
	// pixel, with y pointing down.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0.5, float64(tc.Height) - 0.5})

	page.SetFillColor(color.DeviceGray(1))
	page.SetStrokeColor(color.DeviceGray(1))

	s := tc.Shape
	pts := s.Points
	switch s.Kind {
	case labelmask.Circle:
		circle(page, pts[0], pts[1].Sub(pts[0]).Length())
		page.Fill()

	case labelmask.Point:
		r := float64(s.PointRadius)
		if r == 0 {
			r = labelmask.DefaultPointRadius
		}
		circle(page, pts[0], r)
		page.Fill()

	case labelmask.Rectangle:
		x0, x1 := min(pts[0].X, pts[1].X), max(pts[0].X, pts[1].X)
		y0, y1 := min(pts[0].Y, pts[1].Y), max(pts[0].Y, pts[1].Y)
		page.Rectangle(x0, y0, x1-x0, y1-y0)
		page.Fill()

	case labelmask.Line, labelmask.LineStrip:
		w := float64(s.LineWidth)
		if w == 0 {
			w = labelmask.DefaultLineWidth
		}
		if degenerate(pts) {
			// A zero-length stroke with butt caps paints nothing. The mask
			// has the single centre-line pixel, which the tests tolerate.
			break
		}
		page.SetLineWidth(w)
		page.SetLineCap(graphics.LineCapButt)
		page.SetLineJoin(graphics.LineJoinBevel)
		page.SetMiterLimit(10)
		page.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			page.LineTo(p.X, p.Y)
		}
		page.Stroke()

	default:
		page.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			page.LineTo(p.X, p.Y)
		}
		page.ClosePath()
		if tc.Rule == labelmask.EvenOdd {
			page.FillEvenOdd()
		} else {
			page.Fill()
		}
	}

	return page.Close()
}

// circle appends a circle, made of four cubic Bézier arcs, to the path.
func circle(p pathBuilder, c vec.Vec2, r float64) {
	k := r * 4 * (math.Sqrt2 - 1) / 3
	p.MoveTo(c.X+r, c.Y)
	p.CurveTo(c.X+r, c.Y+k, c.X+k, c.Y+r, c.X, c.Y+r)
	p.CurveTo(c.X-k, c.Y+r, c.X-r, c.Y+k, c.X-r, c.Y)
	p.CurveTo(c.X-r, c.Y-k, c.X-k, c.Y-r, c.X, c.Y-r)
	p.CurveTo(c.X+k, c.Y-r, c.X+r, c.Y-k, c.X+r, c.Y)
	p.ClosePath()
}

func degenerate(pts []vec.Vec2) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

func renderPNG(pdfPath, pngPath string) error {
	// -sDEVICE=pnggray: 8-bit grayscale
	// -r72: 72 DPI (1 point = 1 pixel)
	// -dGraphicsAlphaBits=4: 4x supersampling for anti-aliasing
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=pnggray",
		"-r72",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
