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
	"image"
	"image/color"
	"slices"
)

// MaxPixels is the largest number of pixels a mask may have.
const MaxPixels = 1 << 30

// Mask is a height×width grid of booleans in row-major order.
// A Mask does not change after it has been returned to the caller;
// all operations which combine masks allocate a new one.
type Mask struct {
	width, height int
	pix           []bool
}

// Empty returns a mask of the given size with no pixels set.
func Empty(height, width int) (*Mask, error) {
	if err := CheckDimensions(height, width, MaxPixels); err != nil {
		return nil, err
	}
	return newMask(height, width), nil
}

func newMask(height, width int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		pix:    make([]bool, width*height),
	}
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

// Bounds returns the rectangle covered by the mask, in image coordinates.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// At reports whether pixel (x, y) is set.
// Pixels outside the mask are never set.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.pix[y*m.width+x]
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.pix {
		if b {
			n++
		}
	}
	return n
}

// Equal reports whether m and other have the same size and contents.
func (m *Mask) Equal(other *Mask) bool {
	return m.width == other.width && m.height == other.height &&
		slices.Equal(m.pix, other.pix)
}

// Invert returns a new mask where every pixel is flipped.
func (m *Mask) Invert() *Mask {
	res := newMask(m.height, m.width)
	for i, b := range m.pix {
		res.pix[i] = !b
	}
	return res
}

// Union returns the pixel-wise OR of m and other.
// Both masks must have the same size.
func (m *Mask) Union(other *Mask) *Mask {
	m.checkSize(other)
	res := newMask(m.height, m.width)
	for i := range res.pix {
		res.pix[i] = m.pix[i] || other.pix[i]
	}
	return res
}

// Intersect returns the pixel-wise AND of m and other.
// Both masks must have the same size.
func (m *Mask) Intersect(other *Mask) *Mask {
	m.checkSize(other)
	res := newMask(m.height, m.width)
	for i := range res.pix {
		res.pix[i] = m.pix[i] && other.pix[i]
	}
	return res
}

func (m *Mask) checkSize(other *Mask) {
	if m.width != other.width || m.height != other.height {
		panic("labelmask: mask size mismatch")
	}
}

// setSpan sets the pixels [x0, x1) in row y. The caller clips the span.
func (m *Mask) setSpan(y, x0, x1 int) {
	row := m.pix[y*m.width : (y+1)*m.width]
	for x := x0; x < x1; x++ {
		row[x] = true
	}
}

// MaskFromImage converts img into a mask. A pixel is set if its
// luminance is at least threshold.
func MaskFromImage(img image.Image, threshold uint8) (*Mask, error) {
	b := img.Bounds()
	if err := CheckDimensions(b.Dy(), b.Dx(), MaxPixels); err != nil {
		return nil, err
	}
	m := newMask(b.Dy(), b.Dx())
	for y := range m.height {
		for x := range m.width {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			m.pix[y*m.width+x] = c.Y >= threshold
		}
	}
	return m, nil
}
