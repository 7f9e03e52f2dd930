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

// Package maskio converts masks to and from 8-bit grey images.
//
// Set mask pixels become 255 and unset pixels 0. Inpainting APIs usually
// expect the opposite convention; Options.Invert swaps the two values.
package maskio

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"seehuhn.de/go/labelmask"
)

// ErrUnknownFormat is returned for unsupported image format names.
var ErrUnknownFormat = errors.New("maskio: unknown image format")

// Format is an image file format.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

// ParseFormat maps a format name or file extension ("png", ".tif", ...)
// to a Format. The empty string selects PNG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case TIFF:
		return "tiff"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Ext returns the file name extension for f, including the dot.
func (f Format) Ext() string {
	if f == TIFF {
		return ".tif"
	}
	return "." + f.String()
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	default:
		return "image/png"
	}
}

// Options controls the conversion between masks and images.
type Options struct {
	Format Format

	// Invert maps set pixels to 0 and unset pixels to 255.
	Invert bool
}

// Gray converts m into a grey image.
func Gray(m *labelmask.Mask, opt Options) *image.Gray {
	on, off := uint8(255), uint8(0)
	if opt.Invert {
		on, off = off, on
	}
	img := image.NewGray(m.Bounds())
	for y := range m.Height() {
		row := img.Pix[y*img.Stride:]
		for x := range m.Width() {
			if m.At(x, y) {
				row[x] = on
			} else {
				row[x] = off
			}
		}
	}
	return img
}

// Encode writes m to w as an image file.
func Encode(w io.Writer, m *labelmask.Mask, opt Options) error {
	img := Gray(m, opt)
	switch opt.Format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opt.Format)
	}
}

// EncodeBase64 returns the encoded image file as a base64 string, ready
// to be embedded into a JSON request.
func EncodeBase64(m *labelmask.Mask, opt Options) (string, error) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, m, opt); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reads a mask from an image file in any of the supported formats.
// Pixels with a luminance of at least 128 are set, or unset if opt.Invert
// is true. opt.Format is ignored.
func Decode(r io.Reader, opt Options) (*labelmask.Mask, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("maskio: %w", err)
	}
	m, err := labelmask.MaskFromImage(img, 128)
	if err != nil {
		return nil, err
	}
	if opt.Invert {
		m = m.Invert()
	}
	return m, nil
}
