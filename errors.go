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

import "fmt"

// InvalidShapeError reports a shape that cannot be rasterised:
// a wrong number of points, an unknown shape tag, or a bad parameter.
type InvalidShapeError struct {
	Kind Kind

	// Tag is set when the shape type tag was not recognised.
	Tag string

	// Want describes the expected number of points, e.g. "exactly 2".
	// It is empty if the point count was acceptable.
	Want string

	// Got is the number of points supplied.
	Got int

	// Reason describes problems other than the point count.
	Reason string
}

func (e *InvalidShapeError) Error() string {
	switch {
	case e.Tag != "":
		return fmt.Sprintf("labelmask: unknown shape type %q", e.Tag)
	case e.Want != "":
		return fmt.Sprintf("labelmask: %s shape must have %s points, got %d",
			e.Kind, e.Want, e.Got)
	default:
		return fmt.Sprintf("labelmask: invalid %s shape: %s", e.Kind, e.Reason)
	}
}

// InvalidDimensionsError reports a raster size which is not positive,
// or which has more than Limit pixels.
type InvalidDimensionsError struct {
	Height, Width int

	// Limit is the pixel limit which was exceeded, or 0 if a dimension
	// is not positive.
	Limit int
}

func (e *InvalidDimensionsError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("labelmask: mask dimensions %dx%d (height x width) exceed %d pixels",
			e.Height, e.Width, e.Limit)
	}
	return fmt.Sprintf("labelmask: invalid mask dimensions %dx%d (height x width)",
		e.Height, e.Width)
}

// CheckDimensions returns an *InvalidDimensionsError if a mask of the
// given size cannot be allocated: a dimension is not positive, or the
// mask has more than maxPixels pixels.
func CheckDimensions(height, width, maxPixels int) error {
	if height <= 0 || width <= 0 {
		return &InvalidDimensionsError{Height: height, Width: width}
	}
	// height*width may overflow
	if height > maxPixels/width {
		return &InvalidDimensionsError{Height: height, Width: width, Limit: maxPixels}
	}
	return nil
}
