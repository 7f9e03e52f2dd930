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

// Package labelme reads and writes annotation files in the JSON format
// of the labelme image labelling tool, and converts their shapes into
// masks.
package labelme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
)

// Version is written into files created by this package.
const Version = "5.4.1"

var (
	// ErrNoSuchLabel is returned when no shape carries the requested label.
	ErrNoSuchLabel = errors.New("labelme: no shape with this label")

	// ErrNoSuchShape is returned for shape indices out of range.
	ErrNoSuchShape = errors.New("labelme: shape index out of range")
)

// File is the contents of a labelme annotation file.
type File struct {
	Version     string          `json:"version"`
	Flags       map[string]bool `json:"flags"`
	Shapes      []Record        `json:"shapes"`
	ImagePath   string          `json:"imagePath"`
	ImageData   string          `json:"imageData"` // base64, may be empty
	ImageHeight int             `json:"imageHeight"`
	ImageWidth  int             `json:"imageWidth"`
}

// Record is a single labelled shape.
type Record struct {
	Label       string          `json:"label"`
	Points      [][2]float64    `json:"points"`
	GroupID     *int            `json:"group_id"`
	Description string          `json:"description,omitempty"`
	ShapeType   string          `json:"shape_type"`
	Flags       map[string]bool `json:"flags"`
}

// Options controls the conversion of records into masks.
type Options struct {
	// LineWidth is the stroke width for line and linestrip records.
	// Zero selects labelmask.DefaultLineWidth.
	LineWidth int

	// PointRadius is the radius for point records.
	// Zero selects labelmask.DefaultPointRadius.
	PointRadius int

	// Rule is the fill rule for polygons.
	Rule labelmask.FillRule

	// UnknownAsPolygon treats unrecognised shape_type tags as polygons,
	// instead of failing. The polygon point count is still enforced.
	UnknownAsPolygon bool
}

func (opt *Options) maskOptions() labelmask.Options {
	return labelmask.Options{Rule: opt.Rule}
}

// Decode reads an annotation file from r.
func Decode(r io.Reader) (*File, error) {
	f := &File{}
	if err := json.NewDecoder(r).Decode(f); err != nil {
		return nil, fmt.Errorf("labelme: %w", err)
	}
	return f, nil
}

// Load reads the annotation file at path.
func Load(path string) (f *File, err error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := fd.Close(); err == nil {
			err = cerr
		}
	}()

	f, err = Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Encode writes f to w as indented JSON.
func (f *File) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

// New returns an empty annotation file for an image of the given size.
func New(imagePath string, height, width int) *File {
	return &File{
		Version:     Version,
		Flags:       map[string]bool{},
		Shapes:      []Record{},
		ImagePath:   imagePath,
		ImageHeight: height,
		ImageWidth:  width,
	}
}

// Add appends a record for s with the given label.
func (f *File) Add(label string, s labelmask.Shape) {
	pts := make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		pts[i] = [2]float64{p.X, p.Y}
	}
	f.Shapes = append(f.Shapes, Record{
		Label:     label,
		Points:    pts,
		ShapeType: s.Kind.String(),
		Flags:     map[string]bool{},
	})
}

// Shape converts record i into a shape.
func (f *File) Shape(i int, opt Options) (labelmask.Shape, error) {
	if i < 0 || i >= len(f.Shapes) {
		return labelmask.Shape{}, fmt.Errorf("%w: %d not in [0, %d)", ErrNoSuchShape, i, len(f.Shapes))
	}
	rec := &f.Shapes[i]

	kind, err := labelmask.ParseKind(rec.ShapeType)
	if err != nil {
		if !opt.UnknownAsPolygon {
			return labelmask.Shape{}, fmt.Errorf("shape %d (%q): %w", i, rec.Label, err)
		}
		kind = labelmask.Polygon
	}

	pts := make([]vec.Vec2, len(rec.Points))
	for j, p := range rec.Points {
		pts[j] = vec.Vec2{X: p[0], Y: p[1]}
	}

	return labelmask.Shape{
		Kind:        kind,
		Points:      pts,
		LineWidth:   opt.LineWidth,
		PointRadius: opt.PointRadius,
	}, nil
}

// Mask rasterises record i at the image size declared in the file.
func (f *File) Mask(i int, opt Options) (*labelmask.Mask, error) {
	s, err := f.Shape(i, opt)
	if err != nil {
		return nil, err
	}
	m, err := labelmask.RasterizeWith(f.ImageHeight, f.ImageWidth, s, opt.maskOptions())
	if err != nil {
		return nil, fmt.Errorf("shape %d (%q): %w", i, f.Shapes[i].Label, err)
	}
	return m, nil
}
