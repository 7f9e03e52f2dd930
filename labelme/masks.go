package labelme

import (
	"fmt"
	"image"

	"seehuhn.de/go/labelmask"
)

// Labels returns the distinct labels of all records, in the order of their
// first appearance.
func (f *File) Labels() []string {
	var labels []string
	seen := make(map[string]bool)
	for _, rec := range f.Shapes {
		if !seen[rec.Label] {
			seen[rec.Label] = true
			labels = append(labels, rec.Label)
		}
	}
	return labels
}

// LabelMask returns the union of the masks of all records with the given
// label.
func (f *File) LabelMask(label string, opt Options) (*labelmask.Mask, error) {
	var res *labelmask.Mask
	for i, rec := range f.Shapes {
		if rec.Label != label {
			continue
		}
		m, err := f.Mask(i, opt)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = m
		} else {
			res = res.Union(m)
		}
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchLabel, label)
	}
	return res, nil
}

// UnionMask returns the union of the masks of all records.
// A file without records gives an empty mask.
func (f *File) UnionMask(opt Options) (*labelmask.Mask, error) {
	res, err := labelmask.Empty(f.ImageHeight, f.ImageWidth)
	if err != nil {
		return nil, err
	}
	for i := range f.Shapes {
		m, err := f.Mask(i, opt)
		if err != nil {
			return nil, err
		}
		res = res.Union(m)
	}
	return res, nil
}

// Instance is one object of an annotation file. Records which share a
// label and a group ID form a single instance; records without a group
// ID are instances of their own.
type Instance struct {
	Label   string
	GroupID *int
	Mask    *labelmask.Mask
}

// Instances returns the instances of the file, in the order of their first
// record.
func (f *File) Instances(opt Options) ([]Instance, error) {
	type key struct {
		label string
		group int
	}
	var res []Instance
	byKey := make(map[key]int)
	for i, rec := range f.Shapes {
		m, err := f.Mask(i, opt)
		if err != nil {
			return nil, err
		}
		if rec.GroupID == nil {
			res = append(res, Instance{Label: rec.Label, Mask: m})
			continue
		}

		k := key{rec.Label, *rec.GroupID}
		if idx, ok := byKey[k]; ok {
			res[idx].Mask = res[idx].Mask.Union(m)
			continue
		}
		byKey[k] = len(res)
		group := *rec.GroupID
		res = append(res, Instance{Label: rec.Label, GroupID: &group, Mask: m})
	}
	return res, nil
}

// ClassMap paints all records in file order into a grey image, using the
// class value given for each label. Later records overwrite earlier ones.
// Pixels not covered by any record, and records whose label is missing
// from classes, leave the value 0.
func (f *File) ClassMap(classes map[string]uint8, opt Options) (*image.Gray, error) {
	if err := labelmask.CheckDimensions(f.ImageHeight, f.ImageWidth, labelmask.MaxPixels); err != nil {
		return nil, err
	}
	img := image.NewGray(image.Rect(0, 0, f.ImageWidth, f.ImageHeight))
	for i, rec := range f.Shapes {
		class, ok := classes[rec.Label]
		if !ok {
			continue
		}
		m, err := f.Mask(i, opt)
		if err != nil {
			return nil, err
		}
		for y := range f.ImageHeight {
			row := img.Pix[y*img.Stride:]
			for x := range f.ImageWidth {
				if m.At(x, y) {
					row[x] = class
				}
			}
		}
	}
	return img, nil
}
