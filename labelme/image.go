package labelme

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrNoImageData is returned by Image if the file does not embed the image.
var ErrNoImageData = errors.New("labelme: no embedded image data")

// Image decodes the base64 encoded image embedded in the file.
// The image size must agree with ImageWidth and ImageHeight.
func (f *File) Image() (image.Image, error) {
	if f.ImageData == "" {
		return nil, ErrNoImageData
	}
	raw, err := base64.StdEncoding.DecodeString(f.ImageData)
	if err != nil {
		return nil, fmt.Errorf("labelme: image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("labelme: image data: %w", err)
	}

	b := img.Bounds()
	if b.Dx() != f.ImageWidth || b.Dy() != f.ImageHeight {
		return nil, fmt.Errorf("labelme: embedded image is %dx%d, file declares %dx%d",
			b.Dx(), b.Dy(), f.ImageWidth, f.ImageHeight)
	}
	return img, nil
}

// SetImage embeds the given encoded image file (PNG, JPEG, ...) and
// updates the declared image size.
func (f *File) SetImage(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("labelme: %w", err)
	}
	f.ImageData = base64.StdEncoding.EncodeToString(data)
	f.ImageWidth = cfg.Width
	f.ImageHeight = cfg.Height
	return nil
}
