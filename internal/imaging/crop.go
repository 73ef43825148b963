package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Region is a rectangular area in pixel coordinates. (X, Y) is the top-left
// corner; Width and Height extend right and down.
type Region struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// CropRegion extracts a rectangular region from an image.
//
// The region must lie entirely within the image bounds. The result is in the
// same form as the input (colour or single-channel) with its origin at (0,0).
func CropRegion(img image.Image, r Region) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: width and height must be positive, got %dx%d", r.Width, r.Height)
	}

	bounds := img.Bounds()
	rect := r.Rect().Add(bounds.Min)
	if !rect.In(bounds) {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X, r.Y, r.X+r.Width, r.Y+r.Height, 0, 0, bounds.Dx(), bounds.Dy())
	}

	cropped := imaging.Crop(img, rect)
	if _, ok := img.(*image.Gray); ok {
		return toGray(cropped), nil
	}
	return cropped, nil
}
