// Package screen captures the display with robotgo. It needs cgo and a
// desktop session; everything else in the module works without it.
package screen

import (
	"context"
	"errors"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/ironsheep/ocr-fields/internal/imaging"
)

// ErrCaptureFailed is returned when robotgo yields no bitmap.
var ErrCaptureFailed = errors.New("screen capture returned no image")

// Robotgo implements acquire.ScreenCapturer.
type Robotgo struct{}

// New returns a robotgo capturer.
func New() *Robotgo {
	return &Robotgo{}
}

// Capture grabs region of the primary display, or all of it when region is
// nil. The returned image owns its pixels.
func (Robotgo) Capture(ctx context.Context, region *imaging.Region) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bitmap robotgo.CBitmap
	if region != nil {
		bitmap = robotgo.CaptureScreen(region.X, region.Y, region.Width, region.Height)
	} else {
		bitmap = robotgo.CaptureScreen()
	}
	if bitmap == nil {
		return nil, ErrCaptureFailed
	}
	defer robotgo.FreeBitmap(bitmap)

	img := robotgo.ToImage(bitmap)
	if img == nil {
		return nil, ErrCaptureFailed
	}
	return imaging.Normalize(img), nil
}
