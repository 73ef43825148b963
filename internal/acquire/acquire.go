// Package acquire produces the start image of a run, either from a file or
// from a region of the screen. Both sources return the same normalised form
// (see imaging.Normalize), so the pipeline cannot tell them apart.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ironsheep/ocr-fields/internal/imaging"
)

// ErrNoImage wraps every acquisition failure: a missing or undecodable file,
// an empty capture, or a missing screen backend.
var ErrNoImage = errors.New("no image acquired")

// ErrNoScreen is returned when a screen source is requested without a
// capturer.
var ErrNoScreen = errors.New("screen capture not available")

// ScreenCapturer grabs pixels from the display. A nil region captures the
// whole primary screen.
type ScreenCapturer interface {
	Capture(ctx context.Context, region *imaging.Region) (image.Image, error)
}

// Source describes where the start image comes from. An empty File selects
// the screen.
type Source struct {
	// File is the image path.
	File string

	// Region restricts the image to a rectangle. For files it is applied as a
	// crop after loading; for the screen it is the capture area.
	Region *imaging.Region
}

func (s Source) String() string {
	target := "screen"
	if s.File != "" {
		target = s.File
	}
	if s.Region != nil {
		r := s.Region
		return fmt.Sprintf("%s[%d,%d %dx%d]", target, r.X, r.Y, r.Width, r.Height)
	}
	return target
}

// Acquirer resolves sources to images.
type Acquirer struct {
	// Cache loads files. Must not be nil for file sources.
	Cache *imaging.ImageCache

	// Screen captures the display. May be nil when only files are used.
	Screen ScreenCapturer
}

// New returns an Acquirer.
func New(cache *imaging.ImageCache, screen ScreenCapturer) *Acquirer {
	return &Acquirer{Cache: cache, Screen: screen}
}

// Acquire returns the image described by src.
func (a *Acquirer) Acquire(ctx context.Context, src Source) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Region != nil && src.Region.Empty() {
		return nil, fmt.Errorf("%w: %s: region has no area", ErrNoImage, src)
	}

	var (
		img image.Image
		err error
	)
	if src.File != "" {
		img, err = a.fromFile(src)
	} else {
		img, err = a.fromScreen(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s: image is empty", ErrNoImage, src)
	}
	return imaging.Normalize(img), nil
}

func (a *Acquirer) fromFile(src Source) (image.Image, error) {
	if a.Cache == nil {
		a.Cache = imaging.NewImageCache()
	}
	img, err := a.Cache.Load(src.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	if src.Region == nil {
		return img, nil
	}
	cropped, err := imaging.CropRegion(img, *src.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImage, err)
	}
	return cropped, nil
}

func (a *Acquirer) fromScreen(ctx context.Context, src Source) (image.Image, error) {
	if a.Screen == nil {
		return nil, fmt.Errorf("%w: %w", ErrNoImage, ErrNoScreen)
	}
	img, err := a.Screen.Capture(ctx, src.Region)
	if err != nil {
		return nil, fmt.Errorf("%w: capture %s: %w", ErrNoImage, src, err)
	}
	return img, nil
}

// ParseRegion parses "x,y,w,h" into a Region. Whitespace around the numbers
// is ignored.
func ParseRegion(s string) (imaging.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return imaging.Region{}, fmt.Errorf("region %q: want x,y,width,height", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return imaging.Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}

	r := imaging.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() || r.X < 0 || r.Y < 0 {
		return imaging.Region{}, fmt.Errorf("region %q: position must be non-negative and size positive", s)
	}
	return r, nil
}
