package imaging

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Dilate applies morphological dilation.
//
// Options:
//   - iterations: number of passes (default 1).
//   - kernel: side length of the square structuring element (default 1).
//
// With the default 1x1 kernel a pass leaves every pixel as it is, so the
// iteration count is the only lever that matters until kernel is raised.
func Dilate(img image.Image, opts Options) (image.Image, error) {
	return morph(img, opts, effect.Dilate), nil
}

// Erode applies morphological erosion. Options are the same as for Dilate.
func Erode(img image.Image, opts Options) (image.Image, error) {
	return morph(img, opts, effect.Erode), nil
}

func morph(img image.Image, opts Options, op func(image.Image, float64) *image.RGBA) image.Image {
	iterations := opts.Int("iterations", 1)
	radius := (opts.Int("kernel", 1) - 1) / 2
	if iterations < 1 || radius < 1 {
		return copyImage(img)
	}

	cur := img
	for i := 0; i < iterations; i++ {
		cur = op(cur, float64(radius))
	}
	return restoreForm(img, cur)
}

// Greyscale converts a colour image to a single-channel *image.Gray.
//
// Options:
//   - method: "luma" (default) for weighted RGB luma, or "lightness" for CIE L*.
//
// A single-channel or empty input, or an unknown method, is returned unchanged
// with a *DegradedError.
func Greyscale(img image.Image, opts Options) (image.Image, error) {
	if img.Bounds().Empty() {
		return img, degraded("greyscale", "image has no pixels")
	}
	if Channels(img) == 1 {
		return img, degraded("greyscale", "image is already single-channel")
	}

	switch method := strings.ToLower(opts.String("method", "luma")); method {
	case "luma":
		return effect.Grayscale(img), nil
	case "lightness":
		return lightness(img), nil
	default:
		return img, degraded("greyscale", "unknown method %q", method)
	}
}

// lightness maps every pixel to its CIE L* value scaled to 0-255.
func lightness(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c, _ := colorful.MakeColor(img.At(b.Min.X+x, b.Min.Y+y))
			l, _, _ := c.Lab()
			l = math.Max(0, math.Min(1, l))
			out.SetGray(x, y, color.Gray{Y: uint8(math.Round(l * 255))})
		}
	}
	return out
}

// Invert returns the bitwise complement of every colour channel. Alpha is kept,
// so inverting twice yields the original pixels.
func Invert(img image.Image, _ Options) (image.Image, error) {
	if g, ok := img.(*image.Gray); ok {
		out := toGray(g)
		for i, v := range out.Pix {
			out.Pix[i] = ^v
		}
		return out, nil
	}
	return imaging.Invert(img), nil
}

// Resize limits.
const (
	MaxResizeSide   = 1 << 16
	MaxResizePixels = 1 << 27
)

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Resize scales an image by independent horizontal and vertical factors.
//
// Options:
//   - fx: horizontal factor (default 2).
//   - fy: vertical factor (default 2).
//   - interpolation: "nearest", "linear", "cubic" (default), "area" or
//     "lanczos", or the equivalent OpenCV codes 0-4. Unknown values use cubic.
//
// Non-positive or non-finite factors, or a result larger than
// MaxResizeSide on either side or MaxResizePixels in area, leave the image
// unchanged with a *DegradedError.
func Resize(img image.Image, opts Options) (image.Image, error) {
	fx := opts.Float("fx", 2)
	fy := opts.Float("fy", 2)
	if !finite(fx) || !finite(fy) || fx <= 0 || fy <= 0 {
		return img, degraded("resize", "scale factors must be positive, got fx=%v fy=%v", fx, fy)
	}

	b := img.Bounds()
	fw := math.Max(1, math.Round(float64(b.Dx())*fx))
	fh := math.Max(1, math.Round(float64(b.Dy())*fy))
	// The horizontal pass allocates w x srcH before the vertical pass runs.
	if fw > MaxResizeSide || fh > MaxResizeSide || fw*math.Max(fh, float64(b.Dy())) > MaxResizePixels {
		return img, degraded("resize", "result of %.0fx%.0f pixels is too large", fw, fh)
	}

	out := imaging.Resize(img, int(fw), int(fh), interpolation(opts.String("interpolation", "cubic")))
	return restoreForm(img, out), nil
}

// interpolation resolves an interpolation name or OpenCV code to a filter.
func interpolation(name string) imaging.ResampleFilter {
	name = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "inter_")
	if code, err := strconv.Atoi(name); err == nil {
		switch code {
		case 0:
			name = "nearest"
		case 1:
			name = "linear"
		case 3:
			name = "area"
		case 4:
			name = "lanczos"
		default:
			name = "cubic"
		}
	}

	switch name {
	case "nearest":
		return imaging.NearestNeighbor
	case "linear":
		return imaging.Linear
	case "area":
		return imaging.Box
	case "lanczos", "lanczos4":
		return imaging.Lanczos
	default:
		return imaging.CatmullRom
	}
}

// Threshold binarises an image using Otsu's method.
//
// The image is first converted to greyscale, then optionally median blurred,
// then thresholded so that pixels above the Otsu level become white and all
// others black.
//
// Options:
//   - MedianBlur: kernel size of the median blur; must be odd and greater
//     than 1 to take effect. Off by default.
//   - Binary_OTSU: must be "True" for thresholding to happen. Otherwise the
//     input is returned unchanged with a *DegradedError.
func Threshold(img image.Image, opts Options) (image.Image, error) {
	if !opts.Flag("Binary_OTSU") {
		return img, degraded("threshold", "Binary_OTSU is not \"True\"")
	}

	grey, _ := Greyscale(img, nil)
	g, ok := grey.(*image.Gray)
	if !ok {
		g = toGray(grey)
	}

	if k := opts.Int("MedianBlur", 0); k > 1 {
		g = toGray(effect.Median(g, float64((k-1)/2)))
	}

	return binarize(g, otsuLevel(g)), nil
}

// binarize maps pixels above level to white and the rest to black.
func binarize(img *image.Gray, level uint8) *image.Gray {
	out := toGray(img)
	for i, v := range out.Pix {
		if v > level {
			out.Pix[i] = 255
		} else {
			out.Pix[i] = 0
		}
	}
	return out
}

// otsuLevel returns the grey level that maximises the between-class variance
// of the histogram. Pixels at or below the level form the dark class.
func otsuLevel(img *image.Gray) uint8 {
	hist := imaging.Histogram(img)

	var mean float64
	for i, p := range hist {
		mean += float64(i) * p
	}

	var (
		best  float64
		level int
		wB    float64
		sumB  float64
	)
	for t, p := range hist {
		wB += p
		if wB == 0 {
			continue
		}
		wF := 1 - wB
		if wF <= 1e-12 {
			break
		}
		sumB += float64(t) * p
		mB := sumB / wB
		mF := (mean - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}
