package imaging

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// Normalize converts an arbitrary image into one of the two forms the
// transforms work on: *image.Gray for single-channel sources and an opaque
// *image.NRGBA for everything else. The result always has its origin at (0,0)
// and never shares pixel memory with the input.
func Normalize(img image.Image) image.Image {
	if img == nil {
		return nil
	}
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return toGray(img)
	}

	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// Channels reports 1 for single-channel images and 3 otherwise.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	return 3
}

// Equal reports whether two images have the same dimensions and identical
// pixel values.
func Equal(a, b image.Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}

// toGray copies img into a new *image.Gray with origin (0,0). Images whose
// channels are already equal (the output of bild on a grey input) convert
// exactly.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// restoreForm converts a transform output back to the form of the transform
// input: single-channel stays single-channel and colour comes back as NRGBA.
func restoreForm(in, out image.Image) image.Image {
	if _, ok := in.(*image.Gray); ok {
		if g, ok := out.(*image.Gray); ok {
			return g
		}
		return toGray(out)
	}
	if n, ok := out.(*image.NRGBA); ok {
		return n
	}
	return imaging.Clone(out)
}

// copyImage returns a copy of img in its own form.
func copyImage(img image.Image) image.Image {
	if _, ok := img.(*image.Gray); ok {
		return toGray(img)
	}
	return imaging.Clone(img)
}
