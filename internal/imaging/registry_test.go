package imaging

import (
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultRegistry_Names(t *testing.T) {
	want := []string{"dilate", "erode", "greyscale", "invert", "resize", "threshold"}
	if got := DefaultRegistry().Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names: got %v, want %v", got, want)
	}
}

func TestRegistry_RegisterIsIndependent(t *testing.T) {
	a := DefaultRegistry()
	b := DefaultRegistry()

	a.Register("noop", func(img image.Image, _ Options) (image.Image, error) { return img, nil })

	if _, ok := a.Lookup("noop"); !ok {
		t.Error("registered transform not found")
	}
	if _, ok := b.Lookup("noop"); ok {
		t.Error("registering on one registry leaked into another")
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	if _, ok := NewRegistry().Lookup("invert"); ok {
		t.Error("empty registry should not resolve names")
	}
	if _, ok := DefaultRegistry().Lookup("Invert"); ok {
		t.Error("lookup should be case-sensitive")
	}
}

func TestDegradedError(t *testing.T) {
	var err error = degraded("resize", "fx=%d", -1)

	var deg *DegradedError
	if !errors.As(err, &deg) {
		t.Fatal("expected *DegradedError")
	}
	if deg.Op != "resize" || deg.Reason != "fx=-1" {
		t.Errorf("got Op=%q Reason=%q", deg.Op, deg.Reason)
	}
	if !strings.Contains(err.Error(), "unchanged") {
		t.Errorf("message should say the image is unchanged: %s", err)
	}
}
