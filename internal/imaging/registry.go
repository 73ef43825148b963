package imaging

import (
	"fmt"
	"image"
	"sort"
	"sync"
)

// Transform is a named preprocessing operation. It must not modify img.
//
// A non-nil error is always a *DegradedError: the operation could not be
// applied and the returned image is the input, unchanged.
type Transform func(img image.Image, opts Options) (image.Image, error)

// DegradedError reports a transform that fell back to returning its input.
type DegradedError struct {
	// Op is the transform name.
	Op string

	// Reason describes why the transform was not applied.
	Reason string
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s: %s, image returned unchanged", e.Op, e.Reason)
}

func degraded(op, format string, args ...any) *DegradedError {
	return &DegradedError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// Registry maps step names to transforms. The zero value is not usable; use
// NewRegistry or DefaultRegistry.
type Registry struct {
	mu  sync.RWMutex
	ops map[string]Transform
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Transform)}
}

// DefaultRegistry returns a new registry holding the built-in transforms.
// Each call returns an independent registry, so callers may register extra
// operations without affecting others.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("dilate", Dilate)
	r.Register("erode", Erode)
	r.Register("greyscale", Greyscale)
	r.Register("invert", Invert)
	r.Register("resize", Resize)
	r.Register("threshold", Threshold)
	return r
}

// Register adds or replaces the transform for name.
func (r *Registry) Register(name string, fn Transform) {
	r.mu.Lock()
	r.ops[name] = fn
	r.mu.Unlock()
}

// Lookup returns the transform registered for name.
func (r *Registry) Lookup(name string) (Transform, bool) {
	r.mu.RLock()
	fn, ok := r.ops[name]
	r.mu.RUnlock()
	return fn, ok
}

// Names returns the registered step names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
