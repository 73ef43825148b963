package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/logger"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"github.com/rs/zerolog"
)

// ErrNoImage is returned by RunFields when there is no start image.
var ErrNoImage = errors.New("no start image")

// ErrNoFields is returned by RunFields when the field set is nil or empty.
var ErrNoFields = errors.New("no fields to run")

// UnknownStepError reports a step name missing from the transform registry.
type UnknownStepError struct {
	// Step is the unresolved name.
	Step string

	// Index is the zero-based position of the step within its path.
	Index int
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q at position %d", e.Step, e.Index+1)
}

// Config controls a Pipeline.
type Config struct {
	// Workers is the number of paths of a field run concurrently. Zero or
	// one runs them one after another.
	Workers int

	// OCR is passed to the engine for every recognition. A field set's own
	// OCR section is merged over it by RunFields.
	OCR ocr.Options
}

// Pipeline runs paths, fields and field sets. It is safe for concurrent use
// if its engine is.
type Pipeline struct {
	engine   ocr.Engine
	cfg      Config
	registry *imaging.Registry
	log      zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRegistry replaces the default transform registry.
func WithRegistry(r *imaging.Registry) Option {
	return func(p *Pipeline) { p.registry = r }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// New returns a pipeline that recognizes with engine.
func New(engine ocr.Engine, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		engine:   engine,
		cfg:      cfg,
		registry: imaging.DefaultRegistry(),
		log:      logger.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the transform registry in use.
func (p *Pipeline) Registry() *imaging.Registry {
	return p.registry
}

// WithOCR returns a copy of p whose OCR options are overridden by every
// non-zero field of over. p itself is unchanged.
func (p *Pipeline) WithOCR(over ocr.Options) *Pipeline {
	cp := *p
	cp.cfg.OCR = p.cfg.OCR.Merge(over)
	return &cp
}

// Recognize runs the engine on img without any transforms.
func (p *Pipeline) Recognize(ctx context.Context, img image.Image) (*ocr.Recognition, error) {
	return ocr.Recognize(ctx, p.engine, img, p.cfg.OCR)
}

func (p *Pipeline) workers() int {
	return max(1, p.cfg.Workers)
}
