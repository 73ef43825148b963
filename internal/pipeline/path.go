package pipeline

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/ocr-fields/internal/fields"
	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/ocr"
)

// PathResult is the scored outcome of one path.
type PathResult struct {
	// Path is the path name.
	Path string `json:"path"`

	// Image is the image that was recognized: the transformed image, or the
	// path's input image when the path was abandoned.
	Image image.Image `json:"-"`

	// Status is true when every step resolved and recognition succeeded.
	// Only such results are ranked.
	Status bool `json:"status"`

	// Text is the engine's full-text output.
	Text string `json:"text"`

	// Tokens are the engine's word-level items.
	Tokens []ocr.Token `json:"tokens,omitempty"`

	// Score is the mean of Confidence and Irregular.
	Score float64 `json:"score"`

	Confidence float64 `json:"confidence"`
	Irregular  float64 `json:"irregular"`

	// Warnings lists degraded transforms.
	Warnings []string `json:"warnings,omitempty"`

	// Err is the reason Status is false: an *UnknownStepError, an OCR error,
	// or both joined.
	Err error `json:"-"`
}

// Transform applies steps to img in order and returns the final image.
//
// Degraded transforms add a warning and processing continues with the image
// they returned. The first step missing from the registry stops processing:
// the returned image is img itself and the error is an *UnknownStepError.
func (p *Pipeline) Transform(img image.Image, steps []fields.Step) (image.Image, []string, error) {
	var warnings []string
	cur := img
	for i, step := range steps {
		fn, ok := p.registry.Lookup(step.Name)
		if !ok {
			return img, warnings, &UnknownStepError{Step: step.Name, Index: i}
		}
		out, err := fn(cur, imaging.Options(step.Config))
		if err != nil {
			warnings = append(warnings, err.Error())
		}
		if out != nil {
			cur = out
		}
	}
	return cur, warnings, nil
}

// RunPath applies path to img and scores the OCR of the result. Every path
// yields a complete result; failures are reported through Status and Err.
func (p *Pipeline) RunPath(ctx context.Context, path fields.Path, img image.Image) PathResult {
	return p.runPath(ctx, path, img, p.cfg.OCR)
}

func (p *Pipeline) runPath(ctx context.Context, path fields.Path, img image.Image, opts ocr.Options) PathResult {
	res := PathResult{Path: path.Name, Status: true}

	out, warnings, err := p.Transform(img, path.Steps)
	res.Image, res.Warnings = out, warnings
	if err != nil {
		res.Status = false
		res.Err = err
	}

	rec, err := ocr.Recognize(ctx, p.engine, res.Image, opts)
	if err != nil {
		res.Status = false
		res.Err = errors.Join(res.Err, err)
		p.log.Debug().Str("path", path.Name).Err(res.Err).Msg("path failed")
		return res
	}

	res.Text = rec.FullText
	res.Tokens = rec.Tokens
	res.Score = rec.Total
	res.Confidence = rec.Confidence
	res.Irregular = rec.Irregular

	p.log.Debug().
		Str("path", path.Name).
		Bool("status", res.Status).
		Float64("score", res.Score).
		Strs("warnings", res.Warnings).
		Msg("path complete")
	return res
}
