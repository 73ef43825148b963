package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/ironsheep/ocr-fields/internal/fields"
)

// Result is the outcome of a full run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string `json:"run_id"`

	// Text and Score come from the winner of the last field that had one.
	Text  string  `json:"text"`
	Score float64 `json:"score"`

	// Found is false when no field produced a winner; Text and Score are
	// then empty.
	Found bool `json:"found"`

	// Image is the image after the last field.
	Image image.Image `json:"-"`

	// Fields holds every field result in execution order.
	Fields []FieldResult `json:"fields"`

	// Warnings lists fields that had no successful path.
	Warnings []string `json:"warnings,omitempty"`
}

// RunFields runs the fields of set in order. Each field starts from the
// previous field's winning image; a field without a winner leaves the image
// as it was. The set's OCR section is merged over the pipeline's options.
//
// Returns ErrNoImage, ErrNoFields or the context's error; every other failure
// is reported inside the result.
func (p *Pipeline) RunFields(ctx context.Context, set *fields.FieldSet, img image.Image) (*Result, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	if set == nil || len(set.Fields) == 0 {
		return nil, ErrNoFields
	}

	res := &Result{RunID: uuid.NewString()}
	log := p.log.With().Str("run_id", res.RunID).Logger()
	opts := p.cfg.OCR.Merge(set.OCR)
	start := time.Now()

	cur := img
	for _, field := range set.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr := p.runField(ctx, field, cur, opts)
		res.Fields = append(res.Fields, fr)

		winner, ok := fr.Winner()
		if !ok {
			warning := fmt.Sprintf("field %q: no path succeeded, keeping previous image", field.Name)
			res.Warnings = append(res.Warnings, warning)
			log.Warn().Str("field", field.Name).Int("paths", len(field.Paths)).Msg("no path succeeded")
			continue
		}

		cur = winner.Image
		res.Text, res.Score, res.Found = winner.Text, winner.Score, true
		log.Debug().
			Str("field", field.Name).
			Str("winner", winner.Path).
			Float64("score", winner.Score).
			Msg("field complete")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Image = cur
	log.Info().
		Int("fields", len(set.Fields)).
		Bool("found", res.Found).
		Float64("score", res.Score).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")
	return res, nil
}
