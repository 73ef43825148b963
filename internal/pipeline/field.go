package pipeline

import (
	"context"
	"image"
	"sort"

	"github.com/ironsheep/ocr-fields/internal/fields"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"golang.org/x/sync/errgroup"
)

// FieldResult holds every path result of one field.
type FieldResult struct {
	// Field is the field name.
	Field string `json:"field"`

	// Paths holds one result per path, in declaration order.
	Paths []PathResult `json:"paths"`

	// Ranked holds the successful results by descending score. Equal scores
	// keep declaration order.
	Ranked []PathResult `json:"-"`
}

// Winner returns the best successful path result.
func (r FieldResult) Winner() (PathResult, bool) {
	if len(r.Ranked) == 0 {
		return PathResult{}, false
	}
	return r.Ranked[0], true
}

// RunField runs every path of field against img. Paths never see each
// other's output.
func (p *Pipeline) RunField(ctx context.Context, field fields.Field, img image.Image) FieldResult {
	return p.runField(ctx, field, img, p.cfg.OCR)
}

func (p *Pipeline) runField(ctx context.Context, field fields.Field, img image.Image, opts ocr.Options) FieldResult {
	results := make([]PathResult, len(field.Paths))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i, path := range field.Paths {
		g.Go(func() error {
			results[i] = p.runPath(ctx, path, img, opts)
			return nil
		})
	}
	g.Wait()

	return FieldResult{
		Field:  field.Name,
		Paths:  results,
		Ranked: rank(results),
	}
}

// rank keeps successful results and orders them by descending score.
func rank(results []PathResult) []PathResult {
	ranked := make([]PathResult, 0, len(results))
	for _, r := range results {
		if r.Status {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
