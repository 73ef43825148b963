package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Recognition is a scored engine result.
type Recognition struct {
	Result
	Scores
}

// Recognize runs engine on img with opts.Timeout applied and scores the
// result.
//
// Returns:
//   - *Recognition: tokens, full text and scores.
//   - error: an *Error wrapping ErrNoImage, ErrEngineUnavailable, ErrTimeout or
//     the engine's own failure.
func Recognize(ctx context.Context, engine Engine, img image.Image, opts Options) (*Recognition, error) {
	if img == nil {
		return nil, NewError("recognize", ErrNoImage, "")
	}
	if engine == nil {
		return nil, NewError("recognize", ErrEngineUnavailable, "no engine configured")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res, err := engine.Recognize(ctx, img, opts)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, NewError("recognize", ErrTimeout, fmt.Sprintf("%s after %s", engine.Name(), opts.Timeout))
		}
		return nil, WrapError("recognize", err, engine.Name())
	}
	if res == nil {
		res = &Result{}
	}

	return &Recognition{Result: *res, Scores: Score(res)}, nil
}
