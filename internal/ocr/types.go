package ocr

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DefaultLanguage is used when Options.Language is empty.
const DefaultLanguage = "eng"

// Engine recognizes text in an image.
//
// Implementations must not modify img and must honour ctx cancellation.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string

	// Recognize runs OCR on img. Options an engine does not understand are
	// reported as an error rather than silently ignored.
	Recognize(ctx context.Context, img image.Image, opts Options) (*Result, error)
}

// Options is passed through to the engine unchanged.
type Options struct {
	// Language is a Tesseract language code; several codes are joined with
	// "+" (e.g., "eng+fra"). Empty means DefaultLanguage.
	Language string `json:"lang,omitempty" yaml:"lang,omitempty"`

	// Config is a free-form engine configuration string such as "--psm 7"
	// or "-c tessedit_char_whitelist=0123456789".
	Config string `json:"config,omitempty" yaml:"config,omitempty"`

	// Nice is the scheduling priority adjustment for engines that start a
	// process. Zero leaves the priority unchanged.
	Nice int `json:"nice,omitempty" yaml:"nice,omitempty"`

	// Timeout bounds a single recognition. Zero means no limit.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Command is the path of the tesseract executable.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// TessdataPrefix is the directory holding the traineddata files. Empty
	// uses the engine's default location.
	TessdataPrefix string `json:"tessdata_prefix,omitempty" yaml:"tessdata_prefix,omitempty"`

	// Variables are extra engine variables, set as "-c key=value".
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Merge returns o overridden by every non-zero field of over. Variables are
// merged key by key.
func (o Options) Merge(over Options) Options {
	out := o
	if over.Language != "" {
		out.Language = over.Language
	}
	if over.Config != "" {
		out.Config = over.Config
	}
	if over.Nice != 0 {
		out.Nice = over.Nice
	}
	if over.Timeout != 0 {
		out.Timeout = over.Timeout
	}
	if over.Command != "" {
		out.Command = over.Command
	}
	if over.TessdataPrefix != "" {
		out.TessdataPrefix = over.TessdataPrefix
	}
	if len(o.Variables) > 0 || len(over.Variables) > 0 {
		out.Variables = make(map[string]string, len(o.Variables)+len(over.Variables))
		for k, v := range o.Variables {
			out.Variables[k] = v
		}
		for k, v := range over.Variables {
			out.Variables[k] = v
		}
	}
	return out
}

// ParseTimeout accepts a duration string ("10s") or a number of seconds,
// which may itself be a string ("1.5"). Nil is no limit.
func ParseTimeout(v any) (time.Duration, error) {
	if v == nil {
		return 0, nil
	}
	if secs, err := cast.ToFloat64E(v); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) || secs > math.MaxInt64/float64(time.Second) {
			return 0, fmt.Errorf("invalid timeout %v", v)
		}
		if secs < 0 {
			return 0, fmt.Errorf("timeout must not be negative, got %v", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("invalid timeout %v", v)
	}
	d, err := time.ParseDuration(strings.TrimSpace(str))
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", str, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", d)
	}
	return d, nil
}

// Languages splits Language on "+", falling back to DefaultLanguage.
func (o Options) Languages() []string {
	var langs []string
	for _, l := range strings.Split(o.Language, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Token is one word-level item reported by the engine.
type Token struct {
	// Text is the recognized word. It may be empty.
	Text string `json:"text"`

	// Confidence is the engine confidence, 0 to 100.
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the token in the recognized image.
	Bounds Bounds `json:"bounds"`

	// NoText is set for regions the engine reports as containing no text.
	// Such tokens are excluded from the confidence sub-score.
	NoText bool `json:"no_text,omitempty"`
}

// Result is the raw output of one recognition.
type Result struct {
	// Tokens are the word-level items in engine order.
	Tokens []Token `json:"tokens"`

	// FullText is the engine's whole-text output with its original spacing.
	FullText string `json:"full_text"`
}
