// Package tesseract implements ocr.Engine on top of the gosseract bindings.
//
// Building this package requires cgo and the Tesseract and Leptonica
// development libraries. Packages that only need the ocr.Engine contract do
// not import it.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Engine recognizes text with an in-process Tesseract client. A new client
// is created for every call, so an Engine is safe for concurrent use.
type Engine struct {
	newClient func() *gosseract.Client
}

// New returns a gosseract-backed engine.
func New() *Engine {
	return &Engine{newClient: gosseract.NewClient}
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "gosseract" }

// Recognize implements ocr.Engine.
//
// The image is handed to Tesseract as PNG. Word tokens come from the RIL_WORD
// iterator level; words Tesseract reports with no text are marked NoText.
// Options.Nice is not supported in-process and is rejected when non-zero.
//
// Tesseract cannot be interrupted, so when ctx ends first Recognize returns
// ctx.Err() immediately and the recognition finishes in the background.
func (e *Engine) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (*ocr.Result, error) {
	if img == nil {
		return nil, ocr.NewError("recognize", ocr.ErrNoImage, e.Name())
	}
	if opts.Nice != 0 {
		return nil, ocr.NewError("recognize", ocr.ErrUnsupportedOption, "nice level requires the command engine")
	}
	settings, err := ParseConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, ocr.NewError("recognize", err, "encode image")
	}

	type outcome struct {
		res *ocr.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.run(data, opts, settings)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.res, o.err
	}
}

func (e *Engine) run(data []byte, opts ocr.Options, s *Settings) (*ocr.Result, error) {
	client := e.newClient()
	defer client.Close()

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			return nil, ocr.NewError("recognize", err, "set tessdata prefix")
		}
	}
	if err := client.SetLanguage(opts.Languages()...); err != nil {
		return nil, ocr.NewError("recognize", err, "set language")
	}
	if s.PageSegMode != nil {
		if err := client.SetPageSegMode(gosseract.PageSegMode(*s.PageSegMode)); err != nil {
			return nil, ocr.NewError("recognize", err, "set page segmentation mode")
		}
	}
	for k, v := range s.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return nil, ocr.NewError("recognize", err, fmt.Sprintf("set variable %s", k))
		}
	}
	for k, v := range opts.Variables {
		if err := client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return nil, ocr.NewError("recognize", err, fmt.Sprintf("set variable %s", k))
		}
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, ocr.NewError("recognize", err, "set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, ocr.NewError("recognize", err, "tesseract")
	}

	// Return just the text if boxes fail; the confidence sub-score is then 0.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &ocr.Result{FullText: text}, nil
	}

	tokens := make([]ocr.Token, 0, len(boxes))
	for _, box := range boxes {
		tokens = append(tokens, wordToken(box))
	}

	return &ocr.Result{Tokens: tokens, FullText: text}, nil
}

// wordToken converts a word box. Word boxes carry no null marker, so only a
// box with no text at all is NoText; a whitespace word is a blank token.
func wordToken(box gosseract.BoundingBox) ocr.Token {
	return ocr.Token{
		Text:       box.Word,
		Confidence: box.Confidence,
		NoText:     box.Word == "",
		Bounds: ocr.Bounds{
			X1: box.Box.Min.X,
			Y1: box.Box.Min.Y,
			X2: box.Box.Max.X,
			Y2: box.Box.Max.Y,
		},
	}
}

// Settings is the parsed form of an ocr.Options Config string.
type Settings struct {
	// PageSegMode is set by "--psm N".
	PageSegMode *int

	// Variables are set by "-c key=value" and "--dpi N".
	Variables map[string]string
}

// ParseConfig parses the Tesseract command-line options that have an
// in-process equivalent: "--psm N", "-c key=value" (also "-ckey=value") and
// "--dpi N". Anything else is rejected with ocr.ErrUnsupportedOption.
func ParseConfig(config string) (*Settings, error) {
	s := &Settings{Variables: make(map[string]string)}
	args := strings.Fields(config)

	value := func(i int) (string, error) {
		if i+1 >= len(args) {
			return "", ocr.NewError("parse config", ocr.ErrUnsupportedOption, fmt.Sprintf("%s needs a value", args[i]))
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--psm":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 || n > 13 {
				return nil, ocr.NewError("parse config", ocr.ErrUnsupportedOption, fmt.Sprintf("invalid page segmentation mode %q", v))
			}
			s.PageSegMode = &n
			i++

		case arg == "--dpi":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			if _, err := strconv.Atoi(v); err != nil {
				return nil, ocr.NewError("parse config", ocr.ErrUnsupportedOption, fmt.Sprintf("invalid dpi %q", v))
			}
			s.Variables["user_defined_dpi"] = v
			i++

		case strings.HasPrefix(arg, "-c"):
			kv := strings.TrimPrefix(arg, "-c")
			if kv == "" {
				v, err := value(i)
				if err != nil {
					return nil, err
				}
				kv = v
				i++
			}
			k, v, ok := strings.Cut(kv, "=")
			if !ok || k == "" {
				return nil, ocr.NewError("parse config", ocr.ErrUnsupportedOption, fmt.Sprintf("invalid variable %q", kv))
			}
			s.Variables[k] = v

		default:
			return nil, ocr.NewError("parse config", ocr.ErrUnsupportedOption, fmt.Sprintf("%q", arg))
		}
	}
	return s, nil
}
