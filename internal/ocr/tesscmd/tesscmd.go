// Package tesscmd implements ocr.Engine by running the tesseract executable.
//
// Each recognition writes the image to a temporary PNG, runs
//
//	[nice -n N] tesseract input.png out -l LANG [--tessdata-dir DIR] [CONFIG...] [-c k=v...] tsv txt
//
// and parses out.tsv into tokens and out.txt into the full text. Unlike the
// in-process engine it needs no cgo, honours Options.Nice and passes
// Options.Config to tesseract verbatim.
package tesscmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/ocr"
)

// DefaultCommand is used when Options.Command is empty.
const DefaultCommand = "tesseract"

// Runner runs an external command.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Engine runs the tesseract executable. It is safe for concurrent use; every
// call works in its own temporary directory.
type Engine struct {
	runner  Runner
	tempDir string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces the command runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithTempDir sets the parent of the per-call working directories. The
// default is the system temp directory.
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// New returns an engine that runs tesseract through os/exec.
func New(opts ...Option) *Engine {
	e := &Engine{runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract-cmd" }

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, img image.Image, opts ocr.Options) (*ocr.Result, error) {
	if img == nil {
		return nil, ocr.NewError("recognize", ocr.ErrNoImage, e.Name())
	}

	dir, err := os.MkdirTemp(e.tempDir, "tesscmd-*")
	if err != nil {
		return nil, ocr.NewError("recognize", err, "create work directory")
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.png")
	if err := imaging.SavePNG(input, img); err != nil {
		return nil, ocr.NewError("recognize", err, "write input image")
	}
	outBase := filepath.Join(dir, "out")

	name, args := Command(input, outBase, opts)
	_, stderr, err := e.runner.Run(ctx, name, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ocr.NewError("recognize", ocr.ErrEngineUnavailable, name)
		}
		return nil, ocr.NewError("recognize", err, strings.TrimSpace(string(stderr)))
	}

	tsv, err := os.ReadFile(outBase + ".tsv")
	if err != nil {
		return nil, ocr.NewError("recognize", err, "read tsv output")
	}
	tokens, err := ParseTSV(tsv)
	if err != nil {
		return nil, err
	}

	text, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return nil, ocr.NewError("recognize", err, "read text output")
	}

	return &ocr.Result{Tokens: tokens, FullText: string(text)}, nil
}

// Command returns the program and arguments that recognize input, writing
// outBase.tsv and outBase.txt.
func Command(input, outBase string, opts ocr.Options) (string, []string) {
	command := opts.Command
	if command == "" {
		command = DefaultCommand
	}

	args := []string{input, outBase, "-l", strings.Join(opts.Languages(), "+")}
	if opts.TessdataPrefix != "" {
		args = append(args, "--tessdata-dir", opts.TessdataPrefix)
	}
	args = append(args, strings.Fields(opts.Config)...)
	for _, k := range slices.Sorted(maps.Keys(opts.Variables)) {
		args = append(args, "-c", k+"="+opts.Variables[k])
	}
	args = append(args, "tsv", "txt")

	if opts.Nice != 0 {
		return "nice", append([]string{"-n", strconv.Itoa(opts.Nice), command}, args...)
	}
	return command, args
}

// ErrMalformedTSV is returned for TSV output that cannot be parsed.
var ErrMalformedTSV = errors.New("malformed tesseract TSV")

// tsvColumns is the column count of tesseract's TSV output:
// level page_num block_num par_num line_num word_num left top width height conf text
const tsvColumns = 12

// ParseTSV converts tesseract TSV output into tokens, one per data row. Rows
// with an empty text cell (page, block, paragraph and line rows, and empty
// word boxes) are marked NoText.
func ParseTSV(data []byte) ([]ocr.Token, error) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	tokens := make([]ocr.Token, 0, len(lines))

	for i, line := range lines {
		if line == "" {
			continue
		}
		if i == 0 && strings.HasPrefix(line, "level\t") {
			continue
		}

		cols := strings.SplitN(line, "\t", tsvColumns)
		if len(cols) == tsvColumns-1 {
			cols = append(cols, "")
		}
		if len(cols) != tsvColumns {
			return nil, ocr.NewError("parse tsv", ErrMalformedTSV, fmt.Sprintf("line %d has %d columns", i+1, len(cols)))
		}

		var box [4]int
		for j := range box {
			v, err := strconv.Atoi(cols[6+j])
			if err != nil {
				return nil, ocr.NewError("parse tsv", ErrMalformedTSV, fmt.Sprintf("line %d: bad box value %q", i+1, cols[6+j]))
			}
			box[j] = v
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			return nil, ocr.NewError("parse tsv", ErrMalformedTSV, fmt.Sprintf("line %d: bad confidence %q", i+1, cols[10]))
		}

		text := cols[11]
		tokens = append(tokens, ocr.Token{
			Text:       text,
			Confidence: conf,
			NoText:     text == "",
			Bounds: ocr.Bounds{
				X1: box[0],
				Y1: box[1],
				X2: box[0] + box[2],
				Y2: box[1] + box[3],
			},
		})
	}
	return tokens, nil
}
