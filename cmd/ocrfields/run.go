package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/ocr-fields/internal/acquire"
	"github.com/ironsheep/ocr-fields/internal/fields"
	"github.com/ironsheep/ocr-fields/internal/imaging"
	"github.com/ironsheep/ocr-fields/internal/logger"
	"github.com/ironsheep/ocr-fields/internal/pipeline"
	"github.com/spf13/cobra"
)

type runOptions struct {
	fieldsFile string
	image      string
	region     string
	workers    int
	json       bool
	saveWinner string
	watch      bool
}

// source resolves --image and --region. Without --image the screen is used.
func (o runOptions) source() (acquire.Source, error) {
	src := acquire.Source{File: o.image}
	if o.region != "" {
		r, err := acquire.ParseRegion(o.region)
		if err != nil {
			return src, err
		}
		src.Region = &r
	}
	return src, nil
}

func newRunCmd(a *app) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every field of a fields file and print the winning text",
		Example: `  # Read a saved capture
  ocrfields run --fields fields.yaml --image capture.png

  # Read a region of the screen and print the full result as JSON
  ocrfields run --fields fields.yaml --region 100,200,400,60 --json

  # Re-run whenever fields.yaml is saved
  ocrfields run --fields fields.yaml --image capture.png --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.fieldsFile, "fields", "f", "", "Fields file (YAML or JSON)")
	f.StringVarP(&opts.image, "image", "i", "", "Image file; omit to capture the screen")
	f.StringVarP(&opts.region, "region", "r", "", "Region as x,y,width,height (crop for files, capture area for the screen)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Paths run concurrently per field (default OCR_FIELDS_WORKERS)")
	f.BoolVar(&opts.json, "json", false, "Print the full result as JSON")
	f.StringVar(&opts.saveWinner, "save-winner", "", "Write the final winning image to this PNG file")
	f.BoolVar(&opts.watch, "watch", false, "Re-run when the fields file changes, until interrupted")
	_ = cmd.MarkFlagRequired("fields")

	return cmd
}

func (a *app) run(ctx context.Context, w io.Writer, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.WithComponent("run")

	src, err := opts.source()
	if err != nil {
		return err
	}
	p, err := a.pipeline(opts.workers)
	if err != nil {
		return err
	}
	acq := acquire.New(imaging.NewImageCache(), nil)
	if src.File == "" {
		acq.Screen = a.newScreen()
	}

	once := func(set *fields.FieldSet) error {
		img, err := acq.Acquire(ctx, src)
		if err != nil {
			return err
		}
		res, err := p.RunFields(ctx, set, img)
		if err != nil {
			return err
		}
		if opts.saveWinner != "" {
			if err := imaging.SavePNG(opts.saveWinner, res.Image); err != nil {
				return err
			}
		}
		return writeResult(w, res, opts.json)
	}

	set, err := fields.Load(opts.fieldsFile)
	if err != nil {
		return err
	}
	if err := once(set); err != nil {
		if !opts.watch {
			return err
		}
		log.Error().Err(err).Msg("run failed")
	}
	if !opts.watch {
		return nil
	}

	log.Info().Str("fields", opts.fieldsFile).Msg("watching for changes, interrupt to stop")
	return fields.Watch(ctx, opts.fieldsFile, fields.DefaultDebounce, func(set *fields.FieldSet, err error) {
		if err != nil {
			return
		}
		if err := once(set); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("run failed")
		}
	})
}

// runJSON is the --json output.
type runJSON struct {
	RunID    string      `json:"run_id"`
	Text     string      `json:"text"`
	Score    float64     `json:"score"`
	Found    bool        `json:"found"`
	Warnings []string    `json:"warnings,omitempty"`
	Fields   []fieldJSON `json:"fields"`
}

type fieldJSON struct {
	Field  string     `json:"field"`
	Winner string     `json:"winner,omitempty"`
	Paths  []pathJSON `json:"paths"`
}

type pathJSON struct {
	Path     string   `json:"path"`
	Status   bool     `json:"status"`
	Score    float64  `json:"score"`
	Text     string   `json:"text"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func writeResult(w io.Writer, res *pipeline.Result, asJSON bool) error {
	if !asJSON {
		if !res.Found {
			_, err := fmt.Fprintf(w, "no text found (run %s)\n", res.RunID)
			return err
		}
		_, err := fmt.Fprintf(w, "%s\nscore: %.2f\n", strings.TrimRight(res.Text, "\r\n"), res.Score)
		return err
	}

	out := runJSON{
		RunID:    res.RunID,
		Text:     res.Text,
		Score:    res.Score,
		Found:    res.Found,
		Warnings: res.Warnings,
		Fields:   make([]fieldJSON, 0, len(res.Fields)),
	}
	for _, fr := range res.Fields {
		fj := fieldJSON{Field: fr.Field}
		if winner, ok := fr.Winner(); ok {
			fj.Winner = winner.Path
		}
		for _, pr := range fr.Paths {
			pj := pathJSON{Path: pr.Path, Status: pr.Status, Score: pr.Score, Text: pr.Text, Warnings: pr.Warnings}
			if pr.Err != nil {
				pj.Error = pr.Err.Error()
			}
			fj.Paths = append(fj.Paths, pj)
		}
		out.Fields = append(out.Fields, fj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
