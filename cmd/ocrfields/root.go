package main

import (
	"fmt"
	"io"

	"github.com/ironsheep/ocr-fields/internal/acquire"
	"github.com/ironsheep/ocr-fields/internal/acquire/screen"
	"github.com/ironsheep/ocr-fields/internal/config"
	"github.com/ironsheep/ocr-fields/internal/logger"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"github.com/ironsheep/ocr-fields/internal/ocr/tesscmd"
	"github.com/ironsheep/ocr-fields/internal/ocr/tesseract"
	"github.com/ironsheep/ocr-fields/internal/pipeline"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	closer io.Closer

	newEngine func(*config.Config) (ocr.Engine, error)
	newScreen func() acquire.ScreenCapturer
}

func newApp() *app {
	return &app{
		newEngine: newEngine,
		newScreen: func() acquire.ScreenCapturer { return screen.New() },
	}
}

// newEngine selects the OCR engine named in the configuration.
func newEngine(cfg *config.Config) (ocr.Engine, error) {
	switch cfg.Engine {
	case config.EngineGosseract:
		return tesseract.New(), nil
	case config.EngineCommand:
		return tesscmd.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}

// pipeline builds a pipeline from the configuration. A positive workers
// overrides the configured worker count.
func (a *app) pipeline(workers int) (*pipeline.Pipeline, error) {
	engine, err := a.newEngine(a.cfg)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = a.cfg.Workers
	}
	return pipeline.New(engine, pipeline.Config{Workers: workers, OCR: a.cfg.OCROptions()}), nil
}

func newRootCmd(a *app) *cobra.Command {
	var logLevel, engine string

	root := &cobra.Command{
		Use:   "ocrfields",
		Short: "Find the preprocessing that makes OCR read a capture best",
		Long: `ocrfields runs OCR over an image file or a screen region.

A fields file lists, per field, alternative paths of image transforms. Every
path is recognized and scored by engine confidence and by how much of the text
is plain letters and digits; the best path's image feeds the next field.

Configuration is read from OCR_FIELDS_* environment variables and an optional
.env file in the working directory.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if engine != "" {
				cfg.Engine = engine
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			closer, err := logger.Setup(cfg.GetLoggerConfig())
			if err != nil {
				return err
			}
			a.cfg, a.closer = cfg, closer

			log := logger.WithComponent("main")
			log.Debug().
				Str("version", Version).
				Str("command", cmd.Name()).
				Str("engine", cfg.Engine).
				Msg("starting")
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("ocrfields %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override OCR_FIELDS_LOG_LEVEL (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&engine, "engine", "", "Override OCR_FIELDS_ENGINE (gosseract or command)")

	root.AddCommand(newRunCmd(a), newServeCmd(a), newTransformsCmd())
	return root
}
