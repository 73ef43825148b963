package main

import (
	"github.com/ironsheep/ocr-fields/internal/logger"
	"github.com/ironsheep/ocr-fields/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var workers int
	var noScreen bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the OCR tools over MCP on stdin/stdout",
		Long: `serve speaks JSON-RPC 2.0 (MCP) on stdin and stdout. Configure it in an
MCP client as a stdio server. Logs go to OCR_FIELDS_LOG_OUTPUT, stderr by
default; never point it at stdout while serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline(workers)
			if err != nil {
				return err
			}
			opts := []server.Option{server.WithVersion(Version)}
			if !noScreen {
				opts = append(opts, server.WithScreen(a.newScreen()))
			}

			log := logger.WithComponent("main")
			log.Info().
				Str("version", Version).
				Str("engine", a.cfg.Engine).
				Msg("MCP server starting")
			return server.New(p, opts...).Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Paths run concurrently per field (default OCR_FIELDS_WORKERS)")
	cmd.Flags().BoolVar(&noScreen, "no-screen", false, "Disable screen capture for tools called without a path")
	return cmd
}
