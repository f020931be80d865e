package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/api"
	"github.com/jmylchreest/swatch/internal/config"
)

func newServeCmd() *cobra.Command {
	cfg := config.Default()
	envErr := cfg.ApplyEnv(os.LookupEnv)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve palette extraction over HTTP",
		Long: `Serve palette extraction over HTTP.

Routes:
  POST /single-pallet?amount_colors=N           palette as {"1": [r, g, b], ...}
  POST /single-rendered-pallet?amount_colors=N  image and palette as PNG
  GET  /metrics                                 Prometheus metrics
  GET  /healthz                                 liveness
  GET  /version                                 build information

The image is sent as the multipart form field "image_to_process". The
optional metric and strategy query parameters override the server defaults.

Every flag can also be set with a SWATCH_ environment variable, e.g.
SWATCH_LISTEN_ADDR or SWATCH_MAX_UPLOAD_BYTES. Flags take precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return fmt.Errorf("invalid environment: %w", envErr)
			}
			server, err := api.NewServer(cfg, newLogger(cmd))
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return server.ListenAndServe(commandContext(cmd))
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	return cmd
}
