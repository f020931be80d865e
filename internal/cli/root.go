// Package cli provides the command-line interface for swatch.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/version"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "swatch",
	Short: "Extract colour palettes from images with Lloyd clustering",
	Long: `Swatch extracts a small representative colour palette from an image by
clustering its pixels with Lloyd's algorithm, using either cluster means or
medoids under the Euclidean or Manhattan distance, and keeping the best of
several randomly initialised runs.

Palettes can be printed, rendered next to the image, served over HTTP or
produced in bulk for comparing clustering strategies.`,
	Version:      version.Short(),
	SilenceUsage: true,
}

// Execute runs the root command. It is called once by main.main().
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExperimentCmd())
}

// commandContext returns the command context, or a background context when
// the command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newLogger builds the command logger from the persistent verbosity flags.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	return hclog.New(&hclog.LoggerOptions{
		Name:   "swatch",
		Output: cmd.ErrOrStderr(),
		Level:  logLevel(verbose, quiet),
	})
}

func logLevel(verbose, quiet bool) hclog.Level {
	switch {
	case quiet:
		return hclog.Error
	case verbose:
		return hclog.Debug
	default:
		return hclog.Info
	}
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}
