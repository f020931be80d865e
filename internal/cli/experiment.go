package cli

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/cluster"
	"github.com/jmylchreest/swatch/internal/colour"
	imageutil "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/render"
	"github.com/jmylchreest/swatch/internal/security"
	"github.com/jmylchreest/swatch/internal/seed"
)

type experimentOptions struct {
	flags      *extractorFlags
	outDir     string
	strategies []string
	metrics    []string
}

func newExperimentCmd() *cobra.Command {
	opts := &experimentOptions{}
	cmd := &cobra.Command{
		Use:   "experiment <image|directory>...",
		Short: "Render palettes for every strategy and metric combination",
		Long: `Render the best palette of every input image under each combination of
centroid strategy and distance metric, for comparing them side by side.

Each combination is written to the output directory as
<image>-best-color-pallet_<strategy>_<metric>.png and a summary of the
winning errors is printed.

Examples:
  # All four combinations for every image in a directory
  swatch experiment --out-dir created_imgs base_imgs/

  # Only medoids, eight colours
  swatch experiment --strategies mediods -c 8 wallpaper.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, opts, args)
		},
	}

	opts.flags = newExtractorFlags(cmd.Flags(), false)
	cmd.Flags().StringVarP(&opts.outDir, "out-dir", "d", "created_imgs", "directory for rendered palettes")
	cmd.Flags().StringSliceVar(&opts.strategies, "strategies", []string{string(cluster.StrategyMeans), string(cluster.StrategyMedoids)}, "centroid strategies to compare")
	cmd.Flags().StringSliceVar(&opts.metrics, "metrics", []string{string(cluster.MetricEuclidean), string(cluster.MetricManhattan)}, "distance metrics to compare")
	return cmd
}

// experimentRun is one image under one strategy and metric.
type experimentRun struct {
	image        string
	strategy     cluster.Strategy
	metric       cluster.Metric
	clusterError float64
	output       string
}

func runExperiment(cmd *cobra.Command, opts *experimentOptions, args []string) error {
	logger := newLogger(cmd)
	ctx := commandContext(cmd)

	strategies, metrics, err := parseSelectors(opts.strategies, opts.metrics)
	if err != nil {
		return err
	}
	if err := opts.flags.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seedCfg, err := opts.flags.seedConfig()
	if err != nil {
		return err
	}
	paths, err := imageutil.ExpandPaths(args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	loader := imageutil.NewSmartLoader()
	var runs []experimentRun
	for _, p := range paths {
		img, err := loader.Load(p)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		cfg := opts.flags.config
		if cfg.Seed, err = seed.Calculate(img, p, seedCfg); err != nil {
			return err
		}
		resized := imageutil.Resize(img, cfg.Width, cfg.Height)

		for _, strategy := range strategies {
			for _, metric := range metrics {
				if err := ctx.Err(); err != nil {
					return err
				}
				cfg.Strategy, cfg.Metric = strategy, metric
				run, err := runCombination(ctx, logger, cfg, resized, p, opts.outDir)
				if err != nil {
					return err
				}
				runs = append(runs, run)
			}
		}
	}

	return writeExperimentSummary(cmd.OutOrStdout(), runs)
}

func runCombination(ctx context.Context, logger hclog.Logger, cfg colour.ExtractorConfig, img image.Image, imagePath, outDir string) (experimentRun, error) {
	extractor, err := colour.NewExtractor(cfg)
	if err != nil {
		return experimentRun{}, err
	}
	palette, err := extractor.Extract(ctx, img)
	if err != nil {
		return experimentRun{}, fmt.Errorf("%s %s/%s: %w", imagePath, cfg.Strategy, cfg.Metric, err)
	}

	out, err := render.Render(img, palette, render.Options{
		Caption:   fmt.Sprintf("%s/%s", cfg.Strategy, cfg.Metric),
		ShowError: true,
	})
	if err != nil {
		return experimentRun{}, err
	}

	name := experimentFileName(imagePath, cfg.Strategy, cfg.Metric)
	if err := security.ValidateFilePath(name, outDir); err != nil {
		return experimentRun{}, fmt.Errorf("invalid output name %q: %w", name, err)
	}
	target := filepath.Join(outDir, name)
	if err := render.SavePNG(target, out); err != nil {
		return experimentRun{}, err
	}

	logger.Info("rendered",
		"image", imagePath,
		"strategy", cfg.Strategy,
		"metric", cfg.Metric,
		"error", palette.Error,
		"output", target)

	return experimentRun{
		image:        imagePath,
		strategy:     cfg.Strategy,
		metric:       cfg.Metric,
		clusterError: palette.Error,
		output:       target,
	}, nil
}

// experimentFileName names the render of imagePath after its base name.
func experimentFileName(imagePath string, strategy cluster.Strategy, metric cluster.Metric) string {
	base := filepath.Base(imagePath)
	if u, err := url.Parse(imagePath); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		base = path.Base(u.Path)
		if base == "/" || base == "." {
			base = u.Host
		}
	}
	return fmt.Sprintf("%s-best-color-pallet_%s_%s.png", base, strategy, metric)
}

func parseSelectors(strategyNames, metricNames []string) ([]cluster.Strategy, []cluster.Metric, error) {
	if len(strategyNames) == 0 || len(metricNames) == 0 {
		return nil, nil, fmt.Errorf("at least one strategy and one metric are required")
	}
	strategies := make([]cluster.Strategy, 0, len(strategyNames))
	for _, name := range strategyNames {
		s, err := cluster.ParseStrategy(name)
		if err != nil {
			return nil, nil, err
		}
		strategies = append(strategies, s)
	}
	metrics := make([]cluster.Metric, 0, len(metricNames))
	for _, name := range metricNames {
		m, err := cluster.ParseMetric(name)
		if err != nil {
			return nil, nil, err
		}
		metrics = append(metrics, m)
	}
	return strategies, metrics, nil
}

func writeExperimentSummary(w io.Writer, runs []experimentRun) error {
	table := NewTable([]string{"IMAGE", "STRATEGY", "METRIC", "ERROR", "OUTPUT"})
	table.SetAlignRight(3)
	for _, r := range runs {
		table.AddRow([]string{
			filepath.Base(r.image),
			r.strategy.String(),
			r.metric.String(),
			fmt.Sprintf("%.2e", r.clusterError),
			r.output,
		})
	}
	_, err := io.WriteString(w, table.Render())
	return err
}
