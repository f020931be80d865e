package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/cluster"
	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/config"
	"github.com/jmylchreest/swatch/internal/seed"
)

// extractorFlags binds the clustering options shared by extract and
// experiment.
type extractorFlags struct {
	config   colour.ExtractorConfig
	seedMode string
	fs       *pflag.FlagSet
}

func newExtractorFlags(fs *pflag.FlagSet, withSelectors bool) *extractorFlags {
	f := &extractorFlags{
		config:   colour.DefaultExtractorConfig(),
		seedMode: string(seed.ModeRandom),
		fs:       fs,
	}
	c := &f.config

	fs.IntVarP(&c.ColorCount, "colours", "c", c.ColorCount, fmt.Sprintf("number of colours to extract (1-%d)", colour.MaxColorCount))
	fs.IntVarP(&c.Iterations, "iterations", "i", c.Iterations, "Lloyd iterations per run")
	fs.IntVarP(&c.Runs, "runs", "r", c.Runs, "independent runs, the lowest error wins")
	fs.IntVar(&c.Width, "width", c.Width, "resize width before clustering (0 with --height 0 keeps the source size)")
	fs.IntVar(&c.Height, "height", c.Height, "resize height before clustering")
	fs.IntVar(&c.MaxSamples, "samples", c.MaxSamples, "maximum pixels to cluster (0 for all)")
	fs.IntVar(&c.Parallelism, "parallelism", c.Parallelism, "concurrent runs (0 for GOMAXPROCS)")
	fs.StringVar(&f.seedMode, "seed-mode", f.seedMode, fmt.Sprintf("seed mode %v", seed.ValidModes()))
	fs.Uint64Var(&c.Seed, "seed", 0, "seed value (implies --seed-mode manual)")
	if withSelectors {
		fs.VarP(config.NewMetricValue(&c.Metric), "metric", "m", fmt.Sprintf("distance metric %v", cluster.ValidMetrics()))
		fs.VarP(config.NewStrategyValue(&c.Strategy), "strategy", "s", fmt.Sprintf("centroid strategy %v", cluster.ValidStrategies()))
	}
	return f
}

// seedConfig returns the seed configuration selected on the command line.
// An explicit --seed selects manual mode unless another mode was asked for,
// in which case the combination is rejected.
func (f *extractorFlags) seedConfig() (seed.Config, error) {
	mode, err := seed.ParseMode(f.seedMode)
	if err != nil {
		return seed.Config{}, err
	}
	if f.fs.Changed("seed") {
		if f.fs.Changed("seed-mode") && mode != seed.ModeManual {
			return seed.Config{}, fmt.Errorf("--seed requires --seed-mode %s, got %s", seed.ModeManual, mode)
		}
		mode = seed.ModeManual
	}
	return seed.Config{Mode: mode, Value: f.config.Seed}, nil
}
