package colour

import (
	"context"
	"fmt"
	"image"

	"github.com/jmylchreest/swatch/internal/cluster"
)

// Extractor defines the interface for colour extraction.
type Extractor interface {
	// Extract extracts a colour palette from an image.
	Extract(ctx context.Context, img image.Image) (*Palette, error)
}

const (
	// MaxColorCount is the largest palette that can be requested.
	MaxColorCount = 256

	// DefaultWidth and DefaultHeight are the resolution images are resized to
	// before clustering.
	DefaultWidth  = 685
	DefaultHeight = 385
)

// ExtractorConfig holds configuration for colour extraction.
type ExtractorConfig struct {
	// ColorCount is k, the number of palette entries.
	ColorCount int

	// Iterations is the fixed Lloyd iteration budget per run.
	Iterations int

	// Runs is the number of randomly initialised runs; the lowest error wins.
	Runs int

	Metric   cluster.Metric
	Strategy cluster.Strategy

	// Seed drives the initial centroid sampling. Zero picks a random seed.
	Seed uint64

	// Width and Height are the resize target. Both zero keeps the source size.
	Width  int
	Height int

	// MaxSamples caps the number of pixels fed to the clusterer by grid
	// sampling. Zero uses every pixel.
	MaxSamples int

	// Parallelism bounds concurrent runs. Zero uses GOMAXPROCS.
	Parallelism int
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		ColorCount: 5,
		Iterations: 5,
		Runs:       3,
		Metric:     cluster.MetricEuclidean,
		Strategy:   cluster.StrategyMeans,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		MaxSamples: 10000,
	}
}

// Validate validates the extractor configuration. Errors wrap the cluster
// package sentinels so callers can classify them with errors.Is.
func (c ExtractorConfig) Validate() error {
	if c.ColorCount < 1 {
		return fmt.Errorf("%w: color count must be at least 1, got %d", cluster.ErrInvalidConfiguration, c.ColorCount)
	}
	if c.ColorCount > MaxColorCount {
		return fmt.Errorf("%w: color count too large: %d (maximum: %d)", cluster.ErrInvalidConfiguration, c.ColorCount, MaxColorCount)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", cluster.ErrInvalidConfiguration, c.Iterations)
	}
	if c.Runs < 1 {
		return fmt.Errorf("%w: runs must be at least 1, got %d", cluster.ErrInvalidConfiguration, c.Runs)
	}
	if !c.Metric.Valid() {
		return fmt.Errorf("%w: %q (valid metrics: %v)", cluster.ErrUnknownMetric, c.Metric, cluster.ValidMetrics())
	}
	if !c.Strategy.Valid() {
		return fmt.Errorf("%w: %q (valid strategies: %v)", cluster.ErrUnknownStrategy, c.Strategy, cluster.ValidStrategies())
	}
	if c.Width < 0 || c.Height < 0 || (c.Width == 0) != (c.Height == 0) {
		return fmt.Errorf("%w: resize target %dx%d must be positive or 0x0", cluster.ErrInvalidConfiguration, c.Width, c.Height)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("%w: max samples cannot be negative, got %d", cluster.ErrInvalidConfiguration, c.MaxSamples)
	}
	return nil
}

// Options converts the configuration into clustering options.
func (c ExtractorConfig) Options() cluster.Options {
	return cluster.Options{
		K:           c.ColorCount,
		Iterations:  c.Iterations,
		Runs:        c.Runs,
		Metric:      c.Metric,
		Strategy:    c.Strategy,
		Seed:        c.Seed,
		Parallelism: c.Parallelism,
	}
}

// NewExtractor creates a new Extractor from a validated configuration.
func NewExtractor(config ExtractorConfig) (*LloydExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LloydExtractor{config: config}, nil
}
