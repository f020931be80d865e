package colour

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/jmylchreest/swatch/internal/cluster"
	imageutil "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/security"
	"github.com/jmylchreest/swatch/internal/seed"
)

// LloydExtractor extracts palettes by clustering pixel colours with Lloyd's
// algorithm and keeping the best of several runs.
type LloydExtractor struct {
	config ExtractorConfig
}

// Config returns the extractor configuration.
func (e *LloydExtractor) Config() ExtractorConfig {
	return e.config
}

// Extract resizes img to the configured resolution, clusters its pixels and
// returns the winning centroids as a palette. Colours are ordered by cluster
// index and carry the share of pixels assigned to them.
func (e *LloydExtractor) Extract(ctx context.Context, img image.Image) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}

	resized := imageutil.Resize(img, e.config.Width, e.config.Height)
	points := imageutil.ToPoints(resized, e.config.MaxSamples)
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no pixels found in image", cluster.ErrInvalidConfiguration)
	}

	opts := e.config.Options()
	if opts.Seed == 0 {
		opts.Seed = seed.Random()
	}

	result, err := cluster.BestOf(ctx, points, opts)
	if err != nil {
		return nil, err
	}

	return PaletteFromResult(result), nil
}

// PaletteFromResult converts clustering centroids into colours. Centroid
// channels are rounded to the nearest integer and clamped to 0-255.
func PaletteFromResult(result cluster.Result) *Palette {
	colors := make([]color.Color, len(result.Centroids))
	for i, c := range result.Centroids {
		var ch [3]uint8
		for j := 0; j < len(ch) && j < len(c); j++ {
			ch[j] = security.SafeUint8FromFloat(c[j])
		}
		colors[i] = color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}
	}

	weights := make([]float64, len(result.Centroids))
	for _, a := range result.Assignments {
		weights[a]++
	}
	if n := float64(len(result.Assignments)); n > 0 {
		for i := range weights {
			weights[i] /= n
		}
	}

	palette := NewPaletteWithWeights(colors, weights)
	palette.Error = result.Error
	return palette
}
