package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/swatch/internal/colour"
	imageutil "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/render"
	"github.com/jmylchreest/swatch/internal/seed"
)

type extractOptions struct {
	flags    *extractorFlags
	format   string
	output   string
	preview  bool
	render   string
	cache    bool
	cacheDir string
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract a colour palette from an image",
		Long: `Extract a colour palette from an image by clustering its pixels.

The image is resized to the working resolution, clustered several times from
random starting centroids, and the run with the lowest error wins. The
argument may be a file, a directory (a random image inside is used) or an
http(s) URL.

Supported image formats: JPEG, PNG, GIF, WebP

Examples:
  # Extract 5 colours (default) with cluster means
  swatch extract wallpaper.jpg

  # Extract 8 colours with medoids under the Manhattan distance
  swatch extract -c 8 -s mediods -m manhattan wallpaper.png

  # Reproducible output keyed on the image content, as JSON
  swatch extract --seed-mode content -f json wallpaper.jpg

  # Save the palette rendered next to the image
  swatch extract --render palette.png wallpaper.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args[0])
		},
	}

	opts.flags = newExtractorFlags(cmd.Flags(), true)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "hex", "output format (hex, rgb, json, table)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews when writing to a terminal")
	cmd.Flags().StringVar(&opts.render, "render", "", "also write the image and its palette as a PNG to this path")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "cache images downloaded from URLs")
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "image cache directory (default: user cache dir)")
	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, opts *extractOptions, arg string) error {
	logger := newLogger(cmd)
	cfg := opts.flags.config

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	seedCfg, err := opts.flags.seedConfig()
	if err != nil {
		return err
	}
	if err := imageutil.ValidateImagePath(arg); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}
	imagePath, err := imageutil.ResolveImagePath(arg)
	if err != nil {
		return err
	}

	loader := imageutil.NewSmartLoader()
	if opts.cache {
		loader.WithCache(opts.cacheDir)
	}
	logger.Debug("loading image", "path", imagePath)
	img, err := loader.Load(imagePath)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	logger.Debug("image loaded", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	if cfg.Seed, err = seed.Calculate(img, imagePath, seedCfg); err != nil {
		return err
	}

	extractor, err := colour.NewExtractor(cfg)
	if err != nil {
		return err
	}

	resized := imageutil.Resize(img, cfg.Width, cfg.Height)
	logger.Debug("extracting palette",
		"colours", cfg.ColorCount,
		"strategy", cfg.Strategy,
		"metric", cfg.Metric,
		"runs", cfg.Runs,
		"iterations", cfg.Iterations,
		"seed", cfg.Seed)
	palette, err := extractor.Extract(commandContext(cmd), resized)
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}
	logger.Debug("palette extracted", "colours", palette.Len(), "error", palette.Error)

	if opts.render != "" {
		out, err := render.Render(resized, palette, render.Options{
			Caption:   fmt.Sprintf("%s/%s", cfg.Strategy, cfg.Metric),
			ShowError: true,
		})
		if err != nil {
			return err
		}
		if err := render.SavePNG(opts.render, out); err != nil {
			return err
		}
		logger.Info("rendered palette", "path", opts.render)
	}

	preview := opts.preview && opts.output == "" && isTerminal(cmd.OutOrStdout())
	output, err := formatPalette(palette, opts.format, preview)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), output)
		return err
	}
	if err := os.WriteFile(opts.output, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote palette", "path", opts.output)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

// formatPalette formats the palette according to the specified format.
func formatPalette(palette *colour.Palette, format string, showPreview bool) (string, error) {
	switch format {
	case "hex":
		return formatHex(palette, showPreview), nil
	case "rgb":
		return formatRGB(palette, showPreview), nil
	case "json":
		jsonBytes, err := palette.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(jsonBytes) + "\n", nil
	case "table":
		return formatTable(palette), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
	}
}

// formatHex formats the palette as hex colour codes.
func formatHex(palette *colour.Palette, showPreview bool) string {
	var sb strings.Builder
	for _, rgb := range palette.ToRGBSlice() {
		if showPreview {
			sb.WriteString(colour.FormatColourWithPreview(rgb, 8))
		} else {
			sb.WriteString(rgb.Hex())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatRGB formats the palette as RGB values.
func formatRGB(palette *colour.Palette, showPreview bool) string {
	var sb strings.Builder
	for _, rgb := range palette.ToRGBSlice() {
		if showPreview {
			sb.WriteString(colour.ColourPreview(rgb, 8) + "  ")
		}
		sb.WriteString(rgb.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatTable lists every colour with its share of the image.
func formatTable(palette *colour.Palette) string {
	table := NewTable([]string{"#", "HEX", "RGB", "SHARE"})
	table.SetAlignRight(0)
	table.SetAlignRight(3)
	for i, rgb := range palette.ToRGBSlice() {
		share := ""
		if i < len(palette.Weights) {
			share = strconv.FormatFloat(palette.Weights[i]*100, 'f', 1, 64) + "%"
		}
		table.AddRow([]string{strconv.Itoa(i + 1), rgb.HexUpper(), rgb.String(), share})
	}
	return table.Render() + fmt.Sprintf("error: %.2e\n", palette.Error)
}
