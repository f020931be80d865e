// Package render composites an image and its palette into a single picture.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/jmylchreest/swatch/internal/colour"
)

const (
	// SwatchSize is the edge of a palette square when the column has room.
	SwatchSize = 60

	swatchLeft   = 20
	swatchTop    = 50
	labelGap     = 20
	footerHeight = 30

	titleSize = 14
	labelSize = 12
)

var font *truetype.Font

func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Options controls the annotations drawn next to the palette.
type Options struct {
	// Caption is printed under the title, e.g. "means/euclidean".
	Caption string

	// ShowError prints the palette's clustering error at the bottom.
	ShowError bool
}

// Render returns a white canvas a quarter wider than img with img pasted on
// the right and the palette drawn as a column of labelled squares on the left.
func Render(img image.Image, palette *colour.Palette, opts Options) (image.Image, error) {
	if img == nil {
		return nil, errors.New("image cannot be nil")
	}
	if palette == nil {
		return nil, errors.New("palette cannot be nil")
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image has no pixels: %v", b)
	}

	dc := gg.NewContext(w+w/4, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.DrawImage(img, w/4-b.Min.X, -b.Min.Y)

	drawText(dc, "Colour palette", 10, 10, titleSize)
	if opts.Caption != "" {
		drawText(dc, opts.Caption, 10, 10+titleSize+4, titleSize)
	}

	size := swatchSizeFor(h, palette.Len())
	for i, rgb := range palette.ToRGBSlice() {
		y := float64(swatchTop + i*size)
		fill := colour.RGBToColor(rgb)

		dc.DrawRectangle(swatchLeft, y, float64(size), float64(size))
		dc.SetColor(fill)
		dc.FillPreserve()
		if colour.ContrastRatio(fill, color.White) < 1.5 {
			dc.SetColor(color.Gray{Y: 160})
			dc.SetLineWidth(1)
			dc.Stroke()
		} else {
			dc.ClearPath()
		}

		label := rgb.HexUpper()
		dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: labelSize}))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(label, swatchLeft+float64(size)+labelGap, y+float64(size)/2, 0, 0.35)
	}

	if opts.ShowError {
		drawText(dc, fmt.Sprintf("Error: %.2e", palette.Error), 10, float64(h-footerHeight+8), labelSize)
	}

	return dc.Image(), nil
}

// swatchSizeFor shrinks squares so n of them fit between the title and the
// footer of an image h pixels high.
func swatchSizeFor(h, n int) int {
	if n <= 0 {
		return SwatchSize
	}
	avail := (h - swatchTop - footerHeight) / n
	return max(min(SwatchSize, avail), 1)
}

func drawText(dc *gg.Context, text string, x, y, size float64) {
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetColor(color.Black)
	dc.DrawStringAnchored(text, x, y, 0, 1)
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save png %s: %w", path, err)
	}
	return nil
}
