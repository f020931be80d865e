// Package colour turns clustered pixel data into colour palettes.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
)

// Palette represents a collection of colours extracted from an image.
type Palette struct {
	Colors []color.Color

	// Weights holds the share of sampled pixels assigned to each colour.
	// It is nil for palettes that were not produced by clustering.
	Weights []float64

	// Error is the clustering error of the run that produced the palette.
	Error float64
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colors []color.Color) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// NewPaletteWithWeights creates a Palette whose colours carry relative weights.
func NewPaletteWithWeights(colors []color.Color, weights []float64) *Palette {
	return &Palette{
		Colors:  colors,
		Weights: weights,
	}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// RGB represents a colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// HexUpper returns the hex string in upper case (e.g., "#1A2B3C").
func (rgb RGB) HexUpper() string {
	return strings.ToUpper(rgb.Hex())
}

// Tuple returns the channels as an array, the shape used by the HTTP API.
func (rgb RGB) Tuple() [3]uint8 {
	return [3]uint8{rgb.R, rgb.G, rgb.B}
}

// ToRGB converts a color.Color to RGB.
func ToRGB(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255]
	return RGB{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
	}
}

// ToHex converts the palette colours to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = ToRGB(c).Hex()
	}
	return hexColors
}

// ToRGBSlice converts the palette colours to RGB structs.
func (p *Palette) ToRGBSlice() []RGB {
	rgbColors := make([]RGB, len(p.Colors))
	for i, c := range p.Colors {
		rgbColors[i] = ToRGB(c)
	}
	return rgbColors
}

// ToIndexMap returns the palette keyed by 1-based position.
func (p *Palette) ToIndexMap() map[int][3]uint8 {
	out := make(map[int][3]uint8, len(p.Colors))
	for i, c := range p.Colors {
		out[i+1] = ToRGB(c).Tuple()
	}
	return out
}

// ColorJSON represents a colour in JSON output format.
type ColorJSON struct {
	Hex    string  `json:"hex"`
	RGB    RGB     `json:"rgb"`
	Weight float64 `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Error  float64     `json:"error"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		colors[i] = ColorJSON{
			Hex: rgb.Hex(),
			RGB: rgb,
		}
		if i < len(p.Weights) {
			colors[i].Weight = p.Weights[i]
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:  len(p.Colors),
		Error:  p.Error,
		Colors: colors,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Palette with %d colors:\n", len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		fmt.Fprintf(&sb, "  %2d: %s (%s)\n", i+1, rgb.Hex(), rgb.String())
	}
	return sb.String()
}

// Get returns the colour at the specified index.
func (p *Palette) Get(index int) (color.Color, error) {
	if index < 0 || index >= len(p.Colors) {
		return nil, fmt.Errorf("index out of bounds: %d (palette has %d colors)", index, len(p.Colors))
	}
	return p.Colors[index], nil
}

// All returns an iterator over all colours in the palette.
func (p *Palette) All() func(func(int, color.Color) bool) {
	return func(yield func(int, color.Color) bool) {
		for i, c := range p.Colors {
			if !yield(i, c) {
				return
			}
		}
	}
}
