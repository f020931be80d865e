package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/swatch/internal/colour"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func samePixel(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	return ar>>8 == br>>8 && ag>>8 == bg>>8 && ab>>8 == bb>>8
}

func TestRender(t *testing.T) {
	src := solid(200, 200, color.NRGBA{R: 255, A: 255})
	palette := colour.NewPalette([]color.Color{
		color.RGBA{G: 128, A: 255},
		color.RGBA{B: 200, A: 255},
	})
	palette.Error = 1234.5

	out, err := Render(src, palette, Options{Caption: "means/euclidean", ShowError: true})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if b := out.Bounds(); b.Dx() != 250 || b.Dy() != 200 {
		t.Fatalf("Render() bounds = %v, want 250x200", b)
	}

	tests := []struct {
		name string
		x, y int
		want color.Color
	}{
		{name: "background", x: 5, y: 150, want: color.White},
		{name: "pasted image", x: 180, y: 180, want: color.RGBA{R: 255, A: 255}},
		{name: "first swatch", x: 30, y: 60, want: color.RGBA{G: 128, A: 255}},
		{name: "second swatch", x: 30, y: 120, want: color.RGBA{B: 200, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := out.At(tt.x, tt.y); !samePixel(got, tt.want) {
				t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	palette := colour.NewPalette(nil)
	if _, err := Render(nil, palette, Options{}); err == nil {
		t.Errorf("Render(nil image) expected error")
	}
	if _, err := Render(solid(4, 4, color.NRGBA{A: 255}), nil, Options{}); err == nil {
		t.Errorf("Render(nil palette) expected error")
	}
	if _, err := Render(image.NewNRGBA(image.Rect(0, 0, 0, 0)), palette, Options{}); err == nil {
		t.Errorf("Render(empty image) expected error")
	}
}

func TestSwatchSizeFor(t *testing.T) {
	tests := []struct {
		name string
		h, n int
		want int
	}{
		{name: "default output height", h: 385, n: 5, want: 60},
		{name: "shrinks to fit", h: 385, n: 10, want: 30},
		{name: "never below one", h: 40, n: 3, want: 1},
		{name: "empty palette", h: 385, n: 0, want: SwatchSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := swatchSizeFor(tt.h, tt.n); got != tt.want {
				t.Errorf("swatchSizeFor(%d, %d) = %d, want %d", tt.h, tt.n, got, tt.want)
			}
		})
	}
}

func TestEncodeAndSavePNG(t *testing.T) {
	src := solid(8, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("EncodePNG() produced invalid png: %v", err)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), src.Bounds())
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := SavePNG(path, src); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
}
