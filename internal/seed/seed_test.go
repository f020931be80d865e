package seed

import (
	"image"
	"image/color"
	"testing"
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

func TestContentSeedDeterministic(t *testing.T) {
	a := solid(40, 30, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	b := solid(40, 30, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	c := solid(40, 30, color.NRGBA{R: 11, G: 20, B: 30, A: 255})

	if ContentSeed(a) != ContentSeed(b) {
		t.Errorf("identical images produced different seeds")
	}
	if ContentSeed(a) == ContentSeed(c) {
		t.Errorf("different images produced the same seed")
	}
}

func TestFilepathSeed(t *testing.T) {
	if FilepathSeed("images/a.png") != FilepathSeed("images/a.png") {
		t.Errorf("same path produced different seeds")
	}
	if FilepathSeed("images/a.png") == FilepathSeed("images/b.png") {
		t.Errorf("different paths produced the same seed")
	}
}

func TestCalculate(t *testing.T) {
	img := solid(4, 4, color.NRGBA{A: 255})

	tests := []struct {
		name    string
		img     image.Image
		path    string
		config  Config
		want    uint64
		check   bool
		wantErr bool
	}{
		{name: "manual", config: Config{Mode: ModeManual, Value: 42}, want: 42, check: true},
		{name: "content", img: img, config: Config{Mode: ModeContent}, want: ContentSeed(img), check: true},
		{name: "filepath", path: "x.png", config: Config{Mode: ModeFilepath}, want: FilepathSeed("x.png"), check: true},
		{name: "random", config: Config{Mode: ModeRandom}},
		{name: "content without image", config: Config{Mode: ModeContent}, wantErr: true},
		{name: "filepath without path", config: Config{Mode: ModeFilepath}, wantErr: true},
		{name: "unknown mode", config: Config{Mode: "lunar"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.img, tt.path, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Calculate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check && got != tt.want {
				t.Errorf("Calculate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range ValidModes() {
		got, err := ParseMode(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Errorf("ParseMode(\"sometimes\") expected error")
	}
}
