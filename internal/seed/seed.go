// Package seed derives the random seed that drives initial centroid sampling,
// so palette extraction can be made reproducible per image, per path or per
// user-supplied value.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
)

// Mode determines how the seed is derived.
type Mode string

const (
	// ModeContent hashes a grid of pixels, so the same picture always yields
	// the same palette regardless of where it lives.
	ModeContent Mode = "content"
	// ModeFilepath hashes the absolute file path (or the URL).
	ModeFilepath Mode = "filepath"
	// ModeManual uses a user-provided seed value.
	ModeManual Mode = "manual"
	// ModeRandom draws a fresh seed every time.
	ModeRandom Mode = "random"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode
	Value uint64 // only used with ModeManual
}

// Calculate determines the seed for img loaded from imagePath.
func Calculate(img image.Image, imagePath string, config Config) (uint64, error) {
	switch config.Mode {
	case ModeContent:
		if img == nil {
			return 0, fmt.Errorf("image is required for content-based seed mode")
		}
		return ContentSeed(img), nil
	case ModeFilepath:
		if imagePath == "" {
			return 0, fmt.Errorf("image path is required for filepath-based seed mode")
		}
		return FilepathSeed(imagePath), nil
	case ModeManual:
		return config.Value, nil
	case ModeRandom:
		return Random(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// ContentSeed hashes the image dimensions and a grid of roughly 100x100
// pixels.
func ContentSeed(img image.Image) uint64 {
	bounds := img.Bounds()
	hasher := sha256.New()

	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are non-negative
	binary.LittleEndian.PutUint32(dims[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are non-negative
	hasher.Write(dims[:])

	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	var px [4]byte
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, a := img.At(x, y).RGBA()
			px[0], px[1], px[2], px[3] = byte(r>>8), byte(g>>8), byte(b>>8), byte(a>>8)
			hasher.Write(px[:])
		}
	}

	return binary.LittleEndian.Uint64(hasher.Sum(nil)[:8])
}

// FilepathSeed hashes the absolute form of imagePath. URLs are hashed as-is.
func FilepathSeed(imagePath string) uint64 {
	key := imagePath
	if !strings.HasPrefix(imagePath, "http://") && !strings.HasPrefix(imagePath, "https://") {
		if abs, err := filepath.Abs(imagePath); err == nil {
			key = abs
		}
	}
	sum := sha256.Sum256([]byte(key))
	return binary.LittleEndian.Uint64(sum[:8])
}

// Random returns a non-deterministic seed.
func Random() uint64 {
	return rand.Uint64() // #nosec G404 -- seeds are not security sensitive
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeContent, ModeFilepath, ModeManual, ModeRandom}
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	if slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: content, filepath, manual, random)", s)
}
