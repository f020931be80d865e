// Package security provides input validation and bounds helpers for swatch.
package security

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
)

// ErrSizeLimitExceeded is returned by LimitedReader once its budget is spent.
var ErrSizeLimitExceeded = errors.New("size limit exceeded")

// ValidateFilePath validates a relative file path to prevent directory traversal.
// The joined path must stay inside baseDir.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute file paths are not allowed")
	}

	cleanFinal := filepath.Clean(filepath.Join(baseDir, filePath))
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// SafeUint8 safely converts an integer to uint8 with bounds checking.
// Values outside 0-255 are clamped to the valid range.
func SafeUint8(val int) uint8 {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}

// SafeUint8FromFloat rounds val to the nearest integer, half to even, and
// clamps it to 0-255. NaN maps to 0.
func SafeUint8FromFloat(val float64) uint8 {
	if math.IsNaN(val) {
		return 0
	}
	r := math.RoundToEven(val)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// LimitedReader wraps an io.Reader and limits the total bytes that can be read.
// Reading past the limit returns ErrSizeLimitExceeded rather than io.EOF.
type LimitedReader struct {
	R         io.Reader
	Remaining int64

	// Exceeded is set once a read past the limit found more data.
	Exceeded bool
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		var probe [1]byte
		n, err := l.R.Read(probe[:])
		if n > 0 {
			l.Exceeded = true
			return 0, ErrSizeLimitExceeded
		}
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
