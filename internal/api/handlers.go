package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jmylchreest/swatch/internal/cluster"
	"github.com/jmylchreest/swatch/internal/colour"
	imageutil "github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/metrics"
	"github.com/jmylchreest/swatch/internal/render"
	"github.com/jmylchreest/swatch/internal/security"
	"github.com/jmylchreest/swatch/internal/version"
)

const (
	// UploadField is the multipart form field holding the image.
	UploadField = "image_to_process"

	// multipartOverhead is the body allowance on top of MaxUploadBytes for
	// part headers and boundaries.
	multipartOverhead = 1 << 20
)

// requestError carries the HTTP status for a client mistake.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, err: fmt.Errorf(format, args...)}
}

// statusFor maps an error to the status code returned to the client.
func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.status
	case errors.Is(err, security.ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, cluster.ErrInvalidConfiguration),
		errors.Is(err, cluster.ErrUnknownMetric),
		errors.Is(err, cluster.ErrUnknownStrategy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

// handlePalette returns the palette as {"1": [r, g, b], ...}.
func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	cfg, img, err := s.parseRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	palette, err := s.extract(r.Context(), cfg, img)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, palette.ToIndexMap())
}

// handleRenderedPalette returns the resized upload next to its palette as PNG.
func (s *Server) handleRenderedPalette(w http.ResponseWriter, r *http.Request) {
	cfg, img, err := s.parseRequest(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resized := imageutil.Resize(img, cfg.Width, cfg.Height)
	palette, err := s.extract(r.Context(), cfg, resized)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := render.Render(resized, palette, render.Options{
		Caption:   fmt.Sprintf("%s/%s", cfg.Strategy, cfg.Metric),
		ShowError: true,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, out); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}

// parseRequest builds the extractor configuration from the query string and
// decodes the uploaded image.
func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request) (colour.ExtractorConfig, image.Image, error) {
	cfg := s.config.Extractor
	q := r.URL.Query()

	raw := q.Get("amount_colors")
	if raw == "" {
		return cfg, nil, badRequest("missing amount_colors query parameter")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return cfg, nil, badRequest("amount_colors must be an integer, got %q", raw)
	}
	cfg.ColorCount = n

	if v := q.Get("metric"); v != "" {
		if cfg.Metric, err = cluster.ParseMetric(v); err != nil {
			return cfg, nil, err
		}
	}
	if v := q.Get("strategy"); v != "" {
		if cfg.Strategy, err = cluster.ParseStrategy(v); err != nil {
			return cfg, nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}

	img, err := s.readUpload(w, r)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, img, nil
}

// readUpload streams the upload field out of the multipart body and decodes
// it without buffering the file on disk.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (image.Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, badRequest("expected a multipart/form-data body: %v", err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, badRequest("missing %s form field", UploadField)
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, security.ErrSizeLimitExceeded
			}
			return nil, badRequest("malformed multipart body: %v", err)
		}
		if part.FormName() != UploadField {
			_ = part.Close()
			continue
		}

		lr := security.NewLimitedReader(part, s.config.MaxUploadBytes)
		img, err := imageutil.Decode(lr)
		_ = part.Close()
		if err != nil {
			if lr.Exceeded {
				return nil, fmt.Errorf("%w: upload is larger than %d bytes", security.ErrSizeLimitExceeded, s.config.MaxUploadBytes)
			}
			return nil, badRequest("%v", err)
		}
		return img, nil
	}
}

// extract runs the extractor and records metrics.
func (s *Server) extract(ctx context.Context, cfg colour.ExtractorConfig, img image.Image) (*colour.Palette, error) {
	extractor, err := colour.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	metrics.InFlightExtractions.Inc()
	defer metrics.InFlightExtractions.Dec()

	start := time.Now()
	palette, err := extractor.Extract(ctx, img)
	elapsed := time.Since(start)

	var clusterError float64
	if palette != nil {
		clusterError = palette.Error
	}
	metrics.ObserveExtraction(cfg.Strategy.String(), cfg.Metric.String(), elapsed.Seconds(), clusterError, err)

	if err != nil {
		return nil, err
	}
	s.logger.Debug("extracted palette",
		"colours", palette.Len(),
		"strategy", cfg.Strategy,
		"metric", cfg.Metric,
		"error", palette.Error,
		"duration", elapsed)
	return palette, nil
}
