// Package config holds the configuration of the palette HTTP server.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/cluster"
	"github.com/jmylchreest/swatch/internal/colour"
	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "SWATCH_"

// ServerConfig configures `swatch serve`.
type ServerConfig struct {
	// ListenAddr is the host:port the server binds.
	ListenAddr string

	// MaxUploadBytes caps the size of an uploaded image.
	MaxUploadBytes int64

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownGrace is how long in-flight requests get to finish on shutdown.
	ShutdownGrace time.Duration

	// Extractor holds the defaults for every request. amount_colors and the
	// selector query parameters override them per request.
	Extractor colour.ExtractorConfig
}

// Default returns the server defaults.
func Default() ServerConfig {
	return ServerConfig{
		ListenAddr:     "127.0.0.1:8005",
		MaxUploadBytes: httputil.DefaultMaxBytes,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   2 * time.Minute,
		ShutdownGrace:  10 * time.Second,
		Extractor:      colour.DefaultExtractorConfig(),
	}
}

// ApplyEnv overrides fields from SWATCH_* variables looked up with lookup,
// normally os.LookupEnv. Unset or empty variables are ignored.
func (c *ServerConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	var errs []error
	if v, ok := get("LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err))
		} else {
			c.MaxUploadBytes = n
		}
	}

	durations := map[string]*time.Duration{
		"READ_TIMEOUT":   &c.ReadTimeout,
		"WRITE_TIMEOUT":  &c.WriteTimeout,
		"SHUTDOWN_GRACE": &c.ShutdownGrace,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				continue
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"COLOURS":     &c.Extractor.ColorCount,
		"ITERATIONS":  &c.Extractor.Iterations,
		"RUNS":        &c.Extractor.Runs,
		"MAX_SAMPLES": &c.Extractor.MaxSamples,
		"PARALLELISM": &c.Extractor.Parallelism,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				continue
			}
			*dst = n
		}
	}

	if v, ok := get("METRIC"); ok {
		m, err := cluster.ParseMetric(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMETRIC: %w", EnvPrefix, err))
		} else {
			c.Extractor.Metric = m
		}
	}
	if v, ok := get("STRATEGY"); ok {
		s, err := cluster.ParseStrategy(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSTRATEGY: %w", EnvPrefix, err))
		} else {
			c.Extractor.Strategy = s
		}
	}
	if v, ok := get("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEED: %w", EnvPrefix, err))
		} else {
			c.Extractor.Seed = n
		}
	}

	return errors.Join(errs...)
}

// RegisterFlags binds the configuration to fs. Call it after ApplyEnv so the
// environment supplies the flag defaults.
func (c *ServerConfig) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "Address to listen on")
	fs.Int64Var(&c.MaxUploadBytes, "max-upload-bytes", c.MaxUploadBytes, "Maximum accepted upload size in bytes")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "HTTP read timeout")
	fs.DurationVar(&c.WriteTimeout, "write-timeout", c.WriteTimeout, "HTTP write timeout")
	fs.DurationVar(&c.ShutdownGrace, "shutdown-grace", c.ShutdownGrace, "Time allowed for in-flight requests on shutdown")

	fs.IntVarP(&c.Extractor.ColorCount, "colours", "c", c.Extractor.ColorCount, "Default number of colours when amount_colors is absent")
	fs.IntVarP(&c.Extractor.Iterations, "iterations", "i", c.Extractor.Iterations, "Lloyd iterations per run")
	fs.IntVarP(&c.Extractor.Runs, "runs", "r", c.Extractor.Runs, "Independent runs, the lowest error wins")
	fs.IntVar(&c.Extractor.MaxSamples, "samples", c.Extractor.MaxSamples, "Maximum pixels to cluster (0 for all)")
	fs.IntVar(&c.Extractor.Parallelism, "parallelism", c.Extractor.Parallelism, "Concurrent runs per request (0 for GOMAXPROCS)")
	fs.Uint64Var(&c.Extractor.Seed, "seed", c.Extractor.Seed, "Fixed seed for reproducible palettes (0 for random)")
	fs.Var(NewMetricValue(&c.Extractor.Metric), "metric", fmt.Sprintf("Distance metric %v", cluster.ValidMetrics()))
	fs.Var(NewStrategyValue(&c.Extractor.Strategy), "strategy", fmt.Sprintf("Centroid strategy %v", cluster.ValidStrategies()))
}

// Validate checks the configuration.
func (c ServerConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.ListenAddr, err)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownGrace < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	if err := c.Extractor.Validate(); err != nil {
		return fmt.Errorf("invalid extractor defaults: %w", err)
	}
	return nil
}

// metricValue adapts cluster.Metric to pflag.Value.
type metricValue struct{ m *cluster.Metric }

// NewMetricValue returns a pflag.Value that parses into m.
func NewMetricValue(m *cluster.Metric) pflag.Value { return &metricValue{m: m} }

func (v *metricValue) String() string {
	if v.m == nil {
		return ""
	}
	return v.m.String()
}

func (v *metricValue) Set(s string) error {
	m, err := cluster.ParseMetric(s)
	if err != nil {
		return err
	}
	*v.m = m
	return nil
}

func (v *metricValue) Type() string { return "metric" }

// strategyValue adapts cluster.Strategy to pflag.Value.
type strategyValue struct{ s *cluster.Strategy }

// NewStrategyValue returns a pflag.Value that parses into s. Both spellings
// of the medoid strategy are accepted.
func NewStrategyValue(s *cluster.Strategy) pflag.Value { return &strategyValue{s: s} }

func (v *strategyValue) String() string {
	if v.s == nil {
		return ""
	}
	return v.s.String()
}

func (v *strategyValue) Set(s string) error {
	st, err := cluster.ParseStrategy(s)
	if err != nil {
		return err
	}
	*v.s = st
	return nil
}

func (v *strategyValue) Type() string { return "strategy" }
