package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/cluster"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:8005" {
		t.Errorf("ListenAddr = %s, want 127.0.0.1:8005", c.ListenAddr)
	}
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"SWATCH_LISTEN_ADDR":      ":9000",
		"SWATCH_MAX_UPLOAD_BYTES": "1024",
		"SWATCH_READ_TIMEOUT":     "5s",
		"SWATCH_COLOURS":          "8",
		"SWATCH_RUNS":             "4",
		"SWATCH_METRIC":           "Manhattan",
		"SWATCH_STRATEGY":         "medoids",
		"SWATCH_SEED":             "42",
		"SWATCH_ITERATIONS":       "  ",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if c.ListenAddr != ":9000" || c.MaxUploadBytes != 1024 || c.ReadTimeout != 5*time.Second {
		t.Errorf("server fields not applied: %+v", c)
	}
	if c.Extractor.ColorCount != 8 || c.Extractor.Runs != 4 || c.Extractor.Seed != 42 {
		t.Errorf("extractor fields not applied: %+v", c.Extractor)
	}
	if c.Extractor.Metric != cluster.MetricManhattan || c.Extractor.Strategy != cluster.StrategyMedoids {
		t.Errorf("selectors = %s/%s", c.Extractor.Strategy, c.Extractor.Metric)
	}
	if c.Extractor.Iterations != 5 {
		t.Errorf("blank variable should be ignored, iterations = %d", c.Extractor.Iterations)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"SWATCH_RUNS":           "many",
		"SWATCH_METRIC":         "cosine",
		"SWATCH_SHUTDOWN_GRACE": "soon",
	}))
	if err == nil {
		t.Fatal("ApplyEnv() expected error")
	}
	for _, name := range []string{"SWATCH_RUNS", "SWATCH_METRIC", "SWATCH_SHUTDOWN_GRACE"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
	if c.Extractor.Runs != 3 {
		t.Errorf("invalid value should leave runs untouched, got %d", c.Extractor.Runs)
	}
}

func TestRegisterFlags(t *testing.T) {
	c := Default()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	c.RegisterFlags(fs)

	err := fs.Parse([]string{"--listen", "0.0.0.0:8080", "-c", "7", "--metric", "manhattan", "--strategy", "mediods", "--write-timeout", "1m"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.ListenAddr != "0.0.0.0:8080" || c.Extractor.ColorCount != 7 || c.WriteTimeout != time.Minute {
		t.Errorf("flags not applied: %+v", c)
	}
	if c.Extractor.Metric != cluster.MetricManhattan || c.Extractor.Strategy != cluster.StrategyMedoids {
		t.Errorf("selectors = %s/%s", c.Extractor.Strategy, c.Extractor.Metric)
	}

	fs = pflag.NewFlagSet("serve", pflag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"--metric", "chebyshev"}); err == nil {
		t.Errorf("Parse() accepted an unknown metric")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ServerConfig)
	}{
		{name: "bad address", modify: func(c *ServerConfig) { c.ListenAddr = "localhost" }},
		{name: "zero upload", modify: func(c *ServerConfig) { c.MaxUploadBytes = 0 }},
		{name: "negative timeout", modify: func(c *ServerConfig) { c.ReadTimeout = -time.Second }},
		{name: "bad extractor", modify: func(c *ServerConfig) { c.Extractor.Runs = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("Validate() expected error")
			}
		})
	}
}
