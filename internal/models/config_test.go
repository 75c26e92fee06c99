package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TopK != DefaultTopK || cfg.HourBuckets != DefaultHourBuckets {
		t.Fatalf("unexpected defaults: top_k=%d hour_buckets=%d", cfg.TopK, cfg.HourBuckets)
	}
	if cfg.Output.Format != OutputFormatText || cfg.Output.Destination != DestinationStdout {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Kafka.DialTimeout != 30*time.Second {
		t.Fatalf("unexpected kafka dial timeout: %v", cfg.Kafka.DialTimeout)
	}
	if !cfg.Generator.EndDate.After(cfg.Generator.StartDate) {
		t.Fatalf("generator window is empty: %v to %v", cfg.Generator.StartDate, cfg.Generator.EndDate)
	}
}

func TestLoadConfigEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("TRIPZONES_TOP_K", "3")
	t.Setenv("TRIPZONES_STRICT_LAYOUT", "true")
	t.Setenv("TRIPZONES_INPUTS", "a.csv,s3://feeds/b.csv")
	t.Setenv("TRIPZONES_OUTPUT_FORMAT", "json")

	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TopK != 3 || !cfg.StrictLayout || cfg.Output.Format != OutputFormatJSON {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[1] != "s3://feeds/b.csv" {
		t.Fatalf("unexpected inputs: %v", cfg.Inputs)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "tripzones.yaml")
	content := `top_k: 5
hour_buckets: 12
output:
  format: csv
  destination: file
  path: /tmp/report.csv
generator:
  start_date: "2024-01-01T00:00:00Z"
  end_date: "2024-01-15T00:00:00Z"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.TopK != 5 || cfg.HourBuckets != 12 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Output.Destination != DestinationFile || cfg.Output.Path != "/tmp/report.csv" {
		t.Fatalf("unexpected output config: %+v", cfg.Output)
	}
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !cfg.Generator.EndDate.Equal(want) {
		t.Fatalf("end date = %v, want %v", cfg.Generator.EndDate, want)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	isolate(t)
	if _, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"zero top k":          {"TRIPZONES_TOP_K": "0"},
		"too many buckets":    {"TRIPZONES_HOUR_BUCKETS": "101"},
		"buckets past a day":  {"TRIPZONES_HOUR_BUCKETS": "48"},
		"unknown format":      {"TRIPZONES_OUTPUT_FORMAT": "xml"},
		"s3 without bucket":   {"TRIPZONES_OUTPUT_DESTINATION": "s3"},
		"parquet on stdout":   {"TRIPZONES_OUTPUT_FORMAT": "parquet"},
		"malformed ratio":     {"TRIPZONES_GENERATOR_MALFORMED_RATIO": "1.5"},
		"unknown destination": {"TRIPZONES_OUTPUT_DESTINATION": "ftp"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(viper.New(), "")
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid config") {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
