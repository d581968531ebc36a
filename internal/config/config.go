package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/pacer/internal/validate"
)

// ErrNoParts is returned by Validate when the configuration names nothing to upload.
var ErrNoParts = errors.New("config: at least one field, file or blob is required")

// Config defines configuration for the pacer CLI.
type Config struct {
	URL                string            `yaml:"url" validate:"required,url"`
	Method             string            `yaml:"method" validate:"oneof=POST PUT PATCH"`
	ExpectStatus       int               `yaml:"expect_status" validate:"gte=100,lte=599"`
	MaxUploadSpeedKbps int               `yaml:"max_upload_speed_kbps" validate:"gte=0"`
	Timeout            time.Duration     `yaml:"timeout" validate:"gte=0"`
	UserAgent          string            `yaml:"user_agent"`
	Progress           bool              `yaml:"progress"`
	ProgressInterval   time.Duration     `yaml:"progress_interval" validate:"gte=0"`
	RequestRate        RateConfig        `yaml:"request_rate"`
	Headers            map[string]string `yaml:"headers"`
	Fields             map[string]string `yaml:"fields"`
	Files              map[string]string `yaml:"files"`
	Blob               BlobConfig        `yaml:"blob"`
}

// RateConfig limits how often upload requests may start.
// A zero RPS leaves requests unlimited.
type RateConfig struct {
	RPS   int `yaml:"rps" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"gte=0"`
}

// BlobConfig names an object in a gocloud.dev bucket to send as a file part.
type BlobConfig struct {
	Bucket string `yaml:"bucket" validate:"required_with=Key"`
	Key    string `yaml:"key" validate:"required_with=Bucket"`
	Field  string `yaml:"field"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Method:           "POST",
		ExpectStatus:     200,
		Timeout:          time.Hour,
		UserAgent:        "pacer/1.0",
		ProgressInterval: time.Second,
		RequestRate: RateConfig{
			Burst: 1,
		},
		Blob: BlobConfig{
			Field: "file",
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL                string            `yaml:"url"`
	Method             string            `yaml:"method"`
	ExpectStatus       int               `yaml:"expect_status"`
	MaxUploadSpeedKbps int               `yaml:"max_upload_speed_kbps"`
	Timeout            string            `yaml:"timeout"`
	UserAgent          string            `yaml:"user_agent"`
	Progress           bool              `yaml:"progress"`
	ProgressInterval   string            `yaml:"progress_interval"`
	RequestRate        RateConfig        `yaml:"request_rate"`
	Headers            map[string]string `yaml:"headers"`
	Fields             map[string]string `yaml:"fields"`
	Files              map[string]string `yaml:"files"`
	Blob               BlobConfig        `yaml:"blob"`
}

// LoadFromFile loads configuration from a YAML file on top of Default.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	override := Config{
		URL:                yc.URL,
		Method:             yc.Method,
		ExpectStatus:       yc.ExpectStatus,
		MaxUploadSpeedKbps: yc.MaxUploadSpeedKbps,
		UserAgent:          yc.UserAgent,
		Progress:           yc.Progress,
		RequestRate:        yc.RequestRate,
		Headers:            yc.Headers,
		Fields:             yc.Fields,
		Files:              yc.Files,
		Blob:               yc.Blob,
	}
	if yc.Timeout != "" {
		if override.Timeout, err = time.ParseDuration(yc.Timeout); err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
	}
	if yc.ProgressInterval != "" {
		if override.ProgressInterval, err = time.ParseDuration(yc.ProgressInterval); err != nil {
			return Config{}, fmt.Errorf("parse progress_interval: %w", err)
		}
	}

	return Default().Merge(override), nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the PACER_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PACER_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("PACER_METHOD"); v != "" {
		c.Method = v
	}
	if v := os.Getenv("PACER_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("PACER_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("PACER_BUCKET"); v != "" {
		c.Blob.Bucket = v
	}
	if v := os.Getenv("PACER_KEY"); v != "" {
		c.Blob.Key = v
	}
	if v := os.Getenv("PACER_BLOB_FIELD"); v != "" {
		c.Blob.Field = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PACER_EXPECT_STATUS", &c.ExpectStatus},
		{"PACER_MAX_UPLOAD_SPEED_KBPS", &c.MaxUploadSpeedKbps},
		{"PACER_REQUEST_RPS", &c.RequestRate.RPS},
		{"PACER_REQUEST_BURST", &c.RequestRate.Burst},
	}
	for _, env := range ints {
		v := os.Getenv(env.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", env.name, err)
		}
		*env.dst = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"PACER_TIMEOUT", &c.Timeout},
		{"PACER_PROGRESS_INTERVAL", &c.ProgressInterval},
	}
	for _, env := range durations {
		v := os.Getenv(env.name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", env.name, err)
		}
		*env.dst = d
	}

	return nil
}

// Validate validates the configuration. Tag failures are reported as a
// validate.FieldErrors keyed by YAML name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if len(c.Fields) == 0 && len(c.Files) == 0 && c.Blob.Key == "" {
		return ErrNoParts
	}

	for name := range c.Headers {
		if name == "" {
			return errors.New("config: header names must not be empty")
		}
	}

	for field, path := range c.Files {
		if field == "" || path == "" {
			return fmt.Errorf("config: file part %q=%q: field and path are required", field, path)
		}
	}

	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored, so Merge suits layering a sparse
// source such as a file over defaults. Callers that must apply explicit
// zero values assign the fields directly. Map entries in override replace
// entries of the same key.
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Method != "" {
		c.Method = override.Method
	}
	if override.ExpectStatus != 0 {
		c.ExpectStatus = override.ExpectStatus
	}
	if override.MaxUploadSpeedKbps != 0 {
		c.MaxUploadSpeedKbps = override.MaxUploadSpeedKbps
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.UserAgent != "" {
		c.UserAgent = override.UserAgent
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.ProgressInterval != 0 {
		c.ProgressInterval = override.ProgressInterval
	}
	if override.RequestRate.RPS != 0 {
		c.RequestRate.RPS = override.RequestRate.RPS
	}
	if override.RequestRate.Burst != 0 {
		c.RequestRate.Burst = override.RequestRate.Burst
	}
	if override.Blob.Bucket != "" {
		c.Blob.Bucket = override.Blob.Bucket
	}
	if override.Blob.Key != "" {
		c.Blob.Key = override.Blob.Key
	}
	if override.Blob.Field != "" {
		c.Blob.Field = override.Blob.Field
	}

	c.Headers = mergeMap(c.Headers, override.Headers)
	c.Fields = mergeMap(c.Fields, override.Fields)
	c.Files = mergeMap(c.Files, override.Files)

	return c
}

func mergeMap(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}

	out := make(map[string]string, len(base)+len(override))
	maps.Copy(out, base)
	maps.Copy(out, override)

	return out
}
