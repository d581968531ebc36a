package main

import (
	"flag"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/adamwoolhether/pacer/internal/config"
)

// kvFlag collects repeated name=value flags.
type kvFlag map[string]string

func (f kvFlag) String() string {
	pairs := make([]string, 0, len(f))
	for _, k := range slices.Sorted(maps.Keys(f)) {
		pairs = append(pairs, k+"="+f[k])
	}
	return strings.Join(pairs, ",")
}

func (f kvFlag) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	f[name] = value
	return nil
}

// uploadFlags binds the upload command's flags. Only flags present on the
// command line are applied, so a zero value such as -speed 0 or
// -progress=false still overrides file and environment settings.
type uploadFlags struct {
	configPath string
	verbose    bool

	values  config.Config
	rps     int
	headers kvFlag
	fields  kvFlag
	files   kvFlag
}

func (u *uploadFlags) register(fs *flag.FlagSet) {
	u.headers, u.fields, u.files = kvFlag{}, kvFlag{}, kvFlag{}

	fs.StringVar(&u.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&u.values.URL, "url", "", "Destination URL (required)")
	fs.StringVar(&u.values.Method, "method", "", "HTTP method: POST, PUT or PATCH (default POST)")
	fs.IntVar(&u.values.ExpectStatus, "expect", 0, "Expected response status (default 200)")
	fs.IntVar(&u.values.MaxUploadSpeedKbps, "speed", 0, "Max upload speed in kilobits per second (0 = unlimited)")
	fs.DurationVar(&u.values.Timeout, "timeout", 0, "Overall request timeout (default 1h)")
	fs.StringVar(&u.values.UserAgent, "user-agent", "", "User-Agent header")
	fs.IntVar(&u.rps, "rps", 0, "Max upload requests started per second (0 = unlimited)")
	fs.BoolVar(&u.values.Progress, "progress", false, "Show progress output")
	fs.DurationVar(&u.values.ProgressInterval, "progress-interval", 0, "Progress log interval when not on a terminal (default 1s)")
	fs.StringVar(&u.values.Blob.Bucket, "bucket", "", "Bucket URL holding -key, e.g. s3://bucket or file:///dir")
	fs.StringVar(&u.values.Blob.Key, "key", "", "Object key to send as a file part")
	fs.StringVar(&u.values.Blob.Field, "blob-field", "", "Form field name for the bucket object (default file)")
	fs.BoolVar(&u.verbose, "v", false, "Verbose logging")
	fs.Var(u.headers, "header", "Request header name=value (repeatable)")
	fs.Var(u.fields, "field", "Form field name=value (repeatable)")
	fs.Var(u.files, "file", "File part field=path (repeatable)")
}

// apply copies the flags set on fs into cfg.
func (u *uploadFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = u.values.URL
		case "method":
			cfg.Method = u.values.Method
		case "expect":
			cfg.ExpectStatus = u.values.ExpectStatus
		case "speed":
			cfg.MaxUploadSpeedKbps = u.values.MaxUploadSpeedKbps
		case "timeout":
			cfg.Timeout = u.values.Timeout
		case "user-agent":
			cfg.UserAgent = u.values.UserAgent
		case "rps":
			cfg.RequestRate.RPS = u.rps
		case "progress":
			cfg.Progress = u.values.Progress
		case "progress-interval":
			cfg.ProgressInterval = u.values.ProgressInterval
		case "bucket":
			cfg.Blob.Bucket = u.values.Blob.Bucket
		case "key":
			cfg.Blob.Key = u.values.Blob.Key
		case "blob-field":
			cfg.Blob.Field = u.values.Blob.Field
		case "header":
			cfg.Headers = withEntries(cfg.Headers, u.headers)
		case "field":
			cfg.Fields = withEntries(cfg.Fields, u.fields)
		case "file":
			cfg.Files = withEntries(cfg.Files, u.files)
		}
	})
}

func withEntries(base, add map[string]string) map[string]string {
	out := maps.Clone(base)
	if out == nil {
		out = make(map[string]string, len(add))
	}
	maps.Copy(out, add)

	return out
}
