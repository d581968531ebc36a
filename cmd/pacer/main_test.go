package main

import (
	"bytes"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gocloud.dev/blob"

	"github.com/adamwoolhether/pacer/internal/config"
)

type form struct {
	fields map[string]string
	files  map[string]string
}

func formServer(t *testing.T, status int) (*httptest.Server, func() []form) {
	t.Helper()

	var mu sync.Mutex
	var forms []form

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		f := form{fields: map[string]string{}, files: map[string]string{}}
		for k, v := range r.MultipartForm.Value {
			f.fields[k] = v[0]
		}
		for k, fhs := range r.MultipartForm.File {
			file, err := fhs[0].Open()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			data, _ := io.ReadAll(file)
			_ = file.Close()
			f.files[k] = fhs[0].Filename + ":" + string(data)
		}

		mu.Lock()
		forms = append(forms, f)
		mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)

	return ts, func() []form {
		mu.Lock()
		defer mu.Unlock()
		return append([]form(nil), forms...)
	}
}

func TestRun_Usage(t *testing.T) {
	testCases := map[string]struct {
		args []string
		exp  int
	}{
		"noArgs":          {args: nil, exp: ExitInvalidArgs},
		"help":            {args: []string{"help"}, exp: ExitSuccess},
		"unknown":         {args: []string{"download"}, exp: ExitInvalidArgs},
		"uploadHelp":      {args: []string{"upload", "-h"}, exp: ExitSuccess},
		"missingURL":      {args: []string{"upload", "-field", "a=b"}, exp: ExitInvalidArgs},
		"noParts":         {args: []string{"upload", "-url", "http://localhost/upload"}, exp: ExitInvalidArgs},
		"badFieldFlag":    {args: []string{"upload", "-url", "http://localhost/upload", "-field", "novalue"}, exp: ExitInvalidArgs},
		"negativeSpeed":   {args: []string{"upload", "-url", "http://localhost/upload", "-field", "a=b", "-speed", "-1"}, exp: ExitInvalidArgs},
		"missingFile":     {args: []string{"upload", "-url", "http://localhost/upload", "-file", "doc=/does/not/exist"}, exp: ExitSourceNotAccess},
		"missingConfig":   {args: []string{"upload", "-config", "/does/not/exist.yaml"}, exp: ExitInvalidArgs},
		"keyNoBucket":     {args: []string{"upload", "-url", "http://localhost/upload", "-key", "x"}, exp: ExitInvalidArgs},
		"unsupportedVerb": {args: []string{"upload", "-url", "http://localhost/upload", "-field", "a=b", "-method", "GET"}, exp: ExitInvalidArgs},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(tc.args, &stderr); got != tc.exp {
				t.Errorf("exp exit code %d, got %d; output:\n%s", tc.exp, got, stderr.String())
			}
		})
	}
}

func TestRun_Upload(t *testing.T) {
	ts, forms := formServer(t, http.StatusOK)

	dir := t.TempDir()
	docPath := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(docPath, []byte("local file"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	bucketDir := t.TempDir()
	bkt, err := blob.OpenBucket(t.Context(), "file://"+bucketDir)
	if err != nil {
		t.Fatalf("opening bucket: %v", err)
	}
	if err := bkt.WriteAll(t.Context(), "exports/report.csv", []byte("a,b\n1,2\n"), nil); err != nil {
		t.Fatalf("writing blob: %v", err)
	}
	if err := bkt.Close(); err != nil {
		t.Fatalf("closing bucket: %v", err)
	}

	args := []string{
		"upload",
		"-url", ts.URL + "/upload",
		"-speed", "8000",
		"-progress",
		"-progress-interval", "10ms",
		"-field", "title=weekly",
		"-field", "owner=ops",
		"-file", "doc=" + docPath,
		"-bucket", "file://" + bucketDir,
		"-key", "exports/report.csv",
		"-blob-field", "export",
	}

	var stderr bytes.Buffer
	if got := run(args, &stderr); got != ExitSuccess {
		t.Fatalf("exp exit code %d, got %d; output:\n%s", ExitSuccess, got, stderr.String())
	}

	got := forms()
	if len(got) != 1 {
		t.Fatalf("exp 1 upload, got %d", len(got))
	}

	exp := form{
		fields: map[string]string{"title": "weekly", "owner": "ops"},
		files: map[string]string{
			"doc":    "notes.txt:local file",
			"export": "report.csv:a,b\n1,2\n",
		},
	}
	if diff := cmp.Diff(exp, got[0], cmp.AllowUnexported(form{})); diff != "" {
		t.Errorf("form mismatch (-want +got):\n%s", diff)
	}

	if out := stderr.String(); !strings.Contains(out, "Upload complete: 4 parts") {
		t.Errorf("exp completion message, got:\n%s", out)
	}
}

func TestRun_UploadFromConfig(t *testing.T) {
	ts, forms := formServer(t, http.StatusCreated)

	configPath := filepath.Join(t.TempDir(), "pacer.yaml")
	content := "url: " + ts.URL + "\nexpect_status: 201\nfields:\n  source: config\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	var stderr bytes.Buffer
	if got := run([]string{"upload", "-config", configPath, "-field", "extra=flag"}, &stderr); got != ExitSuccess {
		t.Fatalf("exp exit code %d, got %d; output:\n%s", ExitSuccess, got, stderr.String())
	}

	got := forms()
	if len(got) != 1 {
		t.Fatalf("exp 1 upload, got %d", len(got))
	}
	if diff := cmp.Diff(map[string]string{"source": "config", "extra": "flag"}, got[0].fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FlagsOverrideConfig(t *testing.T) {
	var mu sync.Mutex
	var tenant string
	var received int64

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n, _ := io.Copy(io.Discard, r.Body)

		mu.Lock()
		tenant = r.Header.Get("X-Tenant")
		received = n
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.bin")
	if err := os.WriteFile(dataPath, bytes.Repeat([]byte("d"), 32<<10), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	// At the configured 8 kbps the file alone would take over 30s.
	configPath := filepath.Join(dir, "pacer.yaml")
	content := "url: " + ts.URL + "\nmax_upload_speed_kbps: 8\nprogress: true\nheaders:\n  X-Tenant: from-config\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	args := []string{
		"upload",
		"-config", configPath,
		"-speed", "0",
		"-progress=false",
		"-header", "X-Tenant=from-flag",
		"-file", "data=" + dataPath,
	}

	start := time.Now()
	var stderr bytes.Buffer
	if got := run(args, &stderr); got != ExitSuccess {
		t.Fatalf("exp exit code %d, got %d; output:\n%s", ExitSuccess, got, stderr.String())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("exp -speed 0 to lift the configured ceiling, took %v", elapsed)
	}

	mu.Lock()
	defer mu.Unlock()
	if tenant != "from-flag" {
		t.Errorf("exp flag header to win, got %q", tenant)
	}
	if received < 32<<10 {
		t.Errorf("exp the whole file to arrive, got %d bytes", received)
	}
	if strings.Contains(stderr.String(), "progress is only reported") {
		t.Error("exp -progress=false to disable progress output")
	}
}

func TestUploadFlags_Apply(t *testing.T) {
	testCases := map[string]struct {
		args []string
		exp  func(*config.Config)
	}{
		"nothingSet": {
			exp: func(*config.Config) {},
		},
		"zeroValues": {
			args: []string{"-speed", "0", "-progress=false", "-rps", "0", "-timeout", "0s"},
			exp: func(c *config.Config) {
				c.MaxUploadSpeedKbps = 0
				c.Progress = false
				c.RequestRate.RPS = 0
				c.Timeout = 0
			},
		},
		"mapsMerge": {
			args: []string{"-field", "title=flag", "-field", "extra=1", "-header", "X-Tenant=acme"},
			exp: func(c *config.Config) {
				c.Fields = map[string]string{"title": "flag", "owner": "ops", "extra": "1"}
				c.Headers = map[string]string{"X-Tenant": "acme"}
			},
		},
		"scalars": {
			args: []string{"-url", "https://other.example.com", "-method", "PUT", "-expect", "201", "-key", "k", "-bucket", "mem://"},
			exp: func(c *config.Config) {
				c.URL = "https://other.example.com"
				c.Method = "PUT"
				c.ExpectStatus = 201
				c.Blob.Key = "k"
				c.Blob.Bucket = "mem://"
			},
		},
	}

	base := func() config.Config {
		cfg := config.Default()
		cfg.URL = "https://uploads.example.com"
		cfg.MaxUploadSpeedKbps = 8
		cfg.Progress = true
		cfg.Timeout = time.Minute
		cfg.RequestRate.RPS = 3
		cfg.Fields = map[string]string{"title": "file", "owner": "ops"}
		return cfg
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			fs := flag.NewFlagSet("upload", flag.ContinueOnError)
			var flags uploadFlags
			flags.register(fs)
			if err := fs.Parse(tc.args); err != nil {
				t.Fatalf("parsing flags: %v", err)
			}

			cfg := base()
			flags.apply(fs, &cfg)

			exp := base()
			tc.exp(&exp)
			if diff := cmp.Diff(exp, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_UploadRejected(t *testing.T) {
	ts, _ := formServer(t, http.StatusForbidden)

	var stderr bytes.Buffer
	got := run([]string{"upload", "-url", ts.URL, "-field", "a=b"}, &stderr)
	if got != ExitRejected {
		t.Errorf("exp exit code %d, got %d; output:\n%s", ExitRejected, got, stderr.String())
	}
}

func TestRender(t *testing.T) {
	testCases := map[string]struct {
		written int64
		total   int64
		elapsed time.Duration
		width   int
		exp     string
	}{
		"half": {
			written: 512,
			total:   1024,
			width:   41,
			exp:     "[" + strings.Repeat("=", 9) + strings.Repeat(" ", 9) + "]  50.0% 512 B/1.00 KB",
		},
		"complete": {
			written: 2048,
			total:   2048,
			elapsed: time.Second,
			width:   20,
			exp:     "[==========]" + " 100.0% 2.00 KB/2.00 KB 16.0 kbps",
		},
		"unknownTotal": {
			written: 3 << 20,
			total:   -1,
			width:   80,
			exp:     "Uploading... 3.00 MB",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := render(tc.written, tc.total, tc.elapsed, tc.width); got != tc.exp {
				t.Errorf("exp %q, got %q", tc.exp, got)
			}
		})
	}
}

func TestKVFlag(t *testing.T) {
	f := kvFlag{}
	for _, v := range []string{"b=2", "a=1", "c="} {
		if err := f.Set(v); err != nil {
			t.Fatalf("set %q: %v", v, err)
		}
	}

	if got := f.String(); got != "a=1,b=2,c=" {
		t.Errorf("exp sorted pairs, got %q", got)
	}

	for _, bad := range []string{"novalue", "=value"} {
		if err := f.Set(bad); err == nil {
			t.Errorf("exp error for %q", bad)
		}
	}
}
