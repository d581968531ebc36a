package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/pacer/client/throttle"
	"github.com/adamwoolhether/pacer/client/upload"
)

// Option configures a [Client] built with [Build].
type Option func(*settings) error

type settings struct {
	transport    http.RoundTripper
	timeout      time.Duration
	userAgent    string
	rate         *throttle.Config
	maxRedirects *int
	speedKbps    int
	logger       *slog.Logger
	tracer       trace.Tracer
	registerer   prometheus.Registerer
}

// WithTransport sets the base [http.RoundTripper] uploads are sent over.
// It defaults to [http.DefaultTransport].
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		s.transport = rt
		return nil
	}
}

// WithTimeout bounds each upload from the first byte sent to the last
// byte of the response. Zero means no limit. A paced upload must fit its
// whole paced duration inside d.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) error {
		if d < 0 {
			return fmt.Errorf("timeout %v must not be negative", d)
		}
		s.timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header on every upload.
func WithUserAgent(ua string) Option {
	return func(s *settings) error {
		if ua == "" {
			return errors.New("user agent must not be empty")
		}
		s.userAgent = ua
		return nil
	}
}

// WithRequestRate limits how many uploads may start per second, allowing
// burst of them to start back to back. Each redirect replay counts as a
// start.
func WithRequestRate(rps, burst int) Option {
	return func(s *settings) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.rate = &cfg
		return nil
	}
}

// WithMaxUploadSpeed sets the default bandwidth ceiling, in kilobits per
// second, applied to every [Client.Upload]. Zero, the default, leaves
// uploads unthrottled.
func WithMaxUploadSpeed(kbps int) Option {
	return func(s *settings) error {
		if err := (upload.Config{MaxUploadSpeedKbps: kbps}).Validate(); err != nil {
			return fmt.Errorf("max upload speed %d: %w", kbps, err)
		}
		s.speedKbps = kbps
		return nil
	}
}

// WithMaxRedirects caps the redirects an upload follows. Each one replays
// the body from the start. Zero returns the redirect response itself,
// which then fails the status check. Without this option the
// [http.Client] default of 10 applies.
func WithMaxRedirects(n int) Option {
	return func(s *settings) error {
		if n < 0 {
			return fmt.Errorf("max redirects %d must not be negative", n)
		}
		s.maxRedirects = &n
		return nil
	}
}

// WithTracer records a span for every [Client.Upload].
func WithTracer(tracer trace.Tracer) Option {
	return func(s *settings) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		s.tracer = tracer
		return nil
	}
}

// WithMetrics registers upload counters and latency histograms with reg.
// Clients sharing a registerer share the collectors.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *settings) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		s.registerer = reg
		return nil
	}
}

// WithLogger sets the logger for upload lifecycle events. It defaults to
// [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// UploadOption adjusts a single [Client.Upload].
type UploadOption func(*uploadSettings) error

type uploadSettings struct {
	speedKbps *int
	progress  upload.ProgressFunc
	dest      any
}

// WithUploadSpeed overrides the client's bandwidth ceiling for one upload.
// Zero disables pacing for that upload.
func WithUploadSpeed(kbps int) UploadOption {
	return func(s *uploadSettings) error {
		if err := (upload.Config{MaxUploadSpeedKbps: kbps}).Validate(); err != nil {
			return fmt.Errorf("upload speed %d: %w", kbps, err)
		}
		s.speedKbps = &kbps
		return nil
	}
}

// WithUploadProgress registers fn to observe bytes written while the upload
// is paced. fn is never called for unthrottled uploads.
func WithUploadProgress(fn upload.ProgressFunc) UploadOption {
	return func(s *uploadSettings) error {
		if fn == nil {
			return errors.New("progress func must not be nil")
		}
		s.progress = fn
		return nil
	}
}

// WithUploadDestination decodes the JSON response of a successful upload
// into dest, which must be a pointer.
func WithUploadDestination[T any](dest *T) UploadOption {
	return func(s *uploadSettings) error {
		if dest == nil {
			return errors.New("destination must not be nil")
		}
		s.dest = dest
		return nil
	}
}

// RequestOption adjusts the request built by [NewRequest].
type RequestOption func(*http.Request) error

// WithHeader adds a header to the upload request. Content-Type and the
// upload ID header are owned by [Client.Upload] and cannot be set here.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) error {
		switch http.CanonicalHeaderKey(key) {
		case "":
			return errors.New("header key must not be empty")
		case "Content-Type", "Content-Length", UploadIDHeader:
			return fmt.Errorf("header %q is set by the upload", key)
		}
		r.Header.Add(key, value)
		return nil
	}
}

// WithQuery adds a query parameter to the upload URL.
func WithQuery(key, value string) RequestOption {
	return func(r *http.Request) error {
		if key == "" {
			return errors.New("query key must not be empty")
		}
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
		return nil
	}
}
