package throttle

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// IDHeader identifies an upload across its attempts. The transport logs it
// when a start is delayed.
const IDHeader = "X-Upload-ID"

// Transport holds each request until the token bucket admits it, then
// hands it to the next RoundTripper. A replayed upload body, such as one
// following a redirect, counts as a new start.
type Transport struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logger  *slog.Logger
}

// New returns a Transport admitting requests at cfg's rate. A nil next
// uses http.DefaultTransport and a nil logger discards delay logs.
func New(cfg Config, next http.RoundTripper, logger *slog.Logger) (*Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Transport{
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		cfg:     cfg,
		next:    next,
		logger:  logger,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	if err := t.admit(r); err != nil {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, err
	}

	return t.next.RoundTrip(r)
}

// admit blocks until r may start or its context ends.
func (t *Transport) admit(r *http.Request) error {
	ctx := r.Context()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotAdmitted, err)
	}

	res := t.limiter.Reserve()
	delay := res.Delay()
	if delay == 0 {
		return nil
	}

	t.logger.Info("upload start delayed",
		"upload_id", r.Header.Get(IDHeader),
		"path", r.URL.Path,
		"rps", t.cfg.RPS,
		"burst", t.cfg.Burst,
		"delay", delay.String(),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return fmt.Errorf("%w after waiting: %w", ErrNotAdmitted, ctx.Err())
	}
}
