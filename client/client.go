package client

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/pacer/client/throttle"
)

// Client sends multipart uploads paced to a bandwidth ceiling.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics

	// speedKbps is the default ceiling; zero leaves uploads unthrottled.
	speedKbps int
}

// Build returns a Client configured by opts. Without options it sends over
// http.DefaultTransport, follows up to 10 redirects and does not pace.
func Build(opts ...Option) (*Client, error) {
	var s settings
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := Client{
		logger:    cmp.Or(s.logger, slog.Default()),
		tracer:    cmp.Or(s.tracer, trace.Tracer(noop.NewTracerProvider().Tracer("pacer"))),
		speedKbps: s.speedKbps,
	}

	if s.registerer != nil {
		m, err := newMetrics(s.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		c.metrics = m
	}

	rt, err := s.roundTripper(c.logger)
	if err != nil {
		return nil, err
	}

	c.http = &http.Client{
		Transport:     rt,
		Timeout:       s.timeout,
		CheckRedirect: s.redirectPolicy(),
	}

	return &c, nil
}

// roundTripper layers the header and throttle transports over the base.
// The throttle is outermost so a delayed start holds no connection.
func (s settings) roundTripper(logger *slog.Logger) (http.RoundTripper, error) {
	var rt http.RoundTripper = cmp.Or(s.transport, http.DefaultTransport)

	if s.userAgent != "" {
		rt = headerTransport{header: http.Header{"User-Agent": {s.userAgent}}, next: rt}
	}

	if s.rate != nil {
		limited, err := throttle.New(*s.rate, rt, logger)
		if err != nil {
			return nil, fmt.Errorf("configuring request rate: %w", err)
		}
		rt = limited
	}

	return rt, nil
}

func (s settings) redirectPolicy() func(*http.Request, []*http.Request) error {
	if s.maxRedirects == nil {
		return nil
	}

	limit := *s.maxRedirects
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// headerTransport sets fixed headers on every request it forwards.
type headerTransport struct {
	header http.Header
	next   http.RoundTripper
}

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	for k, v := range h.header {
		r.Header[k] = slices.Clone(v)
	}

	return h.next.RoundTrip(r)
}

// NewRequest returns a bodiless upload request for method and target,
// ready to be passed to [Client.Upload]. method must be POST, PUT or PATCH
// and target an absolute http or https URL.
func NewRequest(ctx context.Context, method, target string, opts ...RequestOption) (*http.Request, error) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http or https URL", ErrInvalidURL, target)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for _, opt := range opts {
		if err := opt(req); err != nil {
			return nil, fmt.Errorf("applying request option: %w", err)
		}
	}

	return req, nil
}
