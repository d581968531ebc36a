package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/pacer/client/upload"
)

// Upload sends src as the body of req and validates the response status.
// The body is paced to the client's bandwidth ceiling unless overridden
// with WithUploadSpeed. Content-Type and Content-Length come from src,
// replacing anything set on req.
//
// Every transmission attempt, redirects included, streams the body from the
// start with fresh pacing state. The write runs on its own goroutine
// feeding the transport through a pipe; pauses block only that goroutine.
func (c *Client) Upload(req *http.Request, expCode int, src upload.Source, optFns ...UploadOption) error {
	if src == nil {
		return upload.ErrNilSource
	}

	var opts uploadSettings
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return err
		}
	}

	speed := c.speedKbps
	if opts.speedKbps != nil {
		speed = *opts.speedKbps
	}

	uploadID := uuid.NewString()
	logger := c.logger.With("upload_id", uploadID)

	bodyOpts := []upload.Option{upload.WithLogger(logger)}
	if opts.progress != nil {
		// An abandoned attempt may still be writing while its replay starts.
		var mu sync.Mutex
		progress := opts.progress
		bodyOpts = append(bodyOpts, upload.WithProgress(func(written, total int64) {
			mu.Lock()
			defer mu.Unlock()
			progress(written, total)
		}))
	}

	body, err := upload.NewBody(src, upload.Config{MaxUploadSpeedKbps: speed}, bodyOpts...)
	if err != nil {
		return fmt.Errorf("preparing upload body: %w", err)
	}
	contentLength := body.ContentLength()

	ctx, span := c.tracer.Start(req.Context(), "upload", trace.WithAttributes(
		attribute.String("upload.id", uploadID),
		attribute.Int64("upload.content_length", contentLength),
		attribute.Int("upload.max_speed_kbps", speed),
		attribute.Int("upload.parts", body.Size()),
	))
	defer span.End()

	req = req.Clone(ctx)
	req.Header.Set("Content-Type", body.ContentType())
	req.Header.Set(UploadIDHeader, uploadID)
	req.ContentLength = contentLength

	bodies := newPipes(ctx, c.metrics, logger)
	defer bodies.close()

	req.GetBody = func() (io.ReadCloser, error) {
		return bodies.open(body), nil
	}
	req.Body = bodies.open(body)

	logger.Info("upload started", "method", req.Method, "path", req.URL.Path, "content_length", contentLength, "max_speed_kbps", speed)
	start := time.Now()

	err = c.send(req, expCode, opts.dest)
	c.metrics.observe(start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		logger.Error("upload failed", "since", time.Since(start).String(), "error", err)

		return fmt.Errorf("upload: %w", err)
	}

	logger.Info("upload completed", "since", time.Since(start).String())

	return nil
}

// pipes tracks the body writers started for one upload so none outlive it.
type pipes struct {
	metrics *metrics
	logger  *slog.Logger

	// ctx is cancelled by close, ending any pause a writer is in.
	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	mu      sync.Mutex
	readers []*io.PipeReader
}

func newPipes(ctx context.Context, m *metrics, logger *slog.Logger) *pipes {
	ctx, cancel := context.WithCancel(ctx)

	return &pipes{metrics: m, logger: logger, ctx: ctx, cancel: cancel}
}

// open starts writing body into a pipe and returns the read end.
// The writer exits once the body is written, the reader is closed or
// the pipes are closed.
func (p *pipes) open(body *upload.Body) io.ReadCloser {
	pr, pw := io.Pipe()

	p.mu.Lock()
	p.readers = append(p.readers, pr)
	p.mu.Unlock()

	p.wg.Go(func() {
		n, err := body.WriteToContext(p.ctx, pw)
		p.metrics.addBytes(n)

		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			p.logger.Warn("upload body aborted", "written", n, "error", err)
		}

		pw.CloseWithError(err)
	})

	return pr
}

// close unblocks writers the transport abandoned and waits for all of them.
func (p *pipes) close() {
	p.cancel()

	p.mu.Lock()
	for _, pr := range p.readers {
		_ = pr.Close()
	}
	p.mu.Unlock()

	p.wg.Wait()
}
