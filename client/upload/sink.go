package upload

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// pauseFunc suspends the writer for d, reporting false when ctx ended first.
type pauseFunc func(ctx context.Context, d time.Duration) bool

// sink is an io.Writer, forwarding every write to w and pacing the caller
// so the running total stays at or below one chunk per ChunkDelay.
// A sink serves exactly one WriteTo call.
type sink struct {
	ctx       context.Context
	w         io.Writer
	chunkSize int64
	written   int64
	lastIndex int64

	total      func() int64
	totalKnown bool
	totalBytes int64

	progress ProgressFunc
	pause    pauseFunc
	logger   *slog.Logger
}

func (s *sink) Write(p []byte) (int, error) {
	n, err := s.w.Write(p)
	if err != nil {
		return n, err
	}

	if s.chunkSize == 0 {
		return n, nil
	}

	s.written += int64(n)
	index := s.written / s.chunkSize

	if index > s.lastIndex {
		d := ChunkDelay * time.Duration(index-s.lastIndex)
		if !s.pause(s.ctx, d) {
			s.logger.Debug("pacing delay interrupted", "delay", d.String(), "written", s.written)
		}
		s.lastIndex = index
	}

	if s.progress != nil {
		s.progress(s.written, s.contentLength())
	}

	return n, nil
}

// Flush flushes the underlying output when it buffers.
func (s *sink) Flush() error {
	switch f := s.w.(type) {
	case Flusher:
		return f.Flush()
	case interface{ Flush() }:
		f.Flush()
	}

	return nil
}

// contentLength resolves the body length on the first accounted write.
func (s *sink) contentLength() int64 {
	if !s.totalKnown {
		s.totalBytes = s.total()
		s.totalKnown = true
	}

	return s.totalBytes
}

// pause blocks for d or until ctx is done, whichever comes first.
// Cancellation cuts the delay short; it is never reported as an error.
func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
