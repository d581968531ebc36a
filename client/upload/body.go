package upload

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/adamwoolhether/pacer/client/multipart"
)

// bufferSize is the segment size handed to the sink per write.
const bufferSize = 8 << 10

// Body wraps a Source, exposing the same content type and length while
// pacing and observing the bytes it writes. A Body is immutable; every
// WriteTo builds its own pacing state, so a Body can be replayed for
// retried or redirected requests.
type Body struct {
	src      Source
	cfg      Config
	progress ProgressFunc
	logger   *slog.Logger
	pause    pauseFunc
}

// NewBody returns a Body streaming src at no more than cfg's ceiling.
func NewBody(src Source, cfg Config, optFns ...Option) (*Body, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying upload option: %w", err)
		}
	}

	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	b := Body{
		src:      src,
		cfg:      cfg,
		progress: opts.progress,
		logger:   opts.logger,
		pause:    pause,
	}

	return &b, nil
}

// ContentType returns the wrapped source's content type.
func (b *Body) ContentType() string {
	return b.src.ContentType()
}

// ContentLength returns the wrapped source's length. The length only feeds
// headers and progress reporting, so a failed lookup is logged and
// reported as UnknownLength instead of failing the caller.
func (b *Body) ContentLength() int64 {
	n, err := b.src.ContentLength()
	if err != nil {
		b.logger.Warn("content length unavailable", "error", err)
		return UnknownLength
	}

	return n
}

// Boundary returns the multipart boundary of the wrapped source,
// or an empty string when the source is not multipart.
func (b *Body) Boundary() string {
	if m, ok := b.src.(multipartSource); ok {
		return m.Boundary()
	}

	return ""
}

// Size returns the number of parts in the wrapped multipart source.
func (b *Body) Size() int {
	if m, ok := b.src.(multipartSource); ok {
		return m.Size()
	}

	return 0
}

// Parts returns a copy of the wrapped multipart source's parts, or nil
// when the source is not multipart.
func (b *Body) Parts() []multipart.Part {
	if m, ok := b.src.(multipartSource); ok {
		return m.Parts()
	}

	return nil
}

// Part returns part i of the wrapped multipart source. Like indexing, it
// panics when i is out of range, and every index is out of range for a
// source that is not multipart.
func (b *Body) Part(i int) multipart.Part {
	if m, ok := b.src.(multipartSource); ok {
		return m.Part(i)
	}

	panic(fmt.Sprintf("upload: part %d of a source with no parts", i))
}

// Source returns the wrapped source.
func (b *Body) Source() Source {
	return b.src
}

// Config returns the pacing configuration.
func (b *Body) Config() Config {
	return b.cfg
}

// WriteTo implements io.WriterTo. It blocks for the full paced duration.
func (b *Body) WriteTo(w io.Writer) (int64, error) {
	return b.WriteToContext(context.Background(), w)
}

// WriteToContext streams the source into w, pausing as needed to honor the
// ceiling. Cancelling ctx shortens pending pauses but does not abort the
// write; that is left to w. Write and flush errors are wrapped with
// context and remain reachable through errors.Is.
func (b *Body) WriteToContext(ctx context.Context, w io.Writer) (int64, error) {
	s := b.newSink(ctx, w)
	bw := bufio.NewWriterSize(s, bufferSize)

	n, err := b.src.WriteTo(bw)
	if err != nil {
		return n, fmt.Errorf("writing body: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flushing body: %w", err)
	}

	if err := s.Flush(); err != nil {
		return n, fmt.Errorf("flushing output: %w", err)
	}

	return n, nil
}

func (b *Body) newSink(ctx context.Context, w io.Writer) *sink {
	return &sink{
		ctx:       ctx,
		w:         w,
		chunkSize: b.cfg.ChunkSize(),
		total:     b.ContentLength,
		progress:  b.progress,
		pause:     b.pause,
		logger:    b.logger,
	}
}
