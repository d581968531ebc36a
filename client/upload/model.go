package upload

import (
	"errors"
	"io"

	"github.com/adamwoolhether/pacer/client/multipart"
)

// UnknownLength is reported as the total when a body cannot state its size.
const UnknownLength int64 = -1

var (
	ErrInvalidConfig = errors.New("invalid upload config")
	ErrNilSource     = errors.New("source must not be nil")
)

// Source is a fully assembled request body of known content type.
// ContentLength returns UnknownLength with a nil error when the size
// cannot be known in advance.
type Source interface {
	ContentType() string
	ContentLength() (int64, error)
	io.WriterTo
}

// Flusher is implemented by outputs that buffer writes.
type Flusher interface {
	Flush() error
}

// ProgressFunc observes the cumulative number of bytes written against the
// body's total length, which may be UnknownLength. It is called on the
// writing goroutine and must return quickly.
type ProgressFunc func(written, total int64)

// multipartSource is implemented by multipart bodies.
type multipartSource interface {
	Boundary() string
	Size() int
	Parts() []multipart.Part
	Part(i int) multipart.Part
}
