package multipart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"gocloud.dev/blob"
)

// Builder collects the parts of a multipart body.
type Builder struct {
	boundary string
	parts    []Part
}

// NewBuilder returns a Builder with a random boundary.
func NewBuilder() *Builder {
	return &Builder{
		boundary: multipart.NewWriter(io.Discard).Boundary(),
	}
}

// SetBoundary overrides the random boundary. It follows the same rules as
// [multipart.Writer.SetBoundary].
func (b *Builder) SetBoundary(boundary string) error {
	if err := multipart.NewWriter(io.Discard).SetBoundary(boundary); err != nil {
		return fmt.Errorf("setting boundary: %w", err)
	}

	b.boundary = boundary
	return nil
}

// AddField adds a plain form field.
func (b *Builder) AddField(name, value string) error {
	if name == "" {
		return ErrEmptyName
	}

	return b.AddPart(fieldHeader(name), int64(len(value)), bytesOpener([]byte(value)))
}

// AddFile adds an in-memory file part. An empty contentType
// defaults to application/octet-stream.
func (b *Builder) AddFile(field, filename, contentType string, content []byte) error {
	if field == "" {
		return ErrEmptyName
	}

	return b.AddPart(fileHeader(field, filename, contentType), int64(len(content)), bytesOpener(content))
}

// AddFilePath adds the file at path, named after its base name. The size
// is taken now and the content type is sniffed from the file's content;
// the file itself is opened each time the body is written.
func (b *Builder) AddFilePath(field, path string) error {
	if field == "" {
		return ErrEmptyName
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("file %q is a directory", path)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("detecting content type: %w", err)
	}

	open := func() (io.ReadCloser, error) {
		return os.Open(path)
	}

	return b.AddPart(fileHeader(field, filepath.Base(path), mtype.String()), info.Size(), open)
}

// AddBlob adds the object stored under key in bucket. Size and content
// type come from the object's attributes. ctx bounds both the attribute
// lookup and every later read of the object.
func (b *Builder) AddBlob(ctx context.Context, bucket *blob.Bucket, key, field, filename string) error {
	if field == "" {
		return ErrEmptyName
	}
	if bucket == nil {
		return errors.New("bucket must not be nil")
	}

	attrs, err := bucket.Attributes(ctx, key)
	if err != nil {
		return fmt.Errorf("reading blob attributes: %w", err)
	}

	if filename == "" {
		filename = filepath.Base(key)
	}

	open := func() (io.ReadCloser, error) {
		return bucket.NewReader(ctx, key, nil)
	}

	return b.AddPart(fileHeader(field, filename, attrs.ContentType), attrs.Size, open)
}

// AddReader adds a streamed file part. size may be UnknownLength, in which
// case the whole body's length becomes unknown.
func (b *Builder) AddReader(field, filename, contentType string, size int64, open OpenFunc) error {
	if field == "" {
		return ErrEmptyName
	}

	return b.AddPart(fileHeader(field, filename, contentType), size, open)
}

// AddPart adds a part with caller-supplied headers.
func (b *Builder) AddPart(header textproto.MIMEHeader, size int64, open OpenFunc) error {
	if open == nil {
		return ErrNilOpener
	}
	if size < 0 {
		size = UnknownLength
	}

	b.parts = append(b.parts, Part{Header: header, Size: size, open: open})
	return nil
}

// Build returns the assembled Body. The Builder may be reused afterwards
// without affecting the returned Body.
func (b *Builder) Build() (*Body, error) {
	if len(b.parts) == 0 {
		return nil, ErrNoParts
	}

	parts := make([]Part, len(b.parts))
	copy(parts, b.parts)

	return &Body{boundary: b.boundary, parts: parts}, nil
}
