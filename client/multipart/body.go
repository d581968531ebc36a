package multipart

import (
	"fmt"
	"io"
	"mime/multipart"
	"slices"
)

// Body is an assembled multipart/form-data body. It is safe to write
// more than once; each write reopens every part.
type Body struct {
	boundary string
	parts    []Part
}

// ContentType returns the multipart/form-data media type with its boundary.
func (b *Body) ContentType() string {
	return b.newWriter(io.Discard).FormDataContentType()
}

// Boundary returns the part delimiter.
func (b *Body) Boundary() string {
	return b.boundary
}

// Size returns the number of parts.
func (b *Body) Size() int {
	return len(b.parts)
}

// Parts returns a copy of the body's parts.
func (b *Body) Parts() []Part {
	return slices.Clone(b.parts)
}

// Part returns the part at index i. It panics if i is out of range.
func (b *Body) Part(i int) Part {
	return b.parts[i]
}

// ContentLength returns the exact encoded length, or UnknownLength when
// any part's size is unknown.
func (b *Body) ContentLength() (int64, error) {
	var content int64
	for _, p := range b.parts {
		if p.Size < 0 {
			return UnknownLength, nil
		}
		content += p.Size
	}

	// The framing doesn't depend on the content, so it can be measured
	// by encoding the headers alone.
	var framing countingWriter
	mw := b.newWriter(&framing)
	for i, p := range b.parts {
		if _, err := mw.CreatePart(p.Header); err != nil {
			return UnknownLength, fmt.Errorf("measuring part %d: %w", i, err)
		}
	}
	if err := mw.Close(); err != nil {
		return UnknownLength, fmt.Errorf("measuring closing boundary: %w", err)
	}

	return framing.n + content, nil
}

// WriteTo implements io.WriterTo, encoding every part into w.
func (b *Body) WriteTo(w io.Writer) (int64, error) {
	cw := countingWriter{w: w}
	mw := b.newWriter(&cw)

	for i, p := range b.parts {
		pw, err := mw.CreatePart(p.Header)
		if err != nil {
			return cw.n, fmt.Errorf("creating part %d: %w", i, err)
		}

		if err := writeContent(pw, i, p); err != nil {
			return cw.n, err
		}
	}

	if err := mw.Close(); err != nil {
		return cw.n, fmt.Errorf("writing closing boundary: %w", err)
	}

	return cw.n, nil
}

func (b *Body) newWriter(w io.Writer) *multipart.Writer {
	mw := multipart.NewWriter(w)
	// The boundary was validated by the Builder.
	_ = mw.SetBoundary(b.boundary)

	return mw
}

func writeContent(w io.Writer, idx int, p Part) error {
	rc, err := p.open()
	if err != nil {
		return fmt.Errorf("opening part %d: %w", idx, err)
	}
	defer rc.Close()

	n, err := io.Copy(w, rc)
	if err != nil {
		return fmt.Errorf("writing part %d: %w", idx, err)
	}

	if p.Size >= 0 && n != p.Size {
		return &SizeError{Part: idx, Field: p.FieldName(), Expected: p.Size, Actual: n}
	}

	return nil
}

// countingWriter counts bytes, forwarding them to w when set.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.w == nil {
		c.n += int64(len(p))
		return len(p), nil
	}

	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
