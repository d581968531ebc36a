package multipart

import (
	"errors"
	"fmt"
)

// UnknownLength marks a part, or a body, whose size is not known in advance.
const UnknownLength int64 = -1

var (
	ErrSizeMismatch = errors.New("part size mismatch")
	ErrEmptyName    = errors.New("field name must not be empty")
	ErrNoParts      = errors.New("multipart body has no parts")
	ErrNilOpener    = errors.New("part opener must not be nil")
)

// SizeError is returned when a part's content does not match its declared size.
type SizeError struct {
	Part     int
	Field    string
	Expected int64
	Actual   int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: part %d (%s): expected %d bytes, got %d", ErrSizeMismatch, e.Part, e.Field, e.Expected, e.Actual)
}

func (e *SizeError) Unwrap() error {
	return ErrSizeMismatch
}
