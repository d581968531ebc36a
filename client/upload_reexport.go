package client

import (
	"log/slog"
	"time"

	"github.com/adamwoolhether/pacer/client/multipart"
	"github.com/adamwoolhether/pacer/client/upload"
)

// //////////////////////////////////////////////////////////////////
// Type aliases: re-export user-facing types from [upload] and [multipart].
// //////////////////////////////////////////////////////////////////

type (
	// UploadSource is a fully assembled body accepted by [Client.Upload].
	UploadSource = upload.Source

	// ProgressFunc observes bytes written against the body's total length.
	ProgressFunc = upload.ProgressFunc

	// MultipartBuilder collects the parts of a multipart/form-data body.
	MultipartBuilder = multipart.Builder

	// MultipartBody is the assembled multipart/form-data body.
	MultipartBody = multipart.Body

	// MultipartSizeError reports a part whose content did not match its declared size.
	MultipartSizeError = multipart.SizeError
)

// //////////////////////////////////////////////////////////////////
// Sentinel errors and constants
// //////////////////////////////////////////////////////////////////

var (
	// ErrPartSizeMismatch indicates a part's content did not match its declared size.
	ErrPartSizeMismatch = multipart.ErrSizeMismatch

	// ErrInvalidUploadConfig indicates a negative bandwidth ceiling.
	ErrInvalidUploadConfig = upload.ErrInvalidConfig
)

// UnknownLength is reported as the total for bodies of unknown size.
const UnknownLength = upload.UnknownLength

// //////////////////////////////////////////////////////////////////
// Forwarding functions
// //////////////////////////////////////////////////////////////////

// NewMultipartBuilder returns a builder for a multipart/form-data body
// with a random boundary.
func NewMultipartBuilder() *MultipartBuilder { return multipart.NewBuilder() }

// LogProgress returns a ProgressFunc logging progress at most once per interval.
func LogProgress(logger *slog.Logger, interval time.Duration) ProgressFunc {
	return upload.LogProgress(logger, interval)
}
