package upload

import (
	"errors"
	"log/slog"
)

// Option defines optional settings for a throttled Body.
//
// WithProgress registers the observer notified after every paced write.
// It is never called for unthrottled bodies.
//
// WithLogger injects the logger used for length lookups and
// interrupted pacing delays.
type Option func(*options) error

type options struct {
	progress ProgressFunc
	logger   *slog.Logger
}

func WithProgress(fn ProgressFunc) Option {
	return func(opts *options) error {
		if fn == nil {
			return errors.New("progress func must not be nil")
		}

		opts.progress = fn
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}

		opts.logger = logger
		return nil
	}
}
