package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/adamwoolhether/pacer/client"
	"github.com/adamwoolhether/pacer/client/multipart"
	"github.com/adamwoolhether/pacer/internal/config"
)

// runUpload assembles a multipart body from fields, local files and an
// optional bucket object, then sends it paced to the configured speed.
func runUpload(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var flags uploadFlags
	flags.register(fs)

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: pacer upload [options]

Send form fields, local files and a bucket object as one multipart/form-data
body, capping the upload to -speed kilobits per second.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(flags.configPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	flags.apply(fs, &cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fs.Usage()
		return ExitInvalidArgs
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return upload(ctx, cfg, logger, stderr)
}

func upload(ctx context.Context, cfg config.Config, logger *slog.Logger, stderr io.Writer) int {
	mb := multipart.NewBuilder()

	for _, name := range slices.Sorted(maps.Keys(cfg.Fields)) {
		if err := mb.AddField(name, cfg.Fields[name]); err != nil {
			fmt.Fprintf(stderr, "Error: field %q: %v\n", name, err)
			return ExitInvalidArgs
		}
	}

	for _, field := range slices.Sorted(maps.Keys(cfg.Files)) {
		if err := mb.AddFilePath(field, cfg.Files[field]); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitSourceNotAccess
		}
	}

	if cfg.Blob.Key != "" {
		bkt, err := blob.OpenBucket(ctx, cfg.Blob.Bucket)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening bucket: %v\n", err)
			return ExitStorageError
		}
		defer bkt.Close()

		if err := mb.AddBlob(ctx, bkt, cfg.Blob.Key, cfg.Blob.Field, ""); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitSourceNotAccess
		}
	}

	body, err := mb.Build()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	opts := []client.Option{
		client.WithLogger(logger),
		client.WithTimeout(cfg.Timeout),
		client.WithMaxUploadSpeed(cfg.MaxUploadSpeedKbps),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RequestRate.RPS > 0 {
		opts = append(opts, client.WithRequestRate(cfg.RequestRate.RPS, max(cfg.RequestRate.Burst, 1)))
	}

	c, err := client.Build(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	var reqOpts []client.RequestOption
	for _, name := range slices.Sorted(maps.Keys(cfg.Headers)) {
		reqOpts = append(reqOpts, client.WithHeader(name, cfg.Headers[name]))
	}

	req, err := client.NewRequest(ctx, cfg.Method, cfg.URL, reqOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	var uploadOpts []client.UploadOption
	if cfg.Progress {
		if cfg.MaxUploadSpeedKbps == 0 {
			logger.Warn("progress is only reported for paced uploads; set -speed to enable it")
		}
		uploadOpts = append(uploadOpts, client.WithUploadProgress(progressFunc(cfg, logger, stderr)))
	}

	start := time.Now()
	if err := c.Upload(req, cfg.ExpectStatus, body, uploadOpts...); err != nil {
		var statusErr *client.UnexpectedStatusError
		switch {
		case ctx.Err() != nil:
			fmt.Fprintln(stderr, "[pacer] Upload interrupted")
			return ExitInterrupted
		case errors.As(err, &statusErr):
			fmt.Fprintf(stderr, "Error: server rejected upload: %v\n", err)
			return ExitRejected
		case errors.Is(err, client.ErrPartSizeMismatch):
			fmt.Fprintf(stderr, "Error: source changed during upload: %v\n", err)
			return ExitSourceChanged
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
	}

	fmt.Fprintf(stderr, "[pacer] Upload complete: %d parts to %s in %s\n", body.Size(), cfg.URL, time.Since(start).Round(time.Millisecond))

	return ExitSuccess
}

// progressFunc draws a bar when stderr is a terminal and logs otherwise.
func progressFunc(cfg config.Config, logger *slog.Logger, stderr io.Writer) client.ProgressFunc {
	if f, ok := stderr.(*os.File); ok && isTerminal(int(f.Fd())) {
		return newBar(f, int(f.Fd())).observe
	}

	return client.LogProgress(logger, cfg.ProgressInterval)
}
