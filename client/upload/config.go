package upload

import (
	"fmt"
	"time"

	"github.com/adamwoolhether/pacer/internal/validate"
)

// ChunkDelay is the pacing granularity: every chunk of bytes written earns
// one ChunkDelay pause.
const ChunkDelay = 100 * time.Millisecond

// Config defines the upload bandwidth ceiling.
// A zero MaxUploadSpeedKbps leaves uploads unthrottled.
type Config struct {
	MaxUploadSpeedKbps int `yaml:"max_upload_speed_kbps" validate:"gte=0"`
}

// Validate checks the config against its declared constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// ChunkSize returns the number of bytes allowed per ChunkDelay window,
// or 0 when unthrottled.
func (c Config) ChunkSize() int64 {
	if c.MaxUploadSpeedKbps <= 0 {
		return 0
	}

	windowsPerSecond := int64(time.Second / ChunkDelay)

	return int64(c.MaxUploadSpeedKbps) * 1024 / 8 / windowsPerSecond
}

// BytesPerSecond returns the ceiling in bytes per second, or 0 when unthrottled.
func (c Config) BytesPerSecond() int64 {
	if c.MaxUploadSpeedKbps <= 0 {
		return 0
	}

	return int64(c.MaxUploadSpeedKbps) * 1024 / 8
}
