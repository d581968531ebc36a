package throttle

import (
	"errors"
	"fmt"

	"github.com/adamwoolhether/pacer/internal/validate"
)

var (
	// ErrInvalidConfig is returned for a non-positive rate or burst.
	ErrInvalidConfig = errors.New("invalid throttle config")
	// ErrNotAdmitted is returned when a request's context ends before the
	// limiter lets it start.
	ErrNotAdmitted = errors.New("request not admitted")
)

// Config limits how many uploads may start per second. Burst uploads may
// start back to back before the rate applies.
type Config struct {
	RPS   int `yaml:"rps" validate:"gt=0"`
	Burst int `yaml:"burst" validate:"gt=0"`
}

// Validate checks that both limits are positive.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: rps %d, burst %d: %w", ErrInvalidConfig, c.RPS, c.Burst, err)
	}

	return nil
}
