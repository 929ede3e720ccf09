package sharpness

import (
	"errors"
	"fmt"
	"math"
)

// DefaultThreshold is the blur threshold used when none is configured.
const DefaultThreshold = 100.0

// ErrInvalidThreshold is returned when the threshold is not a positive finite number.
var ErrInvalidThreshold = errors.New("threshold must be positive and finite")

// Config carries the user-adjustable part of scoring.
type Config struct {
	Threshold float64
}

// DefaultConfig returns the default scoring configuration
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// WithThreshold returns a copy of the config using threshold t
func (c Config) WithThreshold(t float64) Config {
	c.Threshold = t
	return c
}

// Validate checks the threshold. NaN and infinities are rejected along with
// zero and negatives.
func (c Config) Validate() error {
	if !(c.Threshold > 0) || math.IsInf(c.Threshold, 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidThreshold, c.Threshold)
	}
	return nil
}
