package poisson

import "fmt"

const (
	// DefaultMaxSeedAttempts caps the random draws used to place the first
	// point of a polygon.
	DefaultMaxSeedAttempts = 100
	// DefaultMaxAttemptsPerPoint caps the candidates generated around one
	// active point before it is retired.
	DefaultMaxAttemptsPerPoint = 30
)

// Config holds the sampling parameters for one polygon pass.
type Config struct {
	// MinDistance is the minimum Euclidean distance between any two accepted
	// points. Must be positive.
	MinDistance float64
	// MaxSeedAttempts and MaxAttemptsPerPoint default to
	// DefaultMaxSeedAttempts and DefaultMaxAttemptsPerPoint when zero.
	MaxSeedAttempts     int
	MaxAttemptsPerPoint int
}

func (c Config) withDefaults() Config {
	if c.MaxSeedAttempts <= 0 {
		c.MaxSeedAttempts = DefaultMaxSeedAttempts
	}
	if c.MaxAttemptsPerPoint <= 0 {
		c.MaxAttemptsPerPoint = DefaultMaxAttemptsPerPoint
	}
	return c
}

// Validate rejects out-of-range parameters. This is a precondition of
// sampling, checked once before a batch starts, not a per-polygon error.
func (c Config) Validate() error {
	if c.MinDistance <= 0 {
		return fmt.Errorf("min distance must be positive, got %v", c.MinDistance)
	}
	return nil
}
