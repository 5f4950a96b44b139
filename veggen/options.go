package veggen

import (
	"log/slog"
	"math/rand"
)

type options struct {
	rng         *rand.Rand
	log         *slog.Logger
	tracker     *Tracker
	progressBar bool
}

type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithRand injects the random source. Tests pass a seeded source to make a
// run reproducible; by default every run is seeded from the clock.
func WithRand(rng *rand.Rand) Option {
	return optionFunc(func(o *options) { o.rng = rng })
}

func WithLogger(log *slog.Logger) Option {
	return optionFunc(func(o *options) { o.log = log })
}

// WithTracker attaches an externally owned progress tracker, letting the
// caller read snapshots or receive push notifications while the batch runs.
func WithTracker(t *Tracker) Option {
	return optionFunc(func(o *options) { o.tracker = t })
}

// WithProgressBar renders a terminal progress bar over the batch rows.
func WithProgressBar(enabled bool) Option {
	return optionFunc(func(o *options) { o.progressBar = enabled })
}
