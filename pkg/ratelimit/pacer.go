// Package ratelimit implements the courtesy pacing the MPDS platform
// asks of API consumers: a fixed pause after every page request. The
// server is shared; values below two seconds risk overloading it.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	pausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpds_pacer_pauses_total",
		Help: "Total number of courtesy pauses between page requests",
	})

	pausedSecondsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mpds_pacer_paused_seconds_total",
		Help: "Total time spent in courtesy pauses",
	})
)

const (
	// DefaultDelay is the pause applied after every page request.
	DefaultDelay = 2 * time.Second

	// MinRecommendedDelay is the smallest pause the platform asks for.
	// Smaller values are honored but logged as a warning.
	MinRecommendedDelay = 2 * time.Second
)

// Pacer serializes page requests by pausing a fixed duration after
// each one, including the last page of a batch.
type Pacer struct {
	delay  time.Duration
	logger zerolog.Logger
}

// NewPacer creates a pacer with the given delay. A non-positive delay
// disables pausing (useful for tests against local mock servers).
func NewPacer(delay time.Duration, logger zerolog.Logger) *Pacer {
	if delay > 0 && delay < MinRecommendedDelay {
		logger.Warn().
			Dur("delay", delay).
			Dur("min_recommended", MinRecommendedDelay).
			Msg("Inter-request delay below recommended minimum")
	}

	return &Pacer{
		delay:  delay,
		logger: logger,
	}
}

// Delay returns the configured pause duration.
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Pause blocks for the configured delay. It returns early with the
// context error when ctx is cancelled mid-pause.
func (p *Pacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	pausesTotal.Inc()
	pausedSecondsTotal.Add(p.delay.Seconds())

	select {
	case <-ctx.Done():
		p.logger.Warn().
			Dur("delay", p.delay).
			Msg("Context cancelled during courtesy pause")
		return ctx.Err()
	case <-time.After(p.delay):
		return nil
	}
}
