package counter

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/logging"
)

// BreakerSettings controls when a failing durable store is skipped.
type BreakerSettings struct {
	// Failures is the number of consecutive errors that opens the breaker.
	// Zero disables it.
	Failures uint32
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration
}

// Fallback runs each operation against the durable store and reruns it
// against local memory when that fails. Results from the two are never
// merged: whichever store served the operation owns its effect.
type Fallback struct {
	primary Store
	local   Store
	breaker *gobreaker.CircuitBreaker[struct{}]
	metrics *Metrics
}

// NewFallback wraps primary with local as the fallback. A nil primary means
// no durable store is configured and everything is served from local.
func NewFallback(primary, local Store, bs BreakerSettings, m *Metrics) *Fallback {
	f := &Fallback{
		primary: primary,
		local:   local,
		metrics: m,
	}
	if primary != nil && bs.Failures > 0 {
		f.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        primary.Name(),
			MaxRequests: 1,
			Timeout:     bs.Cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= bs.Failures
			},
			// A caller hanging up says nothing about the store's health.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Warn("Counter store breaker state changed",
					zap.String("store", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return f
}

// Name reports the durable store name, or the local one when none is set.
func (f *Fallback) Name() string {
	if f.primary == nil {
		return f.local.Name()
	}
	return f.primary.Name()
}

// Run executes fn against the durable store, then against local memory if
// that returned an error. Once ctx is done the primary's error is returned
// as is: the caller is gone and nothing should land in memory for it.
func (f *Fallback) Run(ctx context.Context, op string, fn func(Store) error) error {
	if f.primary != nil {
		err := f.runPrimary(fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		logging.Warn("Counter store unavailable, using in-memory fallback",
			zap.String("op", op),
			zap.String("store", f.primary.Name()),
			zap.Error(err),
		)
		f.metrics.fallback(op, f.primary.Name())
	}
	return fn(f.local)
}

func (f *Fallback) runPrimary(fn func(Store) error) error {
	if f.breaker == nil {
		return fn(f.primary)
	}
	_, err := f.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn(f.primary)
	})
	return err
}
