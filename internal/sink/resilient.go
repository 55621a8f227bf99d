package sink

import (
	"context"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/internal/resilience"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

// ResilientSink wraps another sink with retries and a circuit breaker on the
// write path. Control reads pass through; a broken store should surface
// immediately to the tick loop rather than burn retry budget every tick.
type ResilientSink struct {
	sink           Sink
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientSinkConfig struct {
	Sink          Sink
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientSink(cfg ResilientSinkConfig) *ResilientSink {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "sink",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientSink{
		sink:           cfg.Sink,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (s *ResilientSink) PushLatest(ctx context.Context, batch []models.OutputRecord) error {
	return s.execute(ctx, "push latest", func() error {
		return s.sink.PushLatest(ctx, batch)
	})
}

func (s *ResilientSink) AppendSnapshot(ctx context.Context, batch []models.OutputRecord) error {
	return s.execute(ctx, "append snapshot", func() error {
		return s.sink.AppendSnapshot(ctx, batch)
	})
}

func (s *ResilientSink) execute(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	return s.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= s.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := fn(); err == nil {
				return nil
			} else {
				lastErr = err
			}

			logger.Warnf("Sink %s attempt %d/%d failed: %v", op, attempt, s.retryAttempts, lastErr)

			if attempt < s.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(s.retryDelay):
				}
			}
		}
		return lastErr
	})
}

func (s *ResilientSink) RunFlag(ctx context.Context) (bool, error) {
	return s.sink.RunFlag(ctx)
}

func (s *ResilientSink) SetRunFlag(ctx context.Context, running bool) error {
	return s.sink.SetRunFlag(ctx, running)
}

func (s *ResilientSink) LastActivity(ctx context.Context) (time.Time, error) {
	return s.sink.LastActivity(ctx)
}

func (s *ResilientSink) TouchActivity(ctx context.Context) error {
	return s.sink.TouchActivity(ctx)
}

func (s *ResilientSink) HealthCheck(ctx context.Context) error {
	return s.sink.HealthCheck(ctx)
}

func (s *ResilientSink) Close() error {
	return s.sink.Close()
}

func (s *ResilientSink) CircuitState() resilience.State {
	return s.circuitBreaker.State()
}

func (s *ResilientSink) ResetCircuit() {
	s.circuitBreaker.Reset()
}
