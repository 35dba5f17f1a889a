package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the optional circuit breaker.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive retryable failures that
	// opens the circuit.
	FailureThreshold uint32

	// RecoveryTimeout is how long the circuit stays open before a probe.
	RecoveryTimeout time.Duration
}

// DefaultBreakerSettings returns 5 failures / 60s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{FailureThreshold: 5, RecoveryTimeout: 60 * time.Second}
}

// BreakerStatus describes the breaker for display.
type BreakerStatus struct {
	Enabled             bool
	State               string
	ConsecutiveFailures uint32
}

type breaker struct {
	cb *gobreaker.CircuitBreaker
}

func newBreaker(name string, s BreakerSettings, log logrus.FieldLogger, m *metrics) *breaker {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = DefaultBreakerSettings().FailureThreshold
	}
	if s.RecoveryTimeout <= 0 {
		s.RecoveryTimeout = DefaultBreakerSettings().RecoveryTimeout
	}
	threshold := s.FailureThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A terminal 4xx or a caller abort says nothing about the service's health.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
			m.breakerState(to)
		},
	})
	return &breaker{cb: cb}
}

func (b *breaker) execute(fn func() error) error {
	if b == nil {
		return fn()
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, b.cb.Name())
	}
	return err
}

func (b *breaker) status() BreakerStatus {
	if b == nil {
		return BreakerStatus{State: "disabled"}
	}
	return BreakerStatus{
		Enabled:             true,
		State:               b.cb.State().String(),
		ConsecutiveFailures: b.cb.Counts().ConsecutiveFailures,
	}
}
