package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/hireboard/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// Prober checks that the service answers.
type Prober interface {
	Ping(ctx context.Context) error
}

// Syncer refreshes state from the service.
type Syncer interface {
	SyncWithAPI(ctx context.Context) error
}

// StartWatcher launches a background goroutine that probes the service at a
// fixed cadence, backing off while it is unreachable. When the service comes
// back after an offline period the state is resynced. It returns
// immediately.
func StartWatcher(ctx context.Context, store *state.Store, probe Prober, sync Syncer, interval time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "watcher")
	go func() {
		for {
			failures := check(ctx, store, probe, sync, interval, log)
			timer := time.NewTimer(calculateBackoff(failures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// check runs one probe and returns the consecutive failure count.
func check(ctx context.Context, store *state.Store, probe Prober, sync Syncer, timeout time.Duration, log logrus.FieldLogger) int {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	err := probe.Ping(probeCtx)
	cancel()
	if ctx.Err() != nil {
		return 0
	}

	reconnected := store.RecordProbe(err)
	if err != nil {
		log.WithError(err).Debug("probe failed")
		return store.Snapshot().ConsecutiveFailures
	}
	if reconnected {
		log.Info("api reachable again, resyncing")
		if err := sync.SyncWithAPI(ctx); err != nil {
			log.WithError(err).Warn("resync after reconnect failed")
		}
	}
	return 0
}

// calculateBackoff doubles base per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
