package app

import (
	"context"
	"fmt"

	"github.com/five82/hireboard/internal/prefs"
	"github.com/five82/hireboard/internal/ui"
)

// Run boots the hireboard TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	rt, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := rt.Config.MetricsAddr; addr != "" {
		go func() {
			if err := ServeMetrics(ctx, addr, rt.Registry, rt.Log); err != nil {
				rt.Log.WithError(err).Warn("metrics listener stopped")
			}
		}()
	}

	userPrefs, err := prefs.Load(rt.Config.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	// Populate the store before the UI starts; the watcher takes over
	// afterwards.
	rt.Start(ctx)
	StartWatcher(ctx, rt.State, rt.Client, rt.Reconciler, rt.Config.PollInterval, rt.Log)

	return ui.Run(ui.Options{
		Context:    ctx,
		Engine:     rt.Engine,
		Reconciler: rt.Reconciler,
		Store:      rt.State,
		Breaker:    rt.Client.Breaker,
		Prefs:      userPrefs,
		PrefsPath:  rt.Config.PrefsPath,
		LogPath:    rt.Config.LogPath(),
	})
}

// Watch runs without the board: it keeps the local store in sync through the
// connectivity watcher and serves metrics on addr until ctx ends.
func Watch(ctx context.Context, opts Options, addr string) error {
	rt, err := Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if addr == "" {
		addr = rt.Config.MetricsAddr
	}
	if addr == "" {
		return fmt.Errorf("no metrics address: set metrics_addr or pass --addr")
	}

	rt.Start(ctx)
	StartWatcher(ctx, rt.State, rt.Client, rt.Reconciler, rt.Config.PollInterval, rt.Log)
	return ServeMetrics(ctx, addr, rt.Registry, rt.Log)
}
