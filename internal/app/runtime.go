package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/five82/hireboard/internal/api"
	"github.com/five82/hireboard/internal/config"
	"github.com/five82/hireboard/internal/engine"
	"github.com/five82/hireboard/internal/journal"
	"github.com/five82/hireboard/internal/reconcile"
	"github.com/five82/hireboard/internal/state"
	"github.com/five82/hireboard/internal/store"
)

// Options configure the hireboard application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses prefs_path from the config

	// LogOutput overrides the configured log file. The CLI subcommands pass
	// stderr; the board leaves it nil so logs stay out of the terminal.
	LogOutput io.Writer

	// StoreConfig overrides the badger settings derived from store_path.
	StoreConfig *store.Config
}

// Runtime holds every long-lived component, wired together.
type Runtime struct {
	Config     config.Config
	Log        *logrus.Logger
	Registry   *prometheus.Registry
	DB         *store.DB
	State      *state.Store
	Journal    *journal.Journal
	Client     *api.Client
	Engine     *engine.Engine
	Reconciler *reconcile.Service

	closers []func() error
}

// Bootstrap loads configuration and builds the runtime. Nothing touches the
// network until a caller asks for it.
func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PrefsPath != "" {
		cfg.PrefsPath = opts.PrefsPath
	}

	log, closeLog, err := NewLogger(cfg, opts.LogOutput)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Log: log}
	rt.closers = append(rt.closers, closeLog)

	rt.Registry = prometheus.NewRegistry()
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	storeCfg := store.DefaultConfig(cfg.StorePath)
	if opts.StoreConfig != nil {
		storeCfg = *opts.StoreConfig
	}
	storeCfg.Logger = log.WithField("component", "store")
	rt.DB, err = store.Open(storeCfg)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("open local store: %w", err)
	}
	rt.closers = append(rt.closers, rt.DB.Close)

	rt.Client, err = api.NewClient(APIOptions(cfg, rt.Registry, log))
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	rt.State = state.New()
	rt.Journal = journal.New()

	rt.Engine, err = engine.New(engine.Options{
		State:   rt.State,
		Journal: rt.Journal,
		Remote:  rt.Client,
		Logger:  log,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Reconciler, err = reconcile.New(reconcile.Options{
		DB:           rt.DB,
		State:        rt.State,
		Journal:      rt.Journal,
		Source:       rt.Client,
		Seeder:       reconcile.RemoteSeeder{Source: rt.Client},
		Logger:       log,
		ReseedWindow: cfg.ReseedWindow,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"api_url": cfg.APIURL,
		"store":   storeCfg.Path,
	}).Info("hireboard runtime ready")
	return rt, nil
}

// Start loads the local store and then tries one sync. Neither failure is
// fatal: the board can run from the local copy and the watcher resyncs when
// the service is reachable.
func (r *Runtime) Start(ctx context.Context) {
	res, err := r.Reconciler.LoadFromStore(ctx)
	if err != nil {
		r.Log.WithError(err).Warn("initial load from local store failed")
	} else {
		r.Log.WithFields(logrus.Fields{
			"jobs":     len(res.Collections.Jobs),
			"reseeded": res.Reseeded,
			"valid":    res.Valid,
		}).Info("loaded local store")
	}
	if err := r.Reconciler.SyncWithAPI(ctx); err != nil {
		r.Log.WithError(err).Warn("initial sync failed")
	}
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// APIOptions maps configuration onto the network client.
func APIOptions(cfg config.Config, reg prometheus.Registerer, log logrus.FieldLogger) api.Options {
	opts := api.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Retry: &api.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.BaseDelay,
			MaxDelay:   cfg.MaxDelay,
		},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Registerer:        reg,
		Logger:            log,
	}
	if cfg.CircuitBreaker {
		opts.Breaker = &api.BreakerSettings{
			FailureThreshold: cfg.FailureThreshold,
			RecoveryTimeout:  cfg.RecoveryTimeout,
		}
	}
	return opts
}
