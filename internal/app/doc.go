// Package app is the composition root for hireboard.
//
// # Overview
//
// Bootstrap loads the config, sets up the logrus logger and a prometheus
// registry, and opens the badger-backed local store. It then builds the
// shared components: the state container, the pending update journal, the
// network client, the mutation engine and the reconciliation service. The
// board and every CLI subcommand start from the same Runtime.
//
//	Bootstrap()
//	  ├─> config.Load()          ~/.config/hireboard/config.toml
//	  ├─> NewLogger()            log file (board) or stderr (CLI)
//	  ├─> store.Open()           badger directory at store_path
//	  ├─> api.NewClient()        retry, breaker, rate limit, metrics
//	  ├─> engine.New()           optimistic mutations
//	  └─> reconcile.New()        load, reseed, sync, persist
//
//	Run()
//	  ├─> Runtime.Start()        LoadFromStore, then one SyncWithAPI
//	  ├─> ServeMetrics()         when metrics_addr is set
//	  ├─> StartWatcher()         connectivity probe goroutine
//	  └─> ui.Run()               Bubble Tea board (blocks)
//
// Watch is Run without the board: it starts the watcher and blocks serving
// /metrics, which keeps the local store current on a machine nobody is
// looking at.
//
// # Connectivity Watcher
//
// The watcher pings the API every poll_interval. Failures are recorded in the
// state container; after two in a row the board shows offline and the probe
// interval doubles per failure up to 30 seconds. The first successful probe
// after an offline period triggers SyncWithAPI so the board picks up changes
// made while it could not reach the service.
//
// # Error Handling
//
// Configuration, store and client construction errors are fatal. The first
// load and sync are not: the board can run from the local copy and the
// watcher resyncs once the service answers.
package app
