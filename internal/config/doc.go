// Package config loads hireboard's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided (the --config flag), use it
//  2. Otherwise, use ~/.config/hireboard/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but keys are missing or empty, keep the defaults
//
// Present values are validated. An unparseable duration, an unknown log
// level or an out-of-range number fails Load with an error naming the TOML
// key, so a typo is never silently replaced by a default.
//
// # Keys
//
//	api_url             = "http://127.0.0.1:8080"
//	request_timeout     = "30s"    # per attempt
//	max_retries         = 3
//	base_delay          = "1s"
//	max_delay           = "10s"
//	circuit_breaker     = true
//	failure_threshold   = 5
//	recovery_timeout    = "60s"
//	requests_per_second = 20.0     # 0 disables client-side throttling
//	store_path          = "~/.local/share/hireboard/db"
//	prefs_path          = "~/.config/hireboard/prefs.toml"
//	reseed_window       = "5m"
//	poll_interval       = "5s"
//	log_level           = "info"   # any logrus level
//	log_format          = "text"   # text or json
//	log_file            = ""       # empty: ~/.local/share/hireboard/hireboard.log
//	metrics_addr        = ""       # empty: no /metrics listener
//
// Durations use time.ParseDuration syntax. Paths get tilde expansion and are
// made absolute.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//	logPath := cfg.LogPath()
package config
