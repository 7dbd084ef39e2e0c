// Package config defines the configuration structure for campi.
//
// Configuration is organized into logical sections and uses code generation
// via optgen to create functional option helpers. Defaults come from the
// `default` struct tags and are applied with creasty/defaults.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - line protocol listener
//	├── Pool           - connection worker pool
//	├── Capture        - camera device
//	├── Admin          - admin HTTP API
//	├── Auth           - admin API authentication
//	├── Store          - access log storage (DuckDB)
//	├── Events         - NATS event feed
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Server Configuration
//
//	┌──────────────────┬─────────────────┬────────────────────────────────────┐
//	│ Field            │ Default         │ Description                        │
//	├──────────────────┼─────────────────┼────────────────────────────────────┤
//	│ Address          │ "0.0.0.0:49000" │ Listen address                     │
//	│ StaticsFolder    │ ""              │ Folder holding index.html/404.html │
//	│ ReadTimeout      │ 10s             │ Deadline to read the request line  │
//	│ WriteTimeout     │ 30s             │ Deadline to write the response     │
//	└──────────────────┴─────────────────┴────────────────────────────────────┘
//
// An empty StaticsFolder serves the pages embedded in the binary.
//
// # Pool Configuration
//
//	┌────────────┬─────────┬──────────────────────────────────────────┐
//	│ Field      │ Default │ Description                              │
//	├────────────┼─────────┼──────────────────────────────────────────┤
//	│ NumWorkers │ 4       │ Workers handling accepted connections    │
//	└────────────┴─────────┴──────────────────────────────────────────┘
//
// # Capture Configuration
//
//	┌─────────┬────────────────┬──────────────────────────────────────────┐
//	│ Field   │ Default        │ Description                              │
//	├─────────┼────────────────┼──────────────────────────────────────────┤
//	│ Device  │ "pattern"      │ "pattern" (synthetic) or "command"       │
//	│ Command │ "rpicam-still" │ Still capture binary for "command"       │
//	│ Width   │ 640            │ Frame width                              │
//	│ Height  │ 480            │ Frame height                             │
//	│ Timeout │ 5s             │ Bounded wait for one frame               │
//	│ Retries │ 2              │ Retries after a failed capture           │
//	└─────────┴────────────────┴──────────────────────────────────────────┘
//
// # Admin Configuration
//
//	┌─────────┬──────────────────┬────────────────────────────────────────┐
//	│ Field   │ Default          │ Description                            │
//	├─────────┼──────────────────┼────────────────────────────────────────┤
//	│ Enabled │ true             │ Serve the admin API                    │
//	│ Mode    │ "dev"            │ Gin mode: "prod" or "dev"              │
//	│ Address │ "127.0.0.1:8000" │ Admin API listen address               │
//	└─────────┴──────────────────┴────────────────────────────────────────┘
//
// # Authentication Configuration
//
//	┌───────────┬─────────┬────────────────────────────────────────────┐
//	│ Field     │ Default │ Description                                │
//	├───────────┼─────────┼────────────────────────────────────────────┤
//	│ Enabled   │ false   │ Require a HS256 JWT on /api/v1             │
//	│ JWTSecret │ ""      │ HMAC secret used to verify tokens          │
//	└───────────┴─────────┴────────────────────────────────────────────┘
//
// The whole Auth section is tagged `debugmap:"hidden"` and never shows up
// in DebugMap output.
//
// # Code Generation
//
//	//go:generate go tool optgen -output zz_generated.configuration.go . Configuration
//
// Generated helpers include:
//
//   - NewConfigurationWithOptions(...ConfigurationOption) - Create with options
//   - NewConfigurationWithOptionsAndDefaults(...ConfigurationOption) - Create with defaults + options
//   - WithServer(Server), WithPool(Pool), etc. - Set nested structs
//   - DebugMap() - Returns map for debug logging (respects debugmap tags)
//
// # Usage Example
//
//	cfg := config.NewConfigurationWithOptionsAndDefaults(
//	    config.WithPool(config.Pool{NumWorkers: 8}),
//	    config.WithLogLevel("debug"),
//	)
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
