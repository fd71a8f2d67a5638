package reactive

import "sync/atomic"

// Config holds process-wide settings for the reactive core.
type Config struct {
	// MaxNotifyRounds bounds how many notification rounds a single dispatch
	// may drain before it panics with E203. A round is one published
	// generation delivered to every live subscriber; callbacks that write
	// back into their own cell add rounds. Zero means unbounded.
	MaxNotifyRounds int
}

// DefaultConfig returns the default configuration: no notification bound.
func DefaultConfig() Config {
	return Config{}
}

var currentConfig atomic.Pointer[Config]

func init() {
	cfg := DefaultConfig()
	currentConfig.Store(&cfg)
}

// SetConfig replaces the process-wide configuration. It applies to
// dispatches that start after the call.
func SetConfig(cfg Config) {
	if cfg.MaxNotifyRounds < 0 {
		cfg.MaxNotifyRounds = 0
	}
	currentConfig.Store(&cfg)
}

// CurrentConfig returns the active configuration.
func CurrentConfig() Config {
	return *currentConfig.Load()
}
