package ai

import "sync/atomic"

// debugLoggingEnabled gates the engine's debug logs. Think paths check it
// before building log attributes.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging switches engine debug logging on or off.
// Set once at startup from the engine config.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether engine debug logging is on.
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("combat rethink", "unit", u.ID(), "decision", d)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
