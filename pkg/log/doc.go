/*
Package log provides structured logging for Bastion using zerolog.

The log package wraps the zerolog library to provide JSON-structured
logging with component-specific loggers, configurable log levels, and
helper functions for common logging patterns. All logs include timestamps
and support filtering by severity level.

Decision handlers log only at debug level: the engine's contract is that
diagnostics flow through the debug channel and nothing is persisted on
its behalf.

# Configuration

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

Console output (human-readable, RFC3339 timestamps) is the default;
JSONOutput switches to newline-delimited JSON for collectors.

# Component Loggers

Child loggers carry stable fields so downstream filtering works without
message parsing:

	logger := log.WithComponent("enforcer")
	logger.Debug().
		Str("hook", "mount").
		Int32("pid", pid).
		Str("verdict", v.String()).
		Msg("Decision")

WithHook, WithContainerID, and WithPID exist for the same purpose on the
engine's hot paths.

# Best Practices

 1. Initialize once in main before any component starts
 2. Create component loggers at construction, not per event
 3. Keep per-decision logging at debug level; the hot path must stay
    cheap when debug is off
*/
package log
