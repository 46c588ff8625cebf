// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload, runtime metrics, debug probes and logger wiring
// shared by the reactor, resolver and example binaries.
//
// Provides concurrent-safe state handling primitives including:
//   - TOML configuration with immutable snapshots and reload listeners
//   - File watching that re-applies the configuration on write
//   - Counters and gauges exported as a snapshot map
//   - A package-level zap logger with a no-op default
package control
