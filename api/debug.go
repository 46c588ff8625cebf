// Package api
// Author: momentics
//
// Introspection hook for long-running multiplexer loops.

package api

// Debug collects named probes evaluated on demand.
type Debug interface {
	// DumpState evaluates every probe.
	DumpState() map[string]any

	// RegisterProbe adds or replaces a probe.
	RegisterProbe(name string, fn func() any)
}
