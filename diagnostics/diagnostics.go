// Package diagnostics starts the gops agent and pprof endpoints when built with the gops tag
package diagnostics
