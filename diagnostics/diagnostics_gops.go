//go:build gops
// +build gops

package diagnostics

import (
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"strconv"

	"github.com/google/gops/agent"
)

func init() {
	l := slog.Default().With("context", "diagnostics")

	if err := agent.Listen(agent.Options{}); err != nil {
		l.Error("failed to start gops agent", "error", err)
		os.Exit(1)
	}

	pprofRequired := false

	if vals := os.Getenv("BLOCK_PROFILE_RATE"); vals != "" {
		val, err := strconv.Atoi(vals)

		if err != nil {
			l.Error(fmt.Sprintf("invalid value for block profile rate: %s", vals))
			os.Exit(1)
		}

		runtime.SetBlockProfileRate(val)
		pprofRequired = true
		fmt.Println("[PPROF] Block profiling enabled")
	}

	if vals := os.Getenv("MUTEX_PROFILE_FRACTION"); vals != "" {
		val, err := strconv.Atoi(vals)

		if err != nil {
			l.Error(fmt.Sprintf("invalid value for mutex profile fraction: %s", vals))
			os.Exit(1)
		}

		runtime.SetMutexProfileFraction(val)
		pprofRequired = true
		fmt.Println("[PPROF] Mutex profiling enabled")
	}

	pprofAddr := os.Getenv("PPROF_ADDR")
	if pprofAddr == "" {
		pprofAddr = "localhost:6060"
	}

	// Run pprof web server as well to be able to capture blocks and mutex profiles
	// (not supported by gops)
	if pprofRequired {
		go func() { _ = http.ListenAndServe(pprofAddr, nil) }()
	}
}
