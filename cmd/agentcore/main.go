// Command agentcore is a thin CLI wrapper around the routing core: run
// a request, explain routing for a (tool, session), view a session
// timeline, validate configuration. None of the routing/failover/retry
// logic lives here — it belongs to internal/router, internal/breaker,
// internal/policy, and internal/output.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
