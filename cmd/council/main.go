package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/SSAM36/jhc-fnl/internal/council"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Council completed and every gate passed
	ExitGateFailed = 1 // Council completed but a quality gate failed
	ExitError      = 2 // Configuration or runtime error
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		// Check error type to determine exit code
		var gateErr *council.ConsensusThresholdError
		if errors.As(err, &gateErr) {
			os.Exit(ExitGateFailed)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
