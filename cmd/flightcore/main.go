// Command flightcore validates, compiles, inspects, and bench-runs flight
// plans for the decision core.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A .env next to the binary can hold bench defaults. Missing is fine.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	// Exit through atexit so registered flushers (the flight recorder) run.
	atexit.Exit(0)
}
