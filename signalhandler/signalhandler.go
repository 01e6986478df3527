package signalhandler

import (
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// SetupHandler installs a handler for SIGINT/SIGTERM so an interrupted scan
// exits cleanly.
func SetupHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM:
			os.Exit(0)
		}
	}()
}

// GetOptimalProcs returns the number of worker goroutines to use for image
// decoding and hashing. Saturating every core starves the walk and the
// progress display, so leave some headroom.
func GetOptimalProcs() int {
	numCPU := runtime.NumCPU()

	maxProcs := (numCPU * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}

	return maxProcs
}
