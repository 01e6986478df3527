package scanner

import (
	"fmt"
	"sync"
	"time"
)

// progressTracker periodically rewrites a progress line on stdout while a
// scan runs. It is display only and never affects scan results.
type progressTracker struct {
	mu        sync.Mutex
	processed int
	errors    int
	total     int
	enabled   bool
	ticker    *time.Ticker
	done      chan bool
}

func newProgressTracker(total int, enabled bool) *progressTracker {
	tracker := &progressTracker{
		total:   total,
		enabled: enabled,
		ticker:  time.NewTicker(500 * time.Millisecond),
		done:    make(chan bool),
	}
	if enabled {
		go tracker.display()
	}
	return tracker
}

func (p *progressTracker) display() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Printf("\rProgress: %d/%d (errors: %d)", p.processed, p.total, p.errors)
			} else {
				fmt.Printf("\rProgress: %d/%d", p.processed, p.total)
			}
			p.mu.Unlock()
		}
	}
}

func (p *progressTracker) record(success bool) {
	p.mu.Lock()
	p.processed++
	if !success {
		p.errors++
	}
	p.mu.Unlock()
}

func (p *progressTracker) stop() {
	p.ticker.Stop()
	if p.enabled {
		p.done <- true
		fmt.Println()
	}
}
