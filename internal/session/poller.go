package session

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval bounds how stale the status badge can get when no
// stream events arrive. Event-triggered refreshes (after connect,
// disconnect, and stream teardown) keep it tighter in practice.
const DefaultPollInterval = 30 * time.Second

// RunPoller drives periodic reconciliation until ctx is done. Transient
// fetch failures are logged and the loop continues.
func (c *Coordinator) RunPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.Printf("status poll: %v", err)
			}
		}
	}
}
