package matching

import (
	"context"
	"log"
	"time"
)

// Scheduler runs the periodic expiry sweep. It holds the only
// background goroutine the engine owns.
type Scheduler struct {
	service  Service
	interval time.Duration
}

func NewScheduler(service Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	return &Scheduler{
		service:  service,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.runSweep(ctx)
}

func (s *Scheduler) runSweep(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired, err := s.service.ExpireDue(ctx)
			if err != nil {
				log.Printf("matching: expiry sweep failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("matching: expired %d stale match requests", expired)
			}
		case <-ctx.Done():
			return
		}
	}
}
