package clock

import (
	"context"
	"time"

	"art-auction/utils"
)

// Registry is the slice of the auction registry the sweeper drives
type Registry interface {
	SweepDue(now time.Time) (int, error)
}

// Sweeper periodically asks the registry to transition auctions whose time
// thresholds have passed. Correctness never depends on its timing: the bid
// path performs the same lazy status check on every submission.
type Sweeper struct {
	registry Registry
	interval time.Duration
	nowFn    func() time.Time
}

// NewSweeper creates a sweeper that runs once per interval
func NewSweeper(registry Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		nowFn:    time.Now,
	}
}

// Run sweeps until ctx is cancelled. A sweep already in flight finishes its
// per-auction atomic transitions before Run returns, so cancellation never
// leaves an auction partially transitioned. Transient failures are logged
// and retried on the next tick, never surfaced to bidders.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	utils.Info("auction clock started", map[string]any{"interval": s.interval.String()})

	for {
		select {
		case <-ctx.Done():
			utils.Info("auction clock stopped", nil)
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// SweepOnce runs a single sweep immediately; used at startup and in tests
func (s *Sweeper) SweepOnce() {
	s.sweep()
}

func (s *Sweeper) sweep() {
	closed, err := s.registry.SweepDue(s.nowFn())
	if err != nil {
		utils.Error("sweep failed, will retry next tick", map[string]any{"error": err.Error()})
		return
	}
	if closed > 0 {
		utils.Info("sweep closed auctions", map[string]any{"count": closed})
	}
}
