package idempotency

import (
	"sync"
	"time"

	"spendlog/internal/log"
)

// Sweeper reclaims expired entries with a single periodic pass over the
// store. One goroutine covers every entry regardless of volume.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *log.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSweeper creates a sweeper for the given store.
func NewSweeper(store Store, interval time.Duration, logger *log.Logger) *Sweeper {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentIdempotency)
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	go s.run()
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.store.CleanExpired(); cleaned > 0 {
				s.logger.Debug("Swept expired idempotency entries",
					"removed", cleaned,
					"remaining", s.store.Size())
			}
		case <-s.stop:
			return
		}
	}
}

// Stop halts the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}
