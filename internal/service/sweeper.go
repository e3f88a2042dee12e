package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cipherdrop/relay-service/internal/memstore"
)

// Sweeper reclaims expired messages on a fixed interval so rooms nobody
// reads still get swept. Sweeps are idempotent; a delayed cycle only delays
// reclamation.
type Sweeper struct {
	messages *memstore.MessageRepository
	interval time.Duration
}

func NewSweeper(messages *memstore.MessageRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{messages: messages, interval: interval}
}

// Run blocks until ctx is cancelled. Callers start it in its own goroutine
// and cancel on shutdown.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.messages.SweepAll(); n > 0 {
				slog.Debug("sweep reclaimed expired messages", "count", n)
			}
		}
	}
}
