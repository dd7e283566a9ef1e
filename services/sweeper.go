package services

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the sweeper scans for idle tickets.
const DefaultSweepInterval = 60 * time.Second

// Sweeper periodically closes idle tickets on its own goroutine.
type Sweeper struct {
	tickets  *TicketService
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(tickets *TicketService, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{tickets: tickets, interval: interval, logger: logger}
}

// Run sweeps once per interval until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("ticket sweeper started",
		"interval", w.interval.String(),
		"idle_timeout", w.tickets.IdleTimeout().String())
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("ticket sweeper stopped")
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single pass and logs its outcome.
func (w *Sweeper) SweepOnce(ctx context.Context) int {
	closed, err := w.tickets.SweepIdle(ctx)
	for _, id := range closed {
		w.logger.Info("ticket closed due to inactivity", "ticket_id", id)
	}
	if err != nil && ctx.Err() == nil {
		w.logger.Error("ticket sweep failed", "error", err, "closed", len(closed))
	}
	return len(closed)
}
