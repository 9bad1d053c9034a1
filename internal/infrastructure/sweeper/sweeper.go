// Package sweeper expires overdue balance reservations in the
// background so abandoned holds return to the available balance.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// ReservationSweeper is the subset of the balance service the worker
// drives.
type ReservationSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Sweeper periodically releases expired reservations.
type Sweeper struct {
	balance  ReservationSweeper
	logger   *slog.Logger
	interval time.Duration
}

// Config for Sweeper.
type Config struct {
	Balance  ReservationSweeper
	Logger   *slog.Logger
	Interval time.Duration
}

// New creates a new Sweeper.
func New(cfg Config) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Sweeper{
		balance:  cfg.Balance,
		logger:   cfg.Logger,
		interval: cfg.Interval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.logger.Info("reservation sweeper started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil {
		s.logger.Error("error sweeping reservations on start", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reservation sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("error sweeping reservations", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep runs one pass over expired reservations.
func (s *Sweeper) Sweep(ctx context.Context) error {
	swept, err := s.balance.SweepExpired(ctx, time.Now().UTC())
	if swept > 0 {
		s.logger.Info("expired reservations released", slog.Int("count", swept))
	}
	return err
}
