package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RatingRefresher recomputes the aggregate rating of every hotel.
type RatingRefresher interface {
	RecomputeHotelRatings(ctx context.Context) (int64, error)
}

// RatingScheduler keeps hotels.rating in line with the reviews table.
// OnChange, when set, runs after a pass that changed at least one hotel.
type RatingScheduler struct {
	Spec     string
	Repo     RatingRefresher
	Log      *slog.Logger
	OnChange func(ctx context.Context)
}

// Start runs one pass immediately, schedules the rest on Spec and stops
// the cron when ctx is done.
func (s *RatingScheduler) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(s.Spec, func() { s.RunOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("schedule rating refresh %q: %w", s.Spec, err)
	}
	s.RunOnce(ctx)
	c.Start()
	s.Log.Info("rating scheduler started", "spec", s.Spec)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		s.Log.Info("rating scheduler stopped")
	}()
	return c, nil
}

// RunOnce performs a single recomputation.
func (s *RatingScheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	n, err := s.Repo.RecomputeHotelRatings(ctx)
	if err != nil {
		s.Log.Error("rating refresh failed", "error", err)
		return
	}
	s.Log.Info("rating refresh done", "hotels_changed", n)
	if n > 0 && s.OnChange != nil {
		s.OnChange(ctx)
	}
}
