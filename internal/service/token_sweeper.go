package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenPurger deletes refresh tokens that can no longer be used.
type TokenPurger interface {
	DeleteExpired(ctx context.Context, keep time.Duration) (int64, error)
}

// TokenSweeper keeps refresh_tokens from growing without bound.  Rows are
// kept for Keep after expiry or revocation so recent sign-outs can still
// be audited.
type TokenSweeper struct {
	Spec string
	Keep time.Duration
	Repo TokenPurger
	Log  *slog.Logger
}

// Register adds the sweep to a running cron.
func (s *TokenSweeper) Register(ctx context.Context, c *cron.Cron) error {
	if _, err := c.AddFunc(s.Spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule token sweep %q: %w", s.Spec, err)
	}
	return nil
}

// RunOnce performs a single sweep.
func (s *TokenSweeper) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.Repo.DeleteExpired(ctx, s.Keep)
	if err != nil {
		s.Log.Error("token sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.Log.Info("token sweep done", "deleted", n)
	}
}
