package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vostra/vostra-backend/config"
	"github.com/vostra/vostra-backend/internal/app/repository"
	"github.com/vostra/vostra-backend/pkg/logger"
	"github.com/vostra/vostra-backend/pkg/redis"
)

// CartCleanupScheduler reaps anonymous carts whose session went idle past the
// configured window. Account carts are never touched. Deleting a cart never
// touches the stock ledger because carting does not reserve stock.
type CartCleanupScheduler struct {
	cron     *cron.Cron
	cartRepo repository.CartRepository
	cfg      config.CleanupConfig
}

func NewCartCleanupScheduler(cartRepo repository.CartRepository, cfg config.CleanupConfig) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:     cron.New(),
		cartRepo: cartRepo,
		cfg:      cfg,
	}
}

func (s *CartCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSpec, func() {
		s.RunOnce()
	})
	if err != nil {
		logger.Error("Failed to schedule cart cleanup job", err, map[string]interface{}{
			"cron_spec": s.cfg.CronSpec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"cron_spec": s.cfg.CronSpec,
		"max_idle":  s.cfg.MaxIdle.String(),
	})
	return nil
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler", nil)
	s.cron.Stop()
}

// RunOnce performs a single cleanup sweep.
func (s *CartCleanupScheduler) RunOnce() {
	cutoff := time.Now().Add(-s.cfg.MaxIdle)
	logger.Info("Starting anonymous cart cleanup", map[string]interface{}{
		"cutoff": cutoff.Format(time.RFC3339),
	})

	carts, err := s.cartRepo.FindStaleAnonymous(cutoff)
	if err != nil {
		logger.Error("Failed to find stale anonymous carts", err, nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed := 0
	for _, cart := range carts {
		if cart.SessionToken != nil {
			// A token still registered in Redis means the shopper is active
			// even if the cart rows look idle.
			alive, err := redis.SessionAlive(ctx, *cart.SessionToken)
			if err == nil && alive {
				continue
			}
		}

		if err := s.cartRepo.Delete(cart.ID); err != nil {
			logger.Error("Failed to delete stale cart", err, map[string]interface{}{
				"cart_id": cart.ID,
			})
			continue
		}
		removed++
	}

	logger.Info("Anonymous cart cleanup finished", map[string]interface{}{
		"candidates": len(carts),
		"removed":    removed,
	})
}
