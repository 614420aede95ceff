package worker

import (
	"context"
	"errors"
	"time"

	"github.com/chestno/chestno-api/internal/config"
	"github.com/chestno/chestno-api/internal/logger"
	"github.com/chestno/chestno-api/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	sessionPurgeInterval       = time.Hour
	subscriptionExpireInterval = time.Hour
	trustRefreshInterval       = 6 * time.Hour
	defaultAnomalySweepEvery   = 15 * time.Minute
)

// Service runs the asynq consumer plus the periodic maintenance loops.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer and the maintenance tickers.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil {
		go s.runAnomalySweepLoop(ctx)
		go s.runSessionPurgeLoop(ctx)
		go s.runSubscriptionExpireLoop(ctx)
		go s.runTrustRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runAnomalySweepLoop(ctx context.Context) {
	if s.consumer.AnomalyService == nil {
		return
	}
	interval := defaultAnomalySweepEvery
	if s.consumer.Config != nil && s.consumer.Config.Anomaly.SweepIntervalMinutes > 0 {
		interval = time.Duration(s.consumer.Config.Anomaly.SweepIntervalMinutes) * time.Minute
	}
	runEvery(ctx, interval, func() {
		if err := s.consumer.AnomalyService.Sweep(); err != nil {
			logger.Warnw("worker_anomaly_sweep_failed", "error", err)
		}
	})
}

func (s *Service) runSessionPurgeLoop(ctx context.Context) {
	if s.consumer.UserAuthService == nil {
		return
	}
	runEvery(ctx, sessionPurgeInterval, func() {
		purged, err := s.consumer.UserAuthService.PurgeExpiredSessions()
		if err != nil {
			logger.Warnw("worker_session_purge_failed", "error", err)
			return
		}
		if purged > 0 {
			logger.Debugw("worker_session_purge", "purged", purged)
		}
	})
}

func (s *Service) runSubscriptionExpireLoop(ctx context.Context) {
	if s.consumer.SubscriptionService == nil {
		return
	}
	runEvery(ctx, subscriptionExpireInterval, func() {
		expired, err := s.consumer.SubscriptionService.ExpireOverdue()
		if err != nil {
			logger.Warnw("worker_subscription_expire_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_subscriptions_expired", "count", expired)
		}
	})
}

// runTrustRefreshLoop recomputes every organization's score on a slow
// cadence, catching drift that event-driven recomputes missed.
func (s *Service) runTrustRefreshLoop(ctx context.Context) {
	if s.consumer.TrustService == nil || s.consumer.OrgRepo == nil {
		return
	}
	runEvery(ctx, trustRefreshInterval, func() {
		ids, err := s.consumer.OrgRepo.ListIDs()
		if err != nil {
			logger.Warnw("worker_trust_refresh_list_failed", "error", err)
			return
		}
		for _, id := range ids {
			if _, _, err := s.consumer.TrustService.Recompute(id); err != nil {
				logger.Warnw("worker_trust_refresh_failed", "org_id", id, "error", err)
			}
		}
	})
}

func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	fn()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
