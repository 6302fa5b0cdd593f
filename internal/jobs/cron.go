package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/repo"
)

type cleaner interface{ CleanupFinished(ctx context.Context) error }

// cleanupLockKey serializes retention cleanup across replicas.
const cleanupLockKey int64 = 732101

type Cron struct {
	cfg  config.Config
	log  zerolog.Logger
	svc  cleaner
	repo *repo.Repository
	c    *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc cleaner, r *repo.Repository) *Cron {
	c := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, repo: r, c: c}
	_, _ = c.AddFunc(cfg.CleanupCron, cr.cleanup)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute); defer cancel()
	ok, err := cr.repo.TryAdvisoryLock(ctx, cleanupLockKey)
	if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
	if !ok { cr.log.Info().Msg("cron: cleanup already running elsewhere"); return }
	defer func() { _ = cr.repo.AdvisoryUnlock(context.Background(), cleanupLockKey) }()
	cr.log.Info().Msg("cron: retention cleanup")
	if err := cr.svc.CleanupFinished(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: cleanup failed") }
}
