/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/adapters/azdo"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	ihttp "github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/http"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/jobs"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/logger"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/repo"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := repo.Migrate(cfg.DBDSN, log); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	db := repo.MustOpen(ctx, cfg, log)
	defer db.Close()
	repository := repo.NewRepository(db, log)

	rules := config.DefaultRules()
	if _, err := os.Stat(cfg.RulesFile); err == nil {
		r, err := config.LoadRules(cfg.RulesFile)
		if err != nil { log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("rules load failed") }
		rules = r
		log.Info().Str("file", cfg.RulesFile).Msg("process rules loaded")
	} else {
		log.Info().Str("file", cfg.RulesFile).Msg("rules file absent, using defaults")
	}

	client := azdo.NewClient(cfg, log)
	svc := service.New(cfg, log, repository, client, client, rules)

	if cfg.WatchRules {
		go func() {
			if err := config.WatchRules(ctx, cfg.RulesFile, log, svc.SetRules); err != nil {
				log.Error().Err(err).Msg("rules watch stopped")
			}
		}()
	}

	cron := jobs.NewCron(cfg, log, svc, repository)
	cron.Start()
	defer cron.Stop()

	router := ihttp.NewRouter(cfg, log, svc)
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()
	log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil { log.Error().Err(err).Msg("http server error") }
	}
}
