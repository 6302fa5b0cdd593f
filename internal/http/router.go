/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc analysisService) *gin.Engine {
	if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		c.Next()
		log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
	})
	if len(cfg.CORSOrigins) > 0 {
		cc := cors.DefaultConfig()
		cc.AllowOrigins = cfg.CORSOrigins
		r.Use(cors.New(cc))
	}

	h := NewHandlers(cfg, log, svc)

	r.GET("/healthz", h.Healthz)
	api := r.Group("/api/v1")
	api.POST("/analyses", h.StartAnalysis)
	api.GET("/analyses/:id", h.GetAnalysis)
	api.GET("/analyses/:id/report", h.GetReport)
	api.GET("/rules", h.GetRules)

	return r
}
