/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/config"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/repo"
	"github.com/ArakelyanK/dev-insights-dashboard-sub001/internal/service"
)

type analysisService interface {
	Submit(ctx context.Context, p service.RunParams) (uuid.UUID, error)
	Run(ctx context.Context, jobID uuid.UUID, p service.RunParams)
	Job(ctx context.Context, id uuid.UUID) (*repo.Job, error)
	Report(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
	Rules() config.Rules
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc analysisService
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc analysisService) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StartAnalysis queues a run and detaches it from the request context so a
// closed connection does not abort the job.
func (h *Handlers) StartAnalysis(c *gin.Context) {
	var p service.RunParams
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Submit(c.Request.Context(), p)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	go h.svc.Run(context.Background(), id, p)
	c.JSON(http.StatusAccepted, gin.H{"id": id.String(), "status": repo.StatusQueued})
}

func (h *Handlers) GetAnalysis(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok { return }
	job, err := h.svc.Job(c.Request.Context(), id)
	if errors.Is(err, repo.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handlers) GetReport(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok { return }
	report, err := h.svc.Report(c.Request.Context(), id)
	if errors.Is(err, repo.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	if errors.Is(err, repo.ErrReportNotReady) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not ready"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", report)
}

func (h *Handlers) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Rules())
}

func (h *Handlers) jobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid analysis id"})
		return uuid.Nil, false
	}
	return id, true
}
