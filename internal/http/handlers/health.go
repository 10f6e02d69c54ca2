package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/rosterhub/internal/health"
	"github.com/gin-gonic/gin"
)

type HealthReporter interface {
	Report() health.Status
	Ready(ctx context.Context) error
}

type HealthHandler struct {
	reporter HealthReporter
}

func NewHealthHandler(reporter HealthReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Health is the endpoint the frontend polls.
func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.reporter.Report())
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if err := h.reporter.Ready(ctx.Request.Context()); err != nil {
		RespondServiceUnavailable(ctx, err.Error())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
