package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campi/campi/internal/services"
	"github.com/campi/campi/pkg/pool"
)

// StatsProvider reports pool counters. *pool.Pool implements it.
type StatsProvider interface {
	Stats() pool.Stats
}

type Handler struct {
	pool      StatsProvider
	accessLog *services.AccessLog
}

func New(p StatsProvider, accessLog *services.AccessLog) *Handler {
	return &Handler{
		pool:      p,
		accessLog: accessLog,
	}
}

// Register mounts the handlers on router, usually the /api/v1 group.
func (h *Handler) Register(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/requests", h.GetRequests)
	router.GET("/requests/export", h.ExportRequests)
	router.GET("/failures", h.GetFailures)
}
