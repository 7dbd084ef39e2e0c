package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus returns the worker pool snapshot
// (GET /status)
func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.pool.Stats())
}
