package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campi/campi/internal/models"
	"github.com/campi/campi/internal/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultFailuresLimit = 50
)

type RequestListResponse struct {
	Page      int              `json:"page"`
	PageCount int              `json:"pageCount"`
	Total     int              `json:"total"`
	Requests  []models.Request `json:"requests"`
}

// GetRequests returns the access log with filtering and pagination
// (GET /requests?status=404&path=/capture&page=1&pageSize=20)
func (h *Handler) GetRequests(c *gin.Context) {
	page, err := positiveQuery(c, "page", 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pageSize, err := positiveQuery(c, "pageSize", defaultPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pageSize = min(pageSize, maxPageSize)

	params := services.RequestListParams{
		Paths:  c.QueryArray("path"),
		Limit:  uint64(pageSize),
		Offset: uint64((page - 1) * pageSize),
	}
	for _, s := range c.QueryArray("status") {
		status, err := strconv.Atoi(s)
		if err != nil || status < 100 || status > 599 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid status %q", s)})
			return
		}
		params.Statuses = append(params.Statuses, status)
	}

	result, err := h.accessLog.List(c.Request.Context(), params)
	if err != nil {
		zap.S().Named("requests_handler").Errorw("failed to list requests", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	pageCount := (result.Total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	requests := result.Requests
	if requests == nil {
		requests = []models.Request{}
	}

	c.JSON(http.StatusOK, RequestListResponse{
		Page:      page,
		PageCount: pageCount,
		Total:     result.Total,
		Requests:  requests,
	})
}

// ExportRequests streams the access log as an xlsx workbook
// (GET /requests/export)
func (h *Handler) ExportRequests(c *gin.Context) {
	filename := fmt.Sprintf("campi-requests-%s.xlsx", time.Now().UTC().Format("20060102-150405"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.accessLog.Export(c.Request.Context(), c.Writer); err != nil {
		zap.S().Named("requests_handler").Errorw("failed to export requests", "error", err)
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export requests"})
		}
		return
	}
}

// GetFailures returns the most recent contained task failures
// (GET /failures?limit=50)
func (h *Handler) GetFailures(c *gin.Context) {
	limit, err := positiveQuery(c, "limit", defaultFailuresLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	failures, err := h.accessLog.Failures(c.Request.Context(), uint64(limit))
	if err != nil {
		zap.S().Named("failures_handler").Errorw("failed to list failures", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list failures"})
		return
	}
	if failures == nil {
		failures = []models.TaskFailure{}
	}

	c.JSON(http.StatusOK, gin.H{"failures": failures})
}

func positiveQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, raw)
	}
	return v, nil
}
