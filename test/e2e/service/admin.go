package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campi/campi/internal/handlers"
	"github.com/campi/campi/pkg/pool"
)

// AdminSvc is an HTTP client for the campi admin api.
type AdminSvc struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAdminService(baseURL, token string) *AdminSvc {
	return &AdminSvc{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Status returns the pool snapshot
// GET /api/v1/status
func (a *AdminSvc) Status(ctx context.Context) (*pool.Stats, error) {
	var stats pool.Stats
	if err := a.get(ctx, "/api/v1/status", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Requests returns one page of the access log
// GET /api/v1/requests
func (a *AdminSvc) Requests(ctx context.Context, query string) (*handlers.RequestListResponse, error) {
	var list handlers.RequestListResponse
	if err := a.get(ctx, "/api/v1/requests?"+query, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// StatusCode performs an unauthenticated GET and returns the status.
func (a *AdminSvc) StatusCode(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (a *AdminSvc) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	if a.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", a.token))
	}

	zap.S().Debugw("admin request", "path", path)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	default:
		return fmt.Errorf("GET %s failed: %s", path, resp.Status)
	}
}
