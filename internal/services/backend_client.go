package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adpilot/dashboard/internal/models"
	"github.com/adpilot/dashboard/internal/wizard"
	"go.uber.org/zap"
)

var ErrBackendUnavailable = errors.New("ad backend unavailable")

// BackendClient talks to the ad backend that owns generation, publishing and
// ad storage. Every call is a single attempt.
type BackendClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewBackendClient(baseURL, token string, timeout time.Duration, log *zap.Logger) *BackendClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (c *BackendClient) ListPages(ctx context.Context) ([]models.Page, error) {
	var pages []models.Page
	if err := c.do(ctx, http.MethodGet, "/api/pages", nil, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *BackendClient) ListTemplates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *BackendClient) ListCampaigns(ctx context.Context) ([]models.CampaignSummary, error) {
	var campaigns []models.CampaignSummary
	if err := c.do(ctx, http.MethodGet, "/api/campaigns", nil, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GenerateOptions asks the backend for ad options. A success:false body is
// returned as-is so the caller can surface its message.
func (c *BackendClient) GenerateOptions(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	var resp models.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/generate-ads", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackendClient) Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResponse, error) {
	var resp models.PublishResponse
	if err := c.do(ctx, http.MethodPost, "/api/ai/publish-ad", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAdConfig returns the stored configuration tree of an ad.
func (c *BackendClient) GetAdConfig(ctx context.Context, adID string) (map[string]any, error) {
	config := map[string]any{}
	path := fmt.Sprintf("/api/ads/%s/config", url.PathEscape(adID))
	if err := c.do(ctx, http.MethodGet, path, nil, &config); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *BackendClient) UpdateAdConfig(ctx context.Context, adID string, config models.AdConfig) error {
	path := fmt.Sprintf("/api/ads/%s/config", url.PathEscape(adID))
	return c.do(ctx, http.MethodPut, path, config, nil)
}

func (c *BackendClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		c.log.Warn("ad backend error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &BackendError{Status: resp.StatusCode, Message: backendMessage(b)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// BackendError is a non-2xx answer from the ad backend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ad backend returned %d", e.Status)
	}
	return e.Message
}

var _ wizard.UserMessager = (*BackendError)(nil)

// UserMessage is the backend's own explanation, safe to show in the dashboard.
func (e *BackendError) UserMessage() string {
	return e.Message
}

// backendMessage prefers the "error" field of a JSON body over the raw text.
func backendMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}
