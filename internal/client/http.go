package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"modeon/internal/core/model"
)

// HTTPClient makes REST calls to a running modeon server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// NewHTTPClient creates a client targeting the given base URL (e.g. "http://127.0.0.1:7345").
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Status fetches /api/status.
func (c *HTTPClient) Status(ctx context.Context) (model.TrackerStatus, error) {
	var out model.TrackerStatus
	err := c.get(ctx, "/api/status", &out)
	return out, err
}

// Stats fetches /api/stats.
func (c *HTTPClient) Stats(ctx context.Context) (model.SessionStats, error) {
	var out model.SessionStats
	err := c.get(ctx, "/api/stats", &out)
	return out, err
}

// History fetches the most recent finished sessions.
func (c *HTTPClient) History(ctx context.Context, limit int) ([]model.SessionSummary, error) {
	path := "/api/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Sessions []model.SessionSummary `json:"sessions"`
	}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Sessions, nil
}

// StartSession sends POST /api/session/start.
func (c *HTTPClient) StartSession(ctx context.Context, keyword string, patch *model.BreakSettingsPatch) (model.TrackerStatus, error) {
	body := struct {
		Keyword         string                    `json:"keyword"`
		SessionSettings *model.BreakSettingsPatch `json:"sessionSettings,omitempty"`
	}{Keyword: keyword, SessionSettings: patch}

	var out model.TrackerStatus
	err := c.post(ctx, "/api/session/start", body, &out)
	return out, err
}

// StopSession sends POST /api/session/stop.
func (c *HTTPClient) StopSession(ctx context.Context) (model.SessionStats, error) {
	var out model.SessionStats
	err := c.post(ctx, "/api/session/stop", nil, &out)
	return out, err
}

// UpdateBreakSettings sends POST /api/breaks/settings.
func (c *HTTPClient) UpdateBreakSettings(ctx context.Context, patch model.BreakSettingsPatch) (model.BreakStatus, error) {
	var out model.BreakStatus
	err := c.post(ctx, "/api/breaks/settings", patch, &out)
	return out, err
}

// StartBreak sends POST /api/breaks/start.
func (c *HTTPClient) StartBreak(ctx context.Context) (model.BreakStatus, error) {
	return c.breakCommand(ctx, "start")
}

// EndBreak sends POST /api/breaks/end.
func (c *HTTPClient) EndBreak(ctx context.Context) (model.BreakStatus, error) {
	return c.breakCommand(ctx, "end")
}

// SkipBreak sends POST /api/breaks/skip.
func (c *HTTPClient) SkipBreak(ctx context.Context) (model.BreakStatus, error) {
	return c.breakCommand(ctx, "skip")
}

// ReportTab sends POST /api/tabs and returns the classification.
func (c *HTTPClient) ReportTab(ctx context.Context, tab model.Tab) (model.ActivityStatus, error) {
	var out struct {
		Activity model.ActivityStatus `json:"activity"`
	}
	err := c.post(ctx, "/api/tabs", tab, &out)
	return out.Activity, err
}

// CheckTab sends POST /api/tabs/check.
func (c *HTTPClient) CheckTab(ctx context.Context) (model.ActivityStatus, error) {
	var out struct {
		Activity model.ActivityStatus `json:"activity"`
	}
	err := c.post(ctx, "/api/tabs/check", nil, &out)
	return out.Activity, err
}

// WebSocketURL returns the ws:// address of the live feed.
func (c *HTTPClient) WebSocketURL() (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/ws"
	return parsed.String(), nil
}

// Token returns the auth token sent with every request.
func (c *HTTPClient) Token() string {
	return c.token
}

func (c *HTTPClient) breakCommand(ctx context.Context, command string) (model.BreakStatus, error) {
	var out model.BreakStatus
	err := c.post(ctx, "/api/breaks/"+command, nil, &out)
	return out, err
}

func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, path, out)
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path, out)
}

func (c *HTTPClient) do(req *http.Request, path string, out interface{}) error {
	c.setAuth(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &APIError{
			Method:  req.Method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", req.Method, path, err)
		}
	}
	return nil
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var decoded struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &decoded) == nil && decoded.Error != "" {
		return decoded.Error
	}
	return strings.TrimSpace(string(raw))
}
