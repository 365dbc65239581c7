package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Templates(ctx context.Context) ([]models.Template, error) {
	var templates []models.Template
	if err := c.getJSON(ctx, "/api/v1/templates", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *HTTPClient) Template(ctx context.Context, id string) (*models.Template, error) {
	body, status, err := c.get(ctx, "/api/v1/templates/"+id)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: templates/%s returned %d: %s", id, status, body)
	}

	var t models.Template
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("httpclient: decode template: %w", err)
	}
	return &t, nil
}

func (c *HTTPClient) Logs(ctx context.Context) ([]models.WorkoutLog, error) {
	var logs []models.WorkoutLog
	if err := c.getJSON(ctx, "/api/v1/logs", &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *HTTPClient) PersonalBests(ctx context.Context) ([]models.PersonalBest, error) {
	var bests []models.PersonalBest
	if err := c.getJSON(ctx, "/api/v1/records", &bests); err != nil {
		return nil, err
	}
	return bests, nil
}

func (c *HTTPClient) CurrentSession(ctx context.Context) (*SessionView, error) {
	body, status, err := c.get(ctx, "/api/v1/session")
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: session returned %d: %s", status, body)
	}

	var view SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return &view, nil
}
