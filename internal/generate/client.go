// Package generate calls the external AI generation service to turn a
// text prompt into a template draft. The only contract with the service
// is shape validation: any malformed response is a generation failure
// surfaced to the user, never silently accepted. Prompt construction
// and the service itself live elsewhere.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

// Client is a thin HTTP client with a fixed timeout and no retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Template sends the prompt and validates the response into a template
// draft (no id or timestamps — those are assigned when the user saves).
func (c *Client) Template(ctx context.Context, prompt string) (models.Template, error) {
	if strings.TrimSpace(prompt) == "" {
		return models.Template{}, fmt.Errorf("generate: prompt is required")
	}

	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return models.Template{}, fmt.Errorf("generate: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/generate", bytes.NewReader(payload))
	if err != nil {
		return models.Template{}, fmt.Errorf("generate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Template{}, fmt.Errorf("generate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Template{}, fmt.Errorf("generate: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.Template{}, fmt.Errorf("generate: service returned %d: %s", resp.StatusCode, body)
	}

	var draft models.Template
	if err := json.Unmarshal(body, &draft); err != nil {
		return models.Template{}, fmt.Errorf("generate: malformed response: %w", err)
	}
	if err := validateDraft(draft); err != nil {
		return models.Template{}, fmt.Errorf("generate: malformed response: %w", err)
	}
	return draft, nil
}

// validateDraft checks the generated shape before it is shown to the
// user as a saveable template.
func validateDraft(t models.Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name missing")
	}
	if len(t.Workouts) == 0 {
		return fmt.Errorf("template has no workouts")
	}
	for _, w := range t.Workouts {
		if strings.TrimSpace(w.Name) == "" {
			return fmt.Errorf("workout name missing")
		}
		if len(w.Exercises) == 0 {
			return fmt.Errorf("workout %q has no exercises", w.Name)
		}
		for _, ex := range w.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("exercise name missing in workout %q", w.Name)
			}
			if !ex.BodyPart.Valid() {
				return fmt.Errorf("exercise %q has invalid body part %q", ex.Name, ex.BodyPart)
			}
			if ex.Sets <= 0 || ex.Reps <= 0 {
				return fmt.Errorf("exercise %q needs positive sets and reps", ex.Name)
			}
		}
	}
	return nil
}
