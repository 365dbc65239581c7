package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/models"
)

func (h *handlers) recentLogs(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	logs, err := h.ds.Logs(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading logs: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -14)
	recent := make([]models.WorkoutLog, 0, len(logs))
	for _, l := range logs {
		if l.Date.After(cutoff) {
			recent = append(recent, l)
		}
	}

	return jsonResource(req.Params.URI, recent)
}

func (h *handlers) templateCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	templates, err := h.ds.Templates(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	return jsonResource(req.Params.URI, templates)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
