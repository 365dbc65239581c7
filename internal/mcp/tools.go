package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/models"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List all workout templates: name, workouts, and per-exercise target sets/reps."),
)

var toolGetTemplate = mcp.NewTool("get_template",
	mcp.WithDescription("Retrieve one template by id, including every workout and exercise slot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
)

var toolListWorkoutLogs = mcp.NewTool("list_workout_logs",
	mcp.WithDescription("Query completed workout sessions. Returns logged sets (weight, reps, RPE) per exercise."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetPersonalBests = mcp.NewTool("get_personal_bests",
	mcp.WithDescription("List personal records: best weight/reps per exercise, with the date it was set."),
)

var toolGetCurrentSession = mcp.NewTool("get_current_session",
	mcp.WithDescription("Retrieve the in-progress workout session, if any: exercises, logged sets, and start time."),
)

var toolGetTrainingVolume = mcp.NewTool("get_training_volume",
	mcp.WithDescription("Aggregated training volume over a period: session count, total sets, reps, and tonnage (sum of weight × reps)."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) listTemplates(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.Templates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	t, err := h.ds.Template(ctx, id)
	if err != nil {
		h.log.Error("mcp get_template", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if t == nil {
		return mcp.NewToolResultError("template not found"), nil
	}

	result, err := mcp.NewToolResultJSON(t)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkoutLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.Logs(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	exerciseFilter := strings.ToLower(req.GetString("exercise", ""))
	filtered := filterLogs(logs, start, end, exerciseFilter)

	result, err := mcp.NewToolResultJSON(filtered)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalBests(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bests, err := h.ds.PersonalBests(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_bests", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(bests)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCurrentSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := h.ds.CurrentSession(ctx)
	if err != nil {
		h.log.Error("mcp get_current_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if view == nil {
		return mcp.NewToolResultText("no active session"), nil
	}

	result, err := mcp.NewToolResultJSON(view)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.Logs(ctx)
	if err != nil {
		h.log.Error("mcp get_training_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trainingVolume(logs, start, end))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// filterLogs keeps logs within [start, end] that contain the exercise
// filter (empty filter matches everything).
func filterLogs(logs []models.WorkoutLog, start, end time.Time, exerciseFilter string) []models.WorkoutLog {
	out := make([]models.WorkoutLog, 0, len(logs))
	for _, l := range logs {
		if l.Date.Before(start) || l.Date.After(end) {
			continue
		}
		if exerciseFilter != "" && !logMentions(l, exerciseFilter) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func logMentions(l models.WorkoutLog, lowered string) bool {
	for _, ex := range l.Exercises {
		if strings.Contains(strings.ToLower(ex.Name), lowered) {
			return true
		}
	}
	return false
}

// VolumeSummary is the aggregate returned by get_training_volume.
type VolumeSummary struct {
	Sessions   int     `json:"sessions"`
	TotalSets  int     `json:"totalSets"`
	TotalReps  int     `json:"totalReps"`
	TonnageKg  float64 `json:"tonnageKg"`
	DurationMs int64   `json:"durationMs"`
}

func trainingVolume(logs []models.WorkoutLog, start, end time.Time) VolumeSummary {
	var v VolumeSummary
	for _, l := range logs {
		if l.Date.Before(start) || l.Date.After(end) {
			continue
		}
		v.Sessions++
		v.DurationMs += l.DurationMs
		for _, ex := range l.Exercises {
			v.TotalSets += len(ex.Sets)
			for _, set := range ex.Sets {
				v.TotalReps += set.Reps
				v.TonnageKg += set.Weight * float64(set.Reps)
			}
		}
	}
	return v
}
