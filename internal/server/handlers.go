package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// --- Templates ---

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Templates())
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := s.state.Template(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleExampleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.ExampleTemplates())
}

func (s *Server) handleAddTemplate(w http.ResponseWriter, r *http.Request) {
	var draft models.Template
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	t, err := s.state.AddTemplate(draft)
	if errors.Is(err, appstate.ErrDuplicateName) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a template with that name already exists"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var t models.Template
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	t.ID = chi.URLParam(r, "id")

	err := s.state.UpdateTemplate(t)
	switch {
	case errors.Is(err, appstate.ErrTemplateNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
	case errors.Is(err, appstate.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a template with that name already exists"})
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteTemplate(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "template not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Exercises ---

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"builtin": catalog.Builtins(),
		"custom":  s.state.CustomExercises(),
	})
}

func (s *Server) handleAddCustomExercise(w http.ResponseWriter, r *http.Request) {
	var def models.ExerciseDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	id, err := s.state.AddCustomExercise(def)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// --- Logs and records ---

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Logs())
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteLog(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "log not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePersonalBests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state.PersonalBests())
}

// --- Active session ---

func (s *Server) handleCurrentSession(w http.ResponseWriter, r *http.Request) {
	current := s.sessions.Current()
	if current == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":   current,
		"exercises": s.sessions.View(),
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID string `json:"templateId"`
		WorkoutID  string `json:"workoutId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	started, ok := s.sessions.Start(req.TemplateID, req.WorkoutID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	s.timer.Start()
	writeJSON(w, http.StatusCreated, started)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	entry, err := s.sessions.Complete()
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	s.timer.Reset()
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleQuitSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Quit()
	s.timer.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSessionExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	instanceID, err := s.sessions.AddExercise(ex)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"instanceId": instanceID})
}

func (s *Server) handleRemoveSessionExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.RemoveExercise(chi.URLParam(r, "instanceId")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var set models.WorkoutSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.sessions.AddSet(chi.URLParam(r, "instanceId"), set); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	var req struct {
		Field session.SetField `json:"field"`
		Value float64          `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	if err := s.sessions.UpdateSet(chi.URLParam(r, "instanceId"), index, req.Field, req.Value); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid set index"})
		return
	}

	if err := s.sessions.RemoveSet(chi.URLParam(r, "instanceId"), index); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Timer ---

func (s *Server) handleTimerState(w http.ResponseWriter, r *http.Request) {
	s.timer.Tick()
	writeJSON(w, http.StatusOK, map[string]any{
		"isRunning": s.timer.Running(),
		"elapsedMs": s.timer.ElapsedMs(),
	})
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	s.timer.Start()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	s.timer.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimerReset(w http.ResponseWriter, r *http.Request) {
	s.timer.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// --- Generation and reset ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "generation service not configured"})
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	draft, err := s.gen.Template(r.Context(), req.Prompt)
	if err != nil {
		s.log.Error("template generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "generation failed"})
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleResetAll(w http.ResponseWriter, r *http.Request) {
	s.sessions.Quit()
	s.timer.Reset()
	if err := s.state.ResetAll(); err != nil {
		// The forced fallback already ran; report but do not fail hard.
		s.log.Error("reset completed with errors", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeSessionError maps session manager errors onto HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
	case errors.Is(err, session.ErrExerciseNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not in session"})
	case errors.Is(err, session.ErrSetIndexOutOfRange):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "set index out of range"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
