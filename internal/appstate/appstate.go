// Package appstate owns the durable application state: the template
// catalog, custom exercise definitions, the workout log archive, and
// personal bests. Everything lives in one namespaced JSON blob that is
// loaded at startup and written whole on every mutation.
package appstate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/models"
)

// ErrDuplicateName rejects a template whose name collides
// (case-insensitively) with another template. The whole request fails;
// nothing is partially written.
var ErrDuplicateName = errors.New("appstate: template name already exists")

// ErrTemplateNotFound is returned when an id does not resolve.
var ErrTemplateNotFound = errors.New("appstate: template not found")

// ErrLogNotFound is returned when a workout log id does not resolve.
var ErrLogNotFound = errors.New("appstate: workout log not found")

// blob is the persisted shape of the app state.
type blob struct {
	Templates       []models.Template              `json:"templates"`
	Logs            []models.WorkoutLog            `json:"logs"`
	PersonalBests   map[string]models.PersonalBest `json:"personalBests"`
	CustomExercises []models.ExerciseDefinition    `json:"customExercises"`
}

// State is the constructor-injected container for durable app state.
// A single instance exists per process; all mutations go through it.
type State struct {
	mu    sync.Mutex
	store kvstore.Store
	log   *slog.Logger
	data  blob
}

// New loads the app state from the store. A missing or unreadable blob
// starts cold with empty state; read failures are logged, not fatal.
func New(store kvstore.Store, log *slog.Logger) *State {
	s := &State{store: store, log: log}

	data, err := kvstore.LoadJSON[blob](store, kvstore.KeyAppState)
	switch {
	case err == nil:
		s.data = data
	case errors.Is(err, kvstore.ErrNotFound):
		// first run
	default:
		log.Error("app state read failed, starting cold", "error", err)
	}

	if s.data.PersonalBests == nil {
		s.data.PersonalBests = make(map[string]models.PersonalBest)
	}
	return s
}

// save persists the whole blob. Write failures are logged and otherwise
// ignored: the in-memory state stays correct for this process, only
// durability of this one write is lost.
func (s *State) save() {
	if err := kvstore.SaveJSON(s.store, kvstore.KeyAppState, s.data); err != nil {
		s.log.Error("app state write failed", "error", err)
	}
}

// Templates returns deep copies of all templates.
func (s *State) Templates() []models.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Template, len(s.data.Templates))
	for i, t := range s.data.Templates {
		out[i] = t.Clone()
	}
	return out
}

// Template returns a deep copy of the template with the given id.
func (s *State) Template(id string) (models.Template, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.data.Templates {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return models.Template{}, false
}

// AddTemplate validates and appends a new template, assigning its id and
// timestamps. Duplicate names (case-insensitive) are rejected whole.
func (s *State) AddTemplate(draft models.Template) (models.Template, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return models.Template{}, fmt.Errorf("appstate: template name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(draft.Name, "") {
		return models.Template{}, ErrDuplicateName
	}

	t := draft.Clone()
	t.ID = uuid.NewString()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Workouts {
		if t.Workouts[i].ID == "" {
			t.Workouts[i].ID = uuid.NewString()
		}
	}

	s.data.Templates = append(s.data.Templates, t)
	s.save()
	return t.Clone(), nil
}

// UpdateTemplate replaces a template wholesale by id. The uniqueness
// check against other templates is enforced here as well.
func (s *State) UpdateTemplate(t models.Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("appstate: template name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(t.Name, t.ID) {
		return ErrDuplicateName
	}

	for i, existing := range s.data.Templates {
		if existing.ID == t.ID {
			next := t.Clone()
			next.CreatedAt = existing.CreatedAt
			next.UpdatedAt = time.Now()
			s.data.Templates[i] = next
			s.save()
			return nil
		}
	}
	return ErrTemplateNotFound
}

// DeleteTemplate removes a template by id. It deliberately does not
// check whether an active session still references the template; the
// session carries its own snapshot and resolves lazily.
func (s *State) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.data.Templates {
		if t.ID == id {
			s.data.Templates = append(s.data.Templates[:i], s.data.Templates[i+1:]...)
			s.save()
			return nil
		}
	}
	return ErrTemplateNotFound
}

// nameTaken reports whether another template (id != excludeID) already
// uses the name, case-insensitively. Caller holds the lock.
func (s *State) nameTaken(name, excludeID string) bool {
	lower := strings.ToLower(name)
	for _, t := range s.data.Templates {
		if t.ID != excludeID && strings.ToLower(t.Name) == lower {
			return true
		}
	}
	return false
}

// AddCustomExercise validates and appends a user-created definition,
// returning the generated id so the caller can reference it immediately.
func (s *State) AddCustomExercise(def models.ExerciseDefinition) (string, error) {
	def.IsCustom = true
	if err := def.Validate(); err != nil {
		return "", fmt.Errorf("appstate: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	def.ID = "custom-" + uuid.NewString()
	s.data.CustomExercises = append(s.data.CustomExercises, def)
	s.save()
	return def.ID, nil
}

// CustomExercises returns all user-created definitions.
func (s *State) CustomExercises() []models.ExerciseDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExerciseDefinition, len(s.data.CustomExercises))
	copy(out, s.data.CustomExercises)
	return out
}

// CustomExercise looks up a custom definition by id.
func (s *State) CustomExercise(id string) (models.ExerciseDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.data.CustomExercises {
		if d.ID == id {
			return d, true
		}
	}
	return models.ExerciseDefinition{}, false
}

// Logs returns deep copies of the archive, newest-first.
func (s *State) Logs() []models.WorkoutLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WorkoutLog, len(s.data.Logs))
	for i, l := range s.data.Logs {
		out[i] = l.Clone()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// AppendLog adds a completed session's record to the archive. Logs are
// immutable once written.
func (s *State) AppendLog(entry models.WorkoutLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Logs = append(s.data.Logs, entry)
	s.save()
}

// DeleteLog removes a log by explicit user action.
func (s *State) DeleteLog(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.data.Logs {
		if l.ID == id {
			s.data.Logs = append(s.data.Logs[:i], s.data.Logs[i+1:]...)
			s.save()
			return nil
		}
	}
	return ErrLogNotFound
}

// MostRecentLog returns the newest log matching the template/workout
// pair, used to seed a fresh session with last time's numbers.
func (s *State) MostRecentLog(templateID, workoutID string) (models.WorkoutLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best models.WorkoutLog
	found := false
	for _, l := range s.data.Logs {
		if l.TemplateID != templateID || l.WorkoutID != workoutID {
			continue
		}
		if !found || l.Date.After(best.Date) {
			best = l
			found = true
		}
	}
	if !found {
		return models.WorkoutLog{}, false
	}
	return best.Clone(), true
}

// PersonalBests returns all records sorted by exercise name.
func (s *State) PersonalBests() []models.PersonalBest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PersonalBest, 0, len(s.data.PersonalBests))
	for _, pb := range s.data.PersonalBests {
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseName < out[j].ExerciseName })
	return out
}

// UpdatePersonalBest records the candidate if it beats the stored entry
// for its exercise: strictly greater weight, or equal weight with
// strictly greater reps. Returns whether the record changed.
func (s *State) UpdatePersonalBest(candidate models.PersonalBest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data.PersonalBests[candidate.ExerciseID]
	if ok {
		cur := models.WorkoutSet{Weight: current.Weight, Reps: current.Reps}
		cand := models.WorkoutSet{Weight: candidate.Weight, Reps: candidate.Reps}
		if !cand.Beats(cur) {
			return false
		}
	}
	s.data.PersonalBests[candidate.ExerciseID] = candidate
	s.save()
	return true
}

// ResetAll clears every persisted blob. If the primary clear fails, a
// forced per-key best-effort pass runs so the app can always start.
func (s *State) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []string{kvstore.KeyAppState, kvstore.KeyActiveSession, kvstore.KeyTimerState}

	var firstErr error
	for _, key := range keys {
		if err := s.store.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		s.log.Error("reset: primary clear failed, forcing", "error", firstErr)
		for _, key := range keys {
			_ = s.store.Set(key, "")
			_ = s.store.Delete(key)
		}
	}

	s.data = blob{PersonalBests: make(map[string]models.PersonalBest)}
	return firstErr
}
