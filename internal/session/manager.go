// Package session owns the single mutable in-progress workout and its
// persistence. The manager is constructor-injected; "at most one active
// session" is an invariant of this container, not of any global state.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/catalog"
	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/models"
)

// ErrNoSession is returned by mutations that require an active session.
var ErrNoSession = errors.New("session: no active session")

// ErrExerciseNotFound is returned when an instance id is not part of the
// active session.
var ErrExerciseNotFound = errors.New("session: exercise not in session")

// ErrSetIndexOutOfRange is returned when a set index references neither
// an existing position nor the next-append position.
var ErrSetIndexOutOfRange = errors.New("session: set index out of range")

// SetField names the field updated by UpdateSet.
type SetField string

const (
	FieldWeight SetField = "weight"
	FieldReps   SetField = "reps"
	FieldRPE    SetField = "rpe"
)

// Manager tracks the active workout session. All mutations are applied
// to the in-memory session first and then persisted; set-value edits go
// through the write coalescer, structural edits write synchronously.
type Manager struct {
	store kvstore.Store
	state *appstate.State
	co    *Coalescer
	log   *slog.Logger
	now   func() time.Time

	mu      sync.Mutex
	current *models.ActiveSession
}

// NewManager creates a session manager over the given store and app
// state container.
func NewManager(store kvstore.Store, state *appstate.State, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		state: state,
		co:    NewCoalescer(store, DefaultFlushDelay, log),
		log:   log,
		now:   time.Now,
	}
}

// Current returns a deep copy of the active session, or nil.
func (m *Manager) Current() *models.ActiveSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Start begins a session from the given template and workout. When the
// pair does not resolve it is a no-op and returns false. Each exercise
// slot is seeded from the most recent matching log: slot i takes the
// logged set at min(i, len-1), RPE always reset to zero. Without history
// every set starts at weight 0 and the slot's target reps. A session
// already in progress is replaced.
func (m *Manager) Start(templateID, workoutID string) (*models.ActiveSession, bool) {
	tmpl, ok := m.state.Template(templateID)
	if !ok {
		return nil, false
	}
	workout, ok := tmpl.FindWorkout(workoutID)
	if !ok {
		return nil, false
	}

	var prior map[string][]models.WorkoutSet
	if last, ok := m.state.MostRecentLog(templateID, workoutID); ok {
		prior = make(map[string][]models.WorkoutSet, len(last.Exercises))
		for _, ex := range last.Exercises {
			if len(ex.Sets) > 0 {
				prior[ex.ID] = ex.Sets
			}
		}
	}

	s := &models.ActiveSession{
		TemplateID:   templateID,
		WorkoutID:    workoutID,
		TemplateName: tmpl.Name,
		WorkoutName:  workout.Name,
		Exercises:    make(map[string][]models.WorkoutSet),
		ExerciseData: make(map[string]models.ExerciseMeta),
		StartTime:    m.now().UnixMilli(),
	}

	for _, ex := range workout.Exercises {
		instanceID := ex.ID + "-" + uuid.NewString()
		s.Order = append(s.Order, instanceID)
		s.Exercises[instanceID] = seedSets(ex, prior[ex.ID])
		s.ExerciseData[instanceID] = models.ExerciseMeta{
			ExerciseID: ex.ID,
			Name:       ex.Name,
			BodyPart:   ex.BodyPart,
			Sets:       ex.Sets,
			Reps:       ex.Reps,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	m.persistLocked()
	return s.Clone(), true
}

// seedSets builds the initial sets for one exercise slot from the last
// matching log's sets, repeating the final logged set when the slot has
// more target sets than were logged last time.
func seedSets(ex models.Exercise, logged []models.WorkoutSet) []models.WorkoutSet {
	sets := make([]models.WorkoutSet, 0, ex.Sets)
	for i := 0; i < ex.Sets; i++ {
		if len(logged) > 0 {
			src := logged[min(i, len(logged)-1)]
			sets = append(sets, models.WorkoutSet{Weight: src.Weight, Reps: src.Reps})
		} else {
			sets = append(sets, models.WorkoutSet{Reps: ex.Reps})
		}
	}
	return sets
}

// UpdateSet upserts one field of the set at index. The index must
// reference an existing set or the next-append position. Persistence is
// coalesced; the in-memory session is always updated immediately.
func (m *Manager) UpdateSet(instanceID string, index int, field SetField, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	sets, ok := m.current.Exercises[instanceID]
	if !ok {
		return ErrExerciseNotFound
	}
	if index < 0 || index > len(sets) {
		return ErrSetIndexOutOfRange
	}
	if index == len(sets) {
		sets = append(sets, models.WorkoutSet{})
	}

	set := sets[index]
	switch field {
	case FieldWeight:
		set.Weight = value
	case FieldReps:
		set.Reps = int(value)
	case FieldRPE:
		set.RPE = value
	default:
		return fmt.Errorf("session: unknown set field %q", field)
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	sets[index] = set
	m.current.Exercises[instanceID] = sets
	m.persistCoalescedLocked()
	return nil
}

// AddSet appends a set to an exercise and persists synchronously.
func (m *Manager) AddSet(instanceID string, set models.WorkoutSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	if _, ok := m.current.Exercises[instanceID]; !ok {
		return ErrExerciseNotFound
	}
	m.current.Exercises[instanceID] = append(m.current.Exercises[instanceID], set)
	m.persistLocked()
	return nil
}

// RemoveSet splices out the set at index. Later sets shift down by one;
// externally held (exercise, index) references past the removed index
// go stale and must be refreshed by the caller.
func (m *Manager) RemoveSet(instanceID string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	sets, ok := m.current.Exercises[instanceID]
	if !ok {
		return ErrExerciseNotFound
	}
	if index < 0 || index >= len(sets) {
		return ErrSetIndexOutOfRange
	}
	m.current.Exercises[instanceID] = append(sets[:index], sets[index+1:]...)
	m.persistLocked()
	return nil
}

// AddExercise adds a movement to the running session under a fresh
// instance id, seeded with zero-weight sets at the slot's target reps.
// The write is coalesced: this path historically deferred persistence to
// avoid janking an in-progress animation.
func (m *Manager) AddExercise(ex models.Exercise) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return "", ErrNoSession
	}

	instanceID := ex.ID + "-" + uuid.NewString()
	sets := make([]models.WorkoutSet, 0, ex.Sets)
	for i := 0; i < ex.Sets; i++ {
		sets = append(sets, models.WorkoutSet{Reps: ex.Reps})
	}

	m.current.Order = append(m.current.Order, instanceID)
	m.current.Exercises[instanceID] = sets
	m.current.ExerciseData[instanceID] = models.ExerciseMeta{
		ExerciseID: ex.ID,
		Name:       ex.Name,
		BodyPart:   ex.BodyPart,
		Sets:       ex.Sets,
		Reps:       ex.Reps,
	}
	m.persistCoalescedLocked()
	return instanceID, nil
}

// RemoveExercise deletes an instance from both maps and the order in
// the same update, keeping their key sets identical.
func (m *Manager) RemoveExercise(instanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoSession
	}
	if _, ok := m.current.Exercises[instanceID]; !ok {
		return ErrExerciseNotFound
	}

	delete(m.current.Exercises, instanceID)
	delete(m.current.ExerciseData, instanceID)
	for i, id := range m.current.Order {
		if id == instanceID {
			m.current.Order = append(m.current.Order[:i], m.current.Order[i+1:]...)
			break
		}
	}
	m.persistLocked()
	return nil
}

// Complete converts the session into a workout log, updates personal
// bests from each exercise's best set, and clears the session. The log
// is built from the session's own name snapshot, so a template deleted
// mid-session cannot wedge completion. The session is cleared even when
// a persistence step fails: a stuck session is worse than one lost log.
func (m *Manager) Complete() (*models.WorkoutLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, ErrNoSession
	}

	now := m.now()
	duration := now.UnixMilli() - m.current.StartTime
	if duration < 0 {
		duration = 0
	}

	entry := models.WorkoutLog{
		ID:           uuid.NewString(),
		TemplateID:   m.current.TemplateID,
		TemplateName: m.current.TemplateName,
		WorkoutID:    m.current.WorkoutID,
		WorkoutName:  m.current.WorkoutName,
		Date:         now,
		DurationMs:   duration,
	}

	for _, instanceID := range m.current.Order {
		meta := m.current.ExerciseData[instanceID]
		sets := m.current.Exercises[instanceID]

		logSets := make([]models.WorkoutSet, len(sets))
		copy(logSets, sets)
		entry.Exercises = append(entry.Exercises, models.LogExercise{
			ID:   meta.ExerciseID,
			Name: meta.Name,
			Sets: logSets,
		})

		if best, ok := models.BestSet(sets); ok {
			m.state.UpdatePersonalBest(models.PersonalBest{
				ExerciseID:   meta.ExerciseID,
				ExerciseName: meta.Name,
				BodyPart:     meta.BodyPart,
				Weight:       best.Weight,
				Reps:         best.Reps,
				Date:         now,
			})
		}
	}

	m.state.AppendLog(entry)
	m.clearLocked()
	return &entry, nil
}

// Quit discards the session without creating a log or touching personal
// bests. Irreversible. Quitting with no session is a safe no-op.
func (m *Manager) Quit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.clearLocked()
}

// Restore loads a persisted session into memory, if one exists. Called
// on startup and on re-entering the foreground; calling it when nothing
// is persisted is a safe no-op, and repeated calls are idempotent. No
// referential validation happens here — a dangling session surfaces as
// "workout not found" when a view resolves it.
func (m *Manager) Restore() error {
	s, err := kvstore.LoadJSON[*models.ActiveSession](m.store, kvstore.KeyActiveSession)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		m.log.Error("session restore failed, starting without one", "error", err)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	return nil
}

// Flush forces any coalesced write out to the store. Called on shutdown.
func (m *Manager) Flush() {
	m.co.Flush()
}

// ExerciseView is one resolved exercise of the active session.
type ExerciseView struct {
	InstanceID string              `json:"instanceId"`
	Meta       models.ExerciseMeta `json:"meta"`
	Sets       []models.WorkoutSet `json:"sets"`
}

// View resolves the session's exercises for display, falling through the
// catalog tiers and substituting the placeholder for anything that no
// longer resolves. Returns nil when no session is active.
func (m *Manager) View() []ExerciseView {
	m.mu.Lock()
	s := m.current.Clone()
	m.mu.Unlock()

	if s == nil {
		return nil
	}

	var workout *models.Workout
	if tmpl, ok := m.state.Template(s.TemplateID); ok {
		if w, ok := tmpl.FindWorkout(s.WorkoutID); ok {
			workout = &w
		}
	}

	views := make([]ExerciseView, 0, len(s.Order))
	for _, instanceID := range s.Order {
		views = append(views, ExerciseView{
			InstanceID: instanceID,
			Meta:       catalog.Resolve(workout, m.state, s.ExerciseData[instanceID]),
			Sets:       s.Exercises[instanceID],
		})
	}
	return views
}

// persistLocked writes the session synchronously, superseding any write
// still pending in the coalescer: an older deferred snapshot must never
// flush over this newer state. Caller holds the lock.
func (m *Manager) persistLocked() {
	raw, err := kvstore.EncodeJSON(m.current)
	if err != nil {
		m.log.Error("session encode failed", "error", err)
		return
	}
	if err := m.co.WriteNow(kvstore.KeyActiveSession, raw); err != nil {
		m.log.Error("session write failed", "error", err)
	}
}

// persistCoalescedLocked schedules the session write through the
// coalescer. Caller holds the lock.
func (m *Manager) persistCoalescedLocked() {
	raw, err := kvstore.EncodeJSON(m.current)
	if err != nil {
		m.log.Error("session encode failed", "error", err)
		return
	}
	m.co.Write(kvstore.KeyActiveSession, raw)
}

// clearLocked drops the session from memory and the store, discarding
// any write still sitting in the coalescer. Caller holds the lock.
func (m *Manager) clearLocked() {
	m.current = nil
	m.co.Discard(kvstore.KeyActiveSession)
	if err := m.store.Delete(kvstore.KeyActiveSession); err != nil {
		m.log.Error("session clear failed", "error", err)
	}
}
