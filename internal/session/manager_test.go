package session

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/models"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestManager builds a manager over a memory store with one saved
// template: "Push" containing bench-press (3x8) and squat (3x5).
func newTestManager(t *testing.T) (*Manager, *appstate.State, kvstore.Store, models.Template) {
	t.Helper()
	store := kvstore.NewMemory()
	state := appstate.New(store, discardLog())

	tmpl, err := state.AddTemplate(models.Template{
		Name: "Strength",
		Workouts: []models.Workout{{
			ID:   "push",
			Name: "Push",
			Exercises: []models.Exercise{
				{ID: "bench-press", Name: "Bench Press", BodyPart: models.BodyPartChest, Sets: 3, Reps: 8},
				{ID: "squat", Name: "Squat", BodyPart: models.BodyPartLegs, Sets: 3, Reps: 5},
			},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	return NewManager(store, state, discardLog()), state, store, tmpl
}

func TestStart(t *testing.T) {
	m, _, store, tmpl := newTestManager(t)

	s, ok := m.Start(tmpl.ID, "push")
	if !ok {
		t.Fatal("Start returned false for a valid pair")
	}
	if s.TemplateName != "Strength" || s.WorkoutName != "Push" {
		t.Errorf("name snapshot wrong: %q / %q", s.TemplateName, s.WorkoutName)
	}
	if len(s.Order) != 2 || len(s.Exercises) != 2 || len(s.ExerciseData) != 2 {
		t.Fatalf("expected 2 exercise instances, got order=%d sets=%d meta=%d",
			len(s.Order), len(s.Exercises), len(s.ExerciseData))
	}

	t.Run("instance ids embed the catalog id", func(t *testing.T) {
		if !strings.HasPrefix(s.Order[0], "bench-press-") {
			t.Errorf("instance id %q does not start with catalog id", s.Order[0])
		}
	})

	t.Run("no history seeds zero weight and target reps", func(t *testing.T) {
		sets := s.Exercises[s.Order[0]]
		if len(sets) != 3 {
			t.Fatalf("got %d sets, want 3", len(sets))
		}
		for _, set := range sets {
			if set.Weight != 0 || set.Reps != 8 || set.RPE != 0 {
				t.Errorf("seeded set = %+v, want {0 8 0}", set)
			}
		}
	})

	t.Run("session persisted synchronously", func(t *testing.T) {
		if _, err := store.Get(kvstore.KeyActiveSession); err != nil {
			t.Errorf("session not persisted: %v", err)
		}
	})

	t.Run("unknown template is a no-op", func(t *testing.T) {
		if _, ok := m.Start("nope", "push"); ok {
			t.Error("expected false for unknown template")
		}
		if m.Current() == nil {
			t.Error("failed start must not clear the running session")
		}
	})

	t.Run("unknown workout is a no-op", func(t *testing.T) {
		if _, ok := m.Start(tmpl.ID, "nope"); ok {
			t.Error("expected false for unknown workout")
		}
	})

	t.Run("starting again replaces the session", func(t *testing.T) {
		first := m.Current()
		next, ok := m.Start(tmpl.ID, "push")
		if !ok {
			t.Fatal("Start failed")
		}
		if next.Order[0] == first.Order[0] {
			t.Error("replacement session reused instance ids")
		}
	})
}

func TestStartSeedsFromHistory(t *testing.T) {
	m, state, _, tmpl := newTestManager(t)

	state.AppendLog(models.WorkoutLog{
		ID:         "prior",
		TemplateID: tmpl.ID,
		WorkoutID:  "push",
		Date:       time.Now().Add(-72 * time.Hour),
		Exercises: []models.LogExercise{{
			ID:   "bench-press",
			Name: "Bench Press",
			Sets: []models.WorkoutSet{
				{Weight: 60, Reps: 10, RPE: 7},
				{Weight: 65, Reps: 8, RPE: 8},
				{Weight: 70, Reps: 6, RPE: 9},
			},
		}},
	})

	tests := []struct {
		name        string
		targetSets  int
		wantWeights []float64
		wantReps    []int
	}{
		{
			name:        "three targets map one to one",
			targetSets:  3,
			wantWeights: []float64{60, 65, 70},
			wantReps:    []int{10, 8, 6},
		},
		{
			name:        "five targets repeat the last logged set",
			targetSets:  5,
			wantWeights: []float64{60, 65, 70, 70, 70},
			wantReps:    []int{10, 8, 6, 6, 6},
		},
		{
			name:        "two targets truncate",
			targetSets:  2,
			wantWeights: []float64{60, 65},
			wantReps:    []int{10, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl.Workouts[0].Exercises[0].Sets = tt.targetSets
			if err := state.UpdateTemplate(tmpl); err != nil {
				t.Fatal(err)
			}

			s, ok := m.Start(tmpl.ID, "push")
			if !ok {
				t.Fatal("Start failed")
			}

			sets := s.Exercises[s.Order[0]]
			if len(sets) != tt.targetSets {
				t.Fatalf("got %d sets, want %d", len(sets), tt.targetSets)
			}
			for i, set := range sets {
				if set.Weight != tt.wantWeights[i] || set.Reps != tt.wantReps[i] {
					t.Errorf("set %d = %+v, want weight %v reps %d",
						i, set, tt.wantWeights[i], tt.wantReps[i])
				}
				if set.RPE != 0 {
					t.Errorf("set %d carried RPE %v from history", i, set.RPE)
				}
			}
		})
	}

	t.Run("exercise without history seeds cold", func(t *testing.T) {
		s, _ := m.Start(tmpl.ID, "push")
		squat := s.Exercises[s.Order[1]]
		for _, set := range squat {
			if set.Weight != 0 || set.Reps != 5 {
				t.Errorf("squat seeded %+v despite no history", set)
			}
		}
	})
}

func TestUpdateSet(t *testing.T) {
	m, _, _, tmpl := newTestManager(t)
	s, _ := m.Start(tmpl.ID, "push")
	bench := s.Order[0]

	t.Run("update weight", func(t *testing.T) {
		if err := m.UpdateSet(bench, 0, FieldWeight, 62.5); err != nil {
			t.Fatalf("UpdateSet: %v", err)
		}
		if got := m.Current().Exercises[bench][0].Weight; got != 62.5 {
			t.Errorf("weight = %v, want 62.5", got)
		}
	})

	t.Run("update reps and rpe", func(t *testing.T) {
		if err := m.UpdateSet(bench, 0, FieldReps, 9); err != nil {
			t.Fatal(err)
		}
		if err := m.UpdateSet(bench, 0, FieldRPE, 8.5); err != nil {
			t.Fatal(err)
		}
		set := m.Current().Exercises[bench][0]
		if set.Reps != 9 || set.RPE != 8.5 {
			t.Errorf("set = %+v", set)
		}
	})

	t.Run("index at length appends", func(t *testing.T) {
		n := len(m.Current().Exercises[bench])
		if err := m.UpdateSet(bench, n, FieldWeight, 70); err != nil {
			t.Fatalf("append via UpdateSet: %v", err)
		}
		sets := m.Current().Exercises[bench]
		if len(sets) != n+1 || sets[n].Weight != 70 {
			t.Errorf("append failed: %v", sets)
		}
	})

	t.Run("index past length rejected", func(t *testing.T) {
		n := len(m.Current().Exercises[bench])
		err := m.UpdateSet(bench, n+1, FieldWeight, 70)
		if !errors.Is(err, ErrSetIndexOutOfRange) {
			t.Errorf("expected ErrSetIndexOutOfRange, got %v", err)
		}
	})

	t.Run("invalid value rejected without mutation", func(t *testing.T) {
		before := m.Current().Exercises[bench][0]
		if err := m.UpdateSet(bench, 0, FieldWeight, -5); err == nil {
			t.Error("expected validation error")
		}
		if after := m.Current().Exercises[bench][0]; after != before {
			t.Errorf("failed update mutated the set: %+v -> %+v", before, after)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		err := m.UpdateSet("ghost", 0, FieldWeight, 60)
		if !errors.Is(err, ErrExerciseNotFound) {
			t.Errorf("expected ErrExerciseNotFound, got %v", err)
		}
	})
}

func TestAddRemoveSet(t *testing.T) {
	m, _, _, tmpl := newTestManager(t)
	s, _ := m.Start(tmpl.ID, "push")
	bench := s.Order[0]

	if err := m.AddSet(bench, models.WorkoutSet{Weight: 80, Reps: 3}); err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	sets := m.Current().Exercises[bench]
	if len(sets) != 4 || sets[3].Weight != 80 {
		t.Fatalf("sets after add: %v", sets)
	}

	t.Run("remove reindexes later sets", func(t *testing.T) {
		if err := m.UpdateSet(bench, 1, FieldWeight, 65); err != nil {
			t.Fatal(err)
		}
		if err := m.RemoveSet(bench, 0); err != nil {
			t.Fatalf("RemoveSet: %v", err)
		}
		sets := m.Current().Exercises[bench]
		if len(sets) != 3 {
			t.Fatalf("got %d sets, want 3", len(sets))
		}
		if sets[0].Weight != 65 {
			t.Errorf("set 1 did not shift to index 0: %v", sets)
		}
	})

	t.Run("remove out of range", func(t *testing.T) {
		if err := m.RemoveSet(bench, 99); !errors.Is(err, ErrSetIndexOutOfRange) {
			t.Errorf("expected ErrSetIndexOutOfRange, got %v", err)
		}
	})

	t.Run("invalid set rejected", func(t *testing.T) {
		if err := m.AddSet(bench, models.WorkoutSet{RPE: 11}); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestAddRemoveExercise(t *testing.T) {
	m, _, _, tmpl := newTestManager(t)
	m.Start(tmpl.ID, "push")

	id, err := m.AddExercise(models.Exercise{
		ID: "deadlift", Name: "Deadlift", BodyPart: models.BodyPartBack, Sets: 2, Reps: 5,
	})
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	s := m.Current()
	if len(s.Order) != 3 || s.Order[2] != id {
		t.Errorf("order after add: %v", s.Order)
	}
	if len(s.Exercises[id]) != 2 {
		t.Errorf("expected 2 seeded sets, got %d", len(s.Exercises[id]))
	}
	if s.ExerciseData[id].ExerciseID != "deadlift" {
		t.Errorf("meta = %+v", s.ExerciseData[id])
	}

	t.Run("remove keeps maps and order aligned", func(t *testing.T) {
		if err := m.RemoveExercise(id); err != nil {
			t.Fatalf("RemoveExercise: %v", err)
		}
		s := m.Current()
		if len(s.Order) != len(s.Exercises) || len(s.Order) != len(s.ExerciseData) {
			t.Errorf("key sets diverged: order=%d sets=%d meta=%d",
				len(s.Order), len(s.Exercises), len(s.ExerciseData))
		}
		for _, instanceID := range s.Order {
			if _, ok := s.Exercises[instanceID]; !ok {
				t.Errorf("order references missing instance %s", instanceID)
			}
		}
	})

	t.Run("remove unknown", func(t *testing.T) {
		if err := m.RemoveExercise("ghost"); !errors.Is(err, ErrExerciseNotFound) {
			t.Errorf("expected ErrExerciseNotFound, got %v", err)
		}
	})

	t.Run("no session", func(t *testing.T) {
		m.Quit()
		if _, err := m.AddExercise(models.Exercise{ID: "squat", Sets: 1, Reps: 1}); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestSyncPersistSupersedesCoalescedWrite(t *testing.T) {
	m, _, store, tmpl := newTestManager(t)
	s, _ := m.Start(tmpl.ID, "push")
	bench := s.Order[0]

	// A coalesced edit followed by a synchronous structural edit: once
	// the coalescer window elapses, the deferred snapshot must not roll
	// the persisted blob back to the pre-AddSet state.
	if err := m.UpdateSet(bench, 0, FieldWeight, 60); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSet(bench, models.WorkoutSet{Weight: 70, Reps: 5}); err != nil {
		t.Fatal(err)
	}

	time.Sleep(DefaultFlushDelay + 200*time.Millisecond)

	persisted, err := kvstore.LoadJSON[*models.ActiveSession](store, kvstore.KeyActiveSession)
	if err != nil {
		t.Fatalf("loading persisted session: %v", err)
	}
	sets := persisted.Exercises[bench]
	if len(sets) != 4 {
		t.Fatalf("persisted blob regressed: %d sets on disk, %d in memory",
			len(sets), len(m.Current().Exercises[bench]))
	}
	if sets[0].Weight != 60 || sets[3].Weight != 70 {
		t.Errorf("persisted sets = %v", sets)
	}

	t.Run("replacement session survives a prior pending write", func(t *testing.T) {
		s, _ := m.Start(tmpl.ID, "push")
		if err := m.UpdateSet(s.Order[0], 0, FieldWeight, 55); err != nil {
			t.Fatal(err)
		}
		next, _ := m.Start(tmpl.ID, "push")

		time.Sleep(DefaultFlushDelay + 200*time.Millisecond)

		persisted, err := kvstore.LoadJSON[*models.ActiveSession](store, kvstore.KeyActiveSession)
		if err != nil {
			t.Fatalf("loading persisted session: %v", err)
		}
		if persisted.Order[0] != next.Order[0] {
			t.Errorf("persisted session is the replaced one: %v, want %v",
				persisted.Order, next.Order)
		}
	})
}

func TestComplete(t *testing.T) {
	m, state, store, tmpl := newTestManager(t)

	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	s, _ := m.Start(tmpl.ID, "push")
	bench, squat := s.Order[0], s.Order[1]

	m.UpdateSet(bench, 0, FieldWeight, 60)
	m.UpdateSet(bench, 1, FieldWeight, 65)
	m.UpdateSet(bench, 2, FieldWeight, 70)
	m.UpdateSet(bench, 2, FieldReps, 6)
	m.UpdateSet(squat, 0, FieldWeight, 100)

	m.now = func() time.Time { return start.Add(45 * time.Minute) }
	entry, err := m.Complete()
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if entry.DurationMs != (45 * time.Minute).Milliseconds() {
		t.Errorf("duration = %d", entry.DurationMs)
	}
	if entry.TemplateName != "Strength" || entry.WorkoutName != "Push" {
		t.Errorf("log names: %q / %q", entry.TemplateName, entry.WorkoutName)
	}
	if len(entry.Exercises) != 2 || entry.Exercises[0].ID != "bench-press" {
		t.Fatalf("log exercises: %+v", entry.Exercises)
	}

	t.Run("session cleared", func(t *testing.T) {
		if m.Current() != nil {
			t.Error("session still in memory")
		}
		if _, err := store.Get(kvstore.KeyActiveSession); !errors.Is(err, kvstore.ErrNotFound) {
			t.Error("session still persisted")
		}
	})

	t.Run("log archived", func(t *testing.T) {
		logs := state.Logs()
		if len(logs) != 1 || logs[0].ID != entry.ID {
			t.Errorf("archive: %+v", logs)
		}
	})

	t.Run("personal bests from best set", func(t *testing.T) {
		bests := state.PersonalBests()
		if len(bests) != 2 {
			t.Fatalf("got %d records, want 2", len(bests))
		}
		for _, pb := range bests {
			switch pb.ExerciseID {
			case "bench-press":
				if pb.Weight != 70 || pb.Reps != 6 {
					t.Errorf("bench pb = %+v", pb)
				}
			case "squat":
				if pb.Weight != 100 {
					t.Errorf("squat pb = %+v", pb)
				}
			default:
				t.Errorf("unexpected record %+v", pb)
			}
		}
	})

	t.Run("completing again fails", func(t *testing.T) {
		if _, err := m.Complete(); !errors.Is(err, ErrNoSession) {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestCompleteSurvivesDeletedTemplate(t *testing.T) {
	m, state, _, tmpl := newTestManager(t)
	m.Start(tmpl.ID, "push")

	if err := state.DeleteTemplate(tmpl.ID); err != nil {
		t.Fatal(err)
	}

	entry, err := m.Complete()
	if err != nil {
		t.Fatalf("Complete after template deletion: %v", err)
	}
	if entry.TemplateName != "Strength" {
		t.Errorf("log lost the name snapshot: %q", entry.TemplateName)
	}
}

func TestCompleteClampsNegativeDuration(t *testing.T) {
	m, _, _, tmpl := newTestManager(t)

	later := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return later }
	m.Start(tmpl.ID, "push")

	// Clock went backwards between start and completion.
	m.now = func() time.Time { return later.Add(-time.Hour) }
	entry, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if entry.DurationMs != 0 {
		t.Errorf("duration = %d, want clamp to 0", entry.DurationMs)
	}
}

func TestQuit(t *testing.T) {
	m, state, store, tmpl := newTestManager(t)

	t.Run("quit without session is a no-op", func(t *testing.T) {
		m.Quit()
	})

	m.Start(tmpl.ID, "push")
	m.Quit()

	if m.Current() != nil {
		t.Error("session still in memory")
	}
	if _, err := store.Get(kvstore.KeyActiveSession); !errors.Is(err, kvstore.ErrNotFound) {
		t.Error("session still persisted")
	}
	if len(state.Logs()) != 0 {
		t.Error("quit must not create a log")
	}
	if len(state.PersonalBests()) != 0 {
		t.Error("quit must not touch personal bests")
	}
}

func TestRestore(t *testing.T) {
	store := kvstore.NewMemory()
	state := appstate.New(store, discardLog())

	t.Run("nothing persisted is a no-op", func(t *testing.T) {
		m := NewManager(store, state, discardLog())
		if err := m.Restore(); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if m.Current() != nil {
			t.Error("restored a session out of thin air")
		}
	})

	t.Run("roundtrip through the store", func(t *testing.T) {
		saved := &models.ActiveSession{
			TemplateID:   "t1",
			WorkoutID:    "w1",
			TemplateName: "Strength",
			WorkoutName:  "Push",
			Order:        []string{"bench-press-abc"},
			Exercises: map[string][]models.WorkoutSet{
				"bench-press-abc": {{Weight: 60, Reps: 8}},
			},
			ExerciseData: map[string]models.ExerciseMeta{
				"bench-press-abc": {ExerciseID: "bench-press", Name: "Bench Press", Sets: 3, Reps: 8},
			},
			StartTime: time.Now().UnixMilli(),
		}
		if err := kvstore.SaveJSON(store, kvstore.KeyActiveSession, saved); err != nil {
			t.Fatal(err)
		}

		m := NewManager(store, state, discardLog())
		if err := m.Restore(); err != nil {
			t.Fatalf("Restore: %v", err)
		}
		got := m.Current()
		if got == nil {
			t.Fatal("no session restored")
		}
		if got.TemplateName != "Strength" || got.Exercises["bench-press-abc"][0].Weight != 60 {
			t.Errorf("restored session = %+v", got)
		}

		// Idempotent: restoring again changes nothing.
		if err := m.Restore(); err != nil {
			t.Fatal(err)
		}
		if m.Current().TemplateName != "Strength" {
			t.Error("second restore corrupted the session")
		}
	})

	t.Run("corrupt blob starts without a session", func(t *testing.T) {
		if err := store.Set(kvstore.KeyActiveSession, "{broken"); err != nil {
			t.Fatal(err)
		}
		m := NewManager(store, state, discardLog())
		if err := m.Restore(); err != nil {
			t.Fatalf("Restore must swallow decode errors, got %v", err)
		}
		if m.Current() != nil {
			t.Error("corrupt blob produced a session")
		}
	})
}

func TestView(t *testing.T) {
	m, state, _, tmpl := newTestManager(t)

	t.Run("nil without session", func(t *testing.T) {
		if views := m.View(); views != nil {
			t.Errorf("got %v, want nil", views)
		}
	})

	s, _ := m.Start(tmpl.ID, "push")
	views := m.View()
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].InstanceID != s.Order[0] {
		t.Error("views not in session order")
	}
	if views[0].Meta.Name != "Bench Press" {
		t.Errorf("meta = %+v", views[0].Meta)
	}

	t.Run("deleted template falls back through the catalog", func(t *testing.T) {
		if err := state.DeleteTemplate(tmpl.ID); err != nil {
			t.Fatal(err)
		}
		views := m.View()
		// bench-press still resolves as a builtin.
		if views[0].Meta.Name != "Bench Press" {
			t.Errorf("builtin fallback failed: %+v", views[0].Meta)
		}
	})

	t.Run("fully unresolvable exercise renders the placeholder", func(t *testing.T) {
		id, err := m.AddExercise(models.Exercise{ID: "vanished-id", Name: "Gone", Sets: 1, Reps: 1})
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range m.View() {
			if v.InstanceID == id && v.Meta.Name != "Exercise" {
				t.Errorf("expected placeholder, got %+v", v.Meta)
			}
		}
	})
}
