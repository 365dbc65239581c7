package appstate

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/kvstore"
	"github.com/meltforce/liftlog/internal/models"
)

func newTestState(t *testing.T) (*State, kvstore.Store) {
	t.Helper()
	store := kvstore.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, log), store
}

func TestAddTemplate(t *testing.T) {
	state, _ := newTestState(t)

	added, err := state.AddTemplate(models.Template{
		Name:     "Push Pull Legs",
		Workouts: []models.Workout{{Name: "Push"}},
	})
	if err != nil {
		t.Fatalf("AddTemplate: %v", err)
	}
	if added.ID == "" {
		t.Error("expected generated template id")
	}
	if added.Workouts[0].ID == "" {
		t.Error("expected generated workout id")
	}
	if added.CreatedAt.IsZero() || added.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	t.Run("duplicate name rejected case-insensitively", func(t *testing.T) {
		_, err := state.AddTemplate(models.Template{Name: "push pull legs"})
		if !errors.Is(err, ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
		if len(state.Templates()) != 1 {
			t.Error("failed add must not leave partial state")
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		if _, err := state.AddTemplate(models.Template{Name: "  "}); err == nil {
			t.Error("expected error for blank name")
		}
	})
}

func TestUpdateTemplate(t *testing.T) {
	state, _ := newTestState(t)

	a, _ := state.AddTemplate(models.Template{Name: "A"})
	b, _ := state.AddTemplate(models.Template{Name: "B"})

	t.Run("rename onto another template is rejected", func(t *testing.T) {
		b.Name = "a"
		if err := state.UpdateTemplate(b); !errors.Is(err, ErrDuplicateName) {
			t.Errorf("expected ErrDuplicateName, got %v", err)
		}
	})

	t.Run("keeping own name is fine", func(t *testing.T) {
		a.Name = "A"
		a.Workouts = []models.Workout{{ID: "w1", Name: "Day 1"}}
		if err := state.UpdateTemplate(a); err != nil {
			t.Fatalf("UpdateTemplate: %v", err)
		}
		got, ok := state.Template(a.ID)
		if !ok {
			t.Fatal("template vanished")
		}
		if len(got.Workouts) != 1 {
			t.Error("workouts not replaced")
		}
		if !got.CreatedAt.Equal(a.CreatedAt) {
			t.Error("CreatedAt must be preserved on update")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		err := state.UpdateTemplate(models.Template{ID: "nope", Name: "C"})
		if !errors.Is(err, ErrTemplateNotFound) {
			t.Errorf("expected ErrTemplateNotFound, got %v", err)
		}
	})
}

func TestDeleteTemplate(t *testing.T) {
	state, _ := newTestState(t)
	tmpl, _ := state.AddTemplate(models.Template{Name: "A"})

	if err := state.DeleteTemplate(tmpl.ID); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if len(state.Templates()) != 0 {
		t.Error("template not removed")
	}
	if err := state.DeleteTemplate(tmpl.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestStatePersistsAcrossReload(t *testing.T) {
	store := kvstore.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	state := New(store, log)
	if _, err := state.AddTemplate(models.Template{Name: "Keeper"}); err != nil {
		t.Fatal(err)
	}
	state.AppendLog(models.WorkoutLog{ID: "log-1", Date: time.Now()})

	reloaded := New(store, log)
	if len(reloaded.Templates()) != 1 {
		t.Error("templates not reloaded")
	}
	if len(reloaded.Logs()) != 1 {
		t.Error("logs not reloaded")
	}
}

func TestCustomExercises(t *testing.T) {
	state, _ := newTestState(t)

	id, err := state.AddCustomExercise(models.ExerciseDefinition{
		Name: "Sled Push", BodyPart: models.BodyPartLegs, DefaultSets: 4, DefaultReps: 10,
	})
	if err != nil {
		t.Fatalf("AddCustomExercise: %v", err)
	}

	def, ok := state.CustomExercise(id)
	if !ok {
		t.Fatal("custom exercise not found by returned id")
	}
	if !def.IsCustom {
		t.Error("definition must be flagged custom")
	}

	t.Run("invalid definition rejected", func(t *testing.T) {
		if _, err := state.AddCustomExercise(models.ExerciseDefinition{Name: ""}); err == nil {
			t.Error("expected validation error")
		}
	})
}

func TestLogs(t *testing.T) {
	state, _ := newTestState(t)

	old := models.WorkoutLog{ID: "old", TemplateID: "t", WorkoutID: "w", Date: time.Now().Add(-48 * time.Hour)}
	recent := models.WorkoutLog{ID: "recent", TemplateID: "t", WorkoutID: "w", Date: time.Now()}
	state.AppendLog(old)
	state.AppendLog(recent)

	t.Run("newest first", func(t *testing.T) {
		logs := state.Logs()
		if len(logs) != 2 || logs[0].ID != "recent" {
			t.Errorf("logs not newest-first: %v", logs)
		}
	})

	t.Run("returned logs do not share storage with the archive", func(t *testing.T) {
		state.AppendLog(models.WorkoutLog{
			ID: "mutable", TemplateID: "t2", WorkoutID: "w2", Date: time.Now(),
			Exercises: []models.LogExercise{
				{ID: "squat", Name: "Squat", Sets: []models.WorkoutSet{{Weight: 100, Reps: 5}}},
			},
		})

		logs := state.Logs()
		logs[0].Exercises[0].Sets[0].Weight = 999

		fresh := state.Logs()
		if fresh[0].Exercises[0].Sets[0].Weight != 100 {
			t.Error("caller mutation reached the archive through shared storage")
		}

		got, _ := state.MostRecentLog("t2", "w2")
		got.Exercises[0].Sets[0].Weight = 999
		again, _ := state.MostRecentLog("t2", "w2")
		if again.Exercises[0].Sets[0].Weight != 100 {
			t.Error("MostRecentLog shares storage with the archive")
		}

		if err := state.DeleteLog("mutable"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("most recent by template and workout", func(t *testing.T) {
		got, ok := state.MostRecentLog("t", "w")
		if !ok || got.ID != "recent" {
			t.Errorf("got %v %v, want recent", got.ID, ok)
		}
		if _, ok := state.MostRecentLog("t", "other"); ok {
			t.Error("unexpected match for unrelated workout")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := state.DeleteLog("old"); err != nil {
			t.Fatalf("DeleteLog: %v", err)
		}
		if err := state.DeleteLog("old"); !errors.Is(err, ErrLogNotFound) {
			t.Errorf("expected ErrLogNotFound, got %v", err)
		}
	})
}

func TestUpdatePersonalBest(t *testing.T) {
	state, _ := newTestState(t)

	base := models.PersonalBest{ExerciseID: "bench-press", ExerciseName: "Bench Press", Weight: 100, Reps: 5}
	if !state.UpdatePersonalBest(base) {
		t.Fatal("first record must always be accepted")
	}

	tests := []struct {
		name      string
		candidate models.PersonalBest
		want      bool
	}{
		{"heavier replaces", models.PersonalBest{ExerciseID: "bench-press", Weight: 102.5, Reps: 1}, true},
		{"equal weight more reps replaces", models.PersonalBest{ExerciseID: "bench-press", Weight: 102.5, Reps: 3}, true},
		{"equal weight equal reps keeps old", models.PersonalBest{ExerciseID: "bench-press", Weight: 102.5, Reps: 3}, false},
		{"lighter never replaces", models.PersonalBest{ExerciseID: "bench-press", Weight: 90, Reps: 20}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := state.UpdatePersonalBest(tt.candidate); got != tt.want {
				t.Errorf("UpdatePersonalBest = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("sorted by exercise name", func(t *testing.T) {
		state.UpdatePersonalBest(models.PersonalBest{ExerciseID: "squat", ExerciseName: "Squat", Weight: 140, Reps: 3})
		state.UpdatePersonalBest(models.PersonalBest{ExerciseID: "deadlift", ExerciseName: "Deadlift", Weight: 180, Reps: 1})
		bests := state.PersonalBests()
		if len(bests) != 3 {
			t.Fatalf("got %d records, want 3", len(bests))
		}
		for i := 1; i < len(bests); i++ {
			if bests[i-1].ExerciseName > bests[i].ExerciseName {
				t.Errorf("records not sorted by name: %v", bests)
			}
		}
	})
}

func TestResetAll(t *testing.T) {
	state, store := newTestState(t)

	state.AddTemplate(models.Template{Name: "A"})
	state.AppendLog(models.WorkoutLog{ID: "l1"})
	state.UpdatePersonalBest(models.PersonalBest{ExerciseID: "squat", Weight: 100})
	store.Set(kvstore.KeyActiveSession, "{}")
	store.Set(kvstore.KeyTimerState, "{}")

	if err := state.ResetAll(); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}

	if len(state.Templates()) != 0 || len(state.Logs()) != 0 || len(state.PersonalBests()) != 0 {
		t.Error("in-memory state not cleared")
	}
	for _, key := range []string{kvstore.KeyAppState, kvstore.KeyActiveSession, kvstore.KeyTimerState} {
		if _, err := store.Get(key); !errors.Is(err, kvstore.ErrNotFound) {
			t.Errorf("key %s still present after reset", key)
		}
	}
}
