// Package catalog holds the built-in exercise definitions, the example
// template catalog, and the lookup used when a screen resolves an
// exercise reference from the active session.
package catalog

import "github.com/meltforce/liftlog/internal/models"

// Placeholder is substituted when an exercise reference cannot be
// resolved at all. Screens render it instead of failing; a stale session
// must never crash the session view.
var Placeholder = models.ExerciseMeta{Name: "Exercise", BodyPart: "", Sets: 0, Reps: 0}

// CustomLookup resolves a catalog id to a user-created definition.
type CustomLookup interface {
	CustomExercise(id string) (models.ExerciseDefinition, bool)
}

// Resolve finds the display metadata for an exercise instance. It falls
// through three tiers: the exercise as embedded in the workout, the
// custom catalog, then the built-in catalog. When every tier misses it
// returns the placeholder rather than an error.
func Resolve(workout *models.Workout, customs CustomLookup, meta models.ExerciseMeta) models.ExerciseMeta {
	if workout != nil {
		for _, ex := range workout.Exercises {
			if ex.ID == meta.ExerciseID {
				return models.ExerciseMeta{
					ExerciseID: ex.ID,
					Name:       ex.Name,
					BodyPart:   ex.BodyPart,
					Sets:       ex.Sets,
					Reps:       ex.Reps,
				}
			}
		}
	}

	if customs != nil {
		if def, ok := customs.CustomExercise(meta.ExerciseID); ok {
			return metaFromDefinition(def)
		}
	}

	if def, ok := Builtin(meta.ExerciseID); ok {
		return metaFromDefinition(def)
	}

	return Placeholder
}

func metaFromDefinition(def models.ExerciseDefinition) models.ExerciseMeta {
	return models.ExerciseMeta{
		ExerciseID: def.ID,
		Name:       def.Name,
		BodyPart:   def.BodyPart,
		Sets:       def.DefaultSets,
		Reps:       def.DefaultReps,
	}
}
