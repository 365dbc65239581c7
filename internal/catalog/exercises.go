package catalog

import "github.com/meltforce/liftlog/internal/models"

// builtins is the static exercise catalog loaded at startup. Entries are
// immutable; user-created movements live in the app state as custom
// definitions instead.
var builtins = []models.ExerciseDefinition{
	{ID: "bench-press", Name: "Bench Press", BodyPart: models.BodyPartChest, DefaultSets: 3, DefaultReps: 8},
	{ID: "incline-dumbbell-press", Name: "Incline Dumbbell Press", BodyPart: models.BodyPartChest, DefaultSets: 3, DefaultReps: 10},
	{ID: "cable-fly", Name: "Cable Fly", BodyPart: models.BodyPartChest, DefaultSets: 3, DefaultReps: 12},
	{ID: "push-up", Name: "Push-Up", BodyPart: models.BodyPartChest, DefaultSets: 3, DefaultReps: 15},
	{ID: "deadlift", Name: "Deadlift", BodyPart: models.BodyPartBack, DefaultSets: 3, DefaultReps: 5},
	{ID: "barbell-row", Name: "Barbell Row", BodyPart: models.BodyPartBack, DefaultSets: 3, DefaultReps: 8},
	{ID: "pull-up", Name: "Pull-Up", BodyPart: models.BodyPartBack, DefaultSets: 3, DefaultReps: 8},
	{ID: "lat-pulldown", Name: "Lat Pulldown", BodyPart: models.BodyPartBack, DefaultSets: 3, DefaultReps: 10},
	{ID: "seated-cable-row", Name: "Seated Cable Row", BodyPart: models.BodyPartBack, DefaultSets: 3, DefaultReps: 10},
	{ID: "squat", Name: "Squat", BodyPart: models.BodyPartLegs, DefaultSets: 3, DefaultReps: 5},
	{ID: "romanian-deadlift", Name: "Romanian Deadlift", BodyPart: models.BodyPartLegs, DefaultSets: 3, DefaultReps: 8},
	{ID: "leg-press", Name: "Leg Press", BodyPart: models.BodyPartLegs, DefaultSets: 3, DefaultReps: 10},
	{ID: "leg-curl", Name: "Leg Curl", BodyPart: models.BodyPartLegs, DefaultSets: 3, DefaultReps: 12},
	{ID: "calf-raise", Name: "Calf Raise", BodyPart: models.BodyPartLegs, DefaultSets: 4, DefaultReps: 12},
	{ID: "lunge", Name: "Lunge", BodyPart: models.BodyPartLegs, DefaultSets: 3, DefaultReps: 10},
	{ID: "overhead-press", Name: "Overhead Press", BodyPart: models.BodyPartShoulders, DefaultSets: 3, DefaultReps: 8},
	{ID: "lateral-raise", Name: "Lateral Raise", BodyPart: models.BodyPartShoulders, DefaultSets: 3, DefaultReps: 12},
	{ID: "face-pull", Name: "Face Pull", BodyPart: models.BodyPartShoulders, DefaultSets: 3, DefaultReps: 15},
	{ID: "barbell-curl", Name: "Barbell Curl", BodyPart: models.BodyPartArms, DefaultSets: 3, DefaultReps: 10},
	{ID: "hammer-curl", Name: "Hammer Curl", BodyPart: models.BodyPartArms, DefaultSets: 3, DefaultReps: 10},
	{ID: "triceps-pushdown", Name: "Triceps Pushdown", BodyPart: models.BodyPartArms, DefaultSets: 3, DefaultReps: 12},
	{ID: "skull-crusher", Name: "Skull Crusher", BodyPart: models.BodyPartArms, DefaultSets: 3, DefaultReps: 10},
	{ID: "plank", Name: "Plank", BodyPart: models.BodyPartCore, DefaultSets: 3, DefaultReps: 1},
	{ID: "hanging-leg-raise", Name: "Hanging Leg Raise", BodyPart: models.BodyPartCore, DefaultSets: 3, DefaultReps: 10},
	{ID: "cable-crunch", Name: "Cable Crunch", BodyPart: models.BodyPartCore, DefaultSets: 3, DefaultReps: 15},
	{ID: "clean-and-press", Name: "Clean and Press", BodyPart: models.BodyPartFullBody, DefaultSets: 3, DefaultReps: 5},
	{ID: "kettlebell-swing", Name: "Kettlebell Swing", BodyPart: models.BodyPartFullBody, DefaultSets: 3, DefaultReps: 15},
	{ID: "rowing-machine", Name: "Rowing Machine", BodyPart: models.BodyPartCardio, DefaultSets: 1, DefaultReps: 1},
	{ID: "treadmill-run", Name: "Treadmill Run", BodyPart: models.BodyPartCardio, DefaultSets: 1, DefaultReps: 1},
}

// Builtins returns the built-in exercise definitions. The slice is a copy;
// callers cannot mutate the catalog.
func Builtins() []models.ExerciseDefinition {
	out := make([]models.ExerciseDefinition, len(builtins))
	copy(out, builtins)
	return out
}

// Builtin looks up a built-in definition by catalog id.
func Builtin(id string) (models.ExerciseDefinition, bool) {
	for _, d := range builtins {
		if d.ID == id {
			return d, true
		}
	}
	return models.ExerciseDefinition{}, false
}
