package catalog

import "github.com/meltforce/liftlog/internal/models"

// ExampleTemplates returns the fixed example routines users can
// instantiate into their own catalog. Each call returns fresh copies;
// ids and timestamps are assigned when a template is actually added.
func ExampleTemplates() []models.Template {
	return []models.Template{
		{
			Name: "Push Pull Legs",
			Workouts: []models.Workout{
				{
					ID:   "push",
					Name: "Push",
					Exercises: []models.Exercise{
						exerciseSlot("bench-press", 4, 6),
						exerciseSlot("overhead-press", 3, 8),
						exerciseSlot("incline-dumbbell-press", 3, 10),
						exerciseSlot("triceps-pushdown", 3, 12),
						exerciseSlot("lateral-raise", 3, 12),
					},
				},
				{
					ID:   "pull",
					Name: "Pull",
					Exercises: []models.Exercise{
						exerciseSlot("deadlift", 3, 5),
						exerciseSlot("pull-up", 3, 8),
						exerciseSlot("seated-cable-row", 3, 10),
						exerciseSlot("face-pull", 3, 15),
						exerciseSlot("barbell-curl", 3, 10),
					},
				},
				{
					ID:   "legs",
					Name: "Legs",
					Exercises: []models.Exercise{
						exerciseSlot("squat", 4, 6),
						exerciseSlot("romanian-deadlift", 3, 8),
						exerciseSlot("leg-press", 3, 10),
						exerciseSlot("leg-curl", 3, 12),
						exerciseSlot("calf-raise", 4, 12),
					},
				},
			},
		},
		{
			Name: "Full Body Basics",
			Workouts: []models.Workout{
				{
					ID:   "day-a",
					Name: "Day A",
					Exercises: []models.Exercise{
						exerciseSlot("squat", 3, 5),
						exerciseSlot("bench-press", 3, 8),
						exerciseSlot("barbell-row", 3, 8),
						exerciseSlot("plank", 3, 1),
					},
				},
				{
					ID:   "day-b",
					Name: "Day B",
					Exercises: []models.Exercise{
						exerciseSlot("deadlift", 3, 5),
						exerciseSlot("overhead-press", 3, 8),
						exerciseSlot("lat-pulldown", 3, 10),
						exerciseSlot("hanging-leg-raise", 3, 10),
					},
				},
			},
		},
	}
}

// exerciseSlot embeds a built-in definition with explicit targets.
func exerciseSlot(id string, sets, reps int) models.Exercise {
	def, ok := Builtin(id)
	if !ok {
		return models.Exercise{ID: id, Name: "Exercise", Sets: sets, Reps: reps}
	}
	return models.Exercise{
		ID:       def.ID,
		Name:     def.Name,
		BodyPart: def.BodyPart,
		Sets:     sets,
		Reps:     reps,
	}
}
