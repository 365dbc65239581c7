package models

import (
	"fmt"
	"time"
)

// BodyPart classifies an exercise by the primary region it trains.
type BodyPart string

const (
	BodyPartChest     BodyPart = "Chest"
	BodyPartBack      BodyPart = "Back"
	BodyPartLegs      BodyPart = "Legs"
	BodyPartShoulders BodyPart = "Shoulders"
	BodyPartArms      BodyPart = "Arms"
	BodyPartCore      BodyPart = "Core"
	BodyPartFullBody  BodyPart = "FullBody"
	BodyPartCardio    BodyPart = "Cardio"
)

// Valid reports whether b is one of the known body parts.
func (b BodyPart) Valid() bool {
	switch b {
	case BodyPartChest, BodyPartBack, BodyPartLegs, BodyPartShoulders,
		BodyPartArms, BodyPartCore, BodyPartFullBody, BodyPartCardio:
		return true
	}
	return false
}

// ExerciseDefinition is a catalog entry describing a movement and its
// default volume. Built-in definitions are immutable; custom ones are
// user-created and persisted indefinitely.
type ExerciseDefinition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	BodyPart    BodyPart `json:"bodyPart"`
	DefaultSets int      `json:"defaultSets"`
	DefaultReps int      `json:"defaultReps"`
	IsCustom    bool     `json:"isCustom"`
}

// Validate checks a definition before it enters the catalog.
func (d ExerciseDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("exercise name is required")
	}
	if !d.BodyPart.Valid() {
		return fmt.Errorf("invalid body part %q", d.BodyPart)
	}
	if d.DefaultSets <= 0 || d.DefaultReps <= 0 {
		return fmt.Errorf("default sets and reps must be positive")
	}
	return nil
}

// Exercise is a snapshot of a definition embedded in a workout slot:
// the definition's identity plus the target sets/reps for that slot.
// Editing the definition later does not change already-embedded copies.
type Exercise struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	BodyPart BodyPart `json:"bodyPart"`
	Sets     int      `json:"sets"`
	Reps     int      `json:"reps"`
}

// Workout is a named ordered list of exercises, owned by exactly one
// template. Workouts are copied by value when a template is duplicated.
type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy of the workout.
func (w Workout) Clone() Workout {
	out := w
	out.Exercises = make([]Exercise, len(w.Exercises))
	copy(out.Exercises, w.Exercises)
	return out
}

// Template is a reusable named routine containing one or more workouts.
// Template names are unique (case-insensitive) across the catalog.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Workouts  []Workout `json:"workouts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	out := t
	out.Workouts = make([]Workout, len(t.Workouts))
	for i, w := range t.Workouts {
		out.Workouts[i] = w.Clone()
	}
	return out
}

// FindWorkout returns the workout with the given id, or false.
func (t Template) FindWorkout(workoutID string) (Workout, bool) {
	for _, w := range t.Workouts {
		if w.ID == workoutID {
			return w, true
		}
	}
	return Workout{}, false
}

// WorkoutSet is one logged attempt. Sets have no identity of their own;
// they are addressed by (exercise instance id, index).
type WorkoutSet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	RPE    float64 `json:"rpe,omitempty"`
}

// Validate checks a set's ranges.
func (s WorkoutSet) Validate() error {
	if s.Weight < 0 {
		return fmt.Errorf("weight must be non-negative")
	}
	if s.Reps < 0 {
		return fmt.Errorf("reps must be non-negative")
	}
	if s.RPE < 0 || s.RPE > 10 {
		return fmt.Errorf("rpe must be between 0 and 10")
	}
	return nil
}

// Beats reports whether s outranks other under the personal-best
// ordering: strictly greater weight, or equal weight with strictly
// greater reps. Lower weight never wins regardless of reps.
func (s WorkoutSet) Beats(other WorkoutSet) bool {
	if s.Weight != other.Weight {
		return s.Weight > other.Weight
	}
	return s.Reps > other.Reps
}

// BestSet returns the best set of a list under the Beats ordering.
// The second return is false for an empty list.
func BestSet(sets []WorkoutSet) (WorkoutSet, bool) {
	if len(sets) == 0 {
		return WorkoutSet{}, false
	}
	best := sets[0]
	for _, s := range sets[1:] {
		if s.Beats(best) {
			best = s
		}
	}
	return best, true
}

// ExerciseMeta is the denormalized per-instance snapshot kept alongside
// an active session's sets, so the session survives the source template
// being edited or deleted. ExerciseID is the catalog id of the movement.
type ExerciseMeta struct {
	ExerciseID string   `json:"exerciseId"`
	Name       string   `json:"name"`
	BodyPart   BodyPart `json:"bodyPart"`
	Sets       int      `json:"sets"`
	Reps       int      `json:"reps"`
}

// ActiveSession is the single in-progress workout. Exercises and
// ExerciseData always have identical key sets, and Order lists exactly
// those keys in display order.
type ActiveSession struct {
	TemplateID   string                  `json:"templateId"`
	WorkoutID    string                  `json:"workoutId"`
	TemplateName string                  `json:"templateName"`
	WorkoutName  string                  `json:"workoutName"`
	Order        []string                `json:"order"`
	Exercises    map[string][]WorkoutSet `json:"exercises"`
	ExerciseData map[string]ExerciseMeta `json:"exerciseData"`
	StartTime    int64                   `json:"startTime"` // unix milliseconds
}

// Clone returns a deep copy of the session.
func (s *ActiveSession) Clone() *ActiveSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Order = make([]string, len(s.Order))
	copy(out.Order, s.Order)
	out.Exercises = make(map[string][]WorkoutSet, len(s.Exercises))
	for id, sets := range s.Exercises {
		cp := make([]WorkoutSet, len(sets))
		copy(cp, sets)
		out.Exercises[id] = cp
	}
	out.ExerciseData = make(map[string]ExerciseMeta, len(s.ExerciseData))
	for id, meta := range s.ExerciseData {
		out.ExerciseData[id] = meta
	}
	return &out
}

// LogExercise is one exercise's logged sets within a completed session.
type LogExercise struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Sets []WorkoutSet `json:"sets"`
}

// WorkoutLog is the immutable record of a completed session. Names are
// copied at completion time so renaming a template later does not
// rewrite history.
type WorkoutLog struct {
	ID           string        `json:"id"`
	TemplateID   string        `json:"templateId"`
	TemplateName string        `json:"templateName"`
	WorkoutID    string        `json:"workoutId"`
	WorkoutName  string        `json:"workoutName"`
	Date         time.Time     `json:"date"`
	DurationMs   int64         `json:"duration"`
	Exercises    []LogExercise `json:"exercises"`
}

// Clone returns a deep copy of the log.
func (l WorkoutLog) Clone() WorkoutLog {
	out := l
	out.Exercises = make([]LogExercise, len(l.Exercises))
	for i, ex := range l.Exercises {
		cp := ex
		cp.Sets = make([]WorkoutSet, len(ex.Sets))
		copy(cp.Sets, ex.Sets)
		out.Exercises[i] = cp
	}
	return out
}

// PersonalBest is the best-ever logged set for a catalog exercise.
type PersonalBest struct {
	ExerciseID   string    `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	BodyPart     BodyPart  `json:"bodyPart"`
	Weight       float64   `json:"weight"`
	Reps         int       `json:"reps"`
	Date         time.Time `json:"date"`
}
