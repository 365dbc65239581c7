package mcp

import (
	"context"

	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

// SessionView is the active session together with its resolved
// exercises, as exposed to MCP clients.
type SessionView struct {
	Session   *models.ActiveSession  `json:"session"`
	Exercises []session.ExerciseView `json:"exercises"`
}

// DataSource abstracts the data layer for MCP tools. Both Local (in
// process) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Templates(ctx context.Context) ([]models.Template, error)
	Template(ctx context.Context, id string) (*models.Template, error)
	Logs(ctx context.Context) ([]models.WorkoutLog, error)
	PersonalBests(ctx context.Context) ([]models.PersonalBest, error)
	CurrentSession(ctx context.Context) (*SessionView, error)
}

// Local serves MCP tools straight from the in-process state.
type Local struct {
	state    *appstate.State
	sessions *session.Manager
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal wraps the app state and session manager as a DataSource.
func NewLocal(state *appstate.State, sessions *session.Manager) *Local {
	return &Local{state: state, sessions: sessions}
}

func (l *Local) Templates(_ context.Context) ([]models.Template, error) {
	return l.state.Templates(), nil
}

func (l *Local) Template(_ context.Context, id string) (*models.Template, error) {
	t, ok := l.state.Template(id)
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (l *Local) Logs(_ context.Context) ([]models.WorkoutLog, error) {
	return l.state.Logs(), nil
}

func (l *Local) PersonalBests(_ context.Context) ([]models.PersonalBest, error) {
	return l.state.PersonalBests(), nil
}

func (l *Local) CurrentSession(_ context.Context) (*SessionView, error) {
	current := l.sessions.Current()
	if current == nil {
		return nil, nil
	}
	return &SessionView{Session: current, Exercises: l.sessions.View()}, nil
}
