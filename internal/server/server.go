package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/liftlog/internal/appstate"
	"github.com/meltforce/liftlog/internal/generate"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/timer"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	state    *appstate.State
	sessions *session.Manager
	timer    *timer.Tracker
	gen      *generate.Client
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a Server with all routes configured. gen may be nil when
// no generation service is configured; identity defaults to the local
// development user until SetTailscale is called.
func New(state *appstate.State, sessions *session.Manager, tracker *timer.Tracker, gen *generate.Client, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		state:    state,
		sessions: sessions,
		timer:    tracker,
		gen:      gen,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc *local.Client) {
	s.identity = TailscaleIdentity(lc, s.log)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	// Indirection so SetTailscale can swap the identity source after
	// the router is built.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.identity(next).ServeHTTP(w, r)
		})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates", s.handleAddTemplate)
		r.Get("/templates/examples", s.handleExampleTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Put("/templates/{id}", s.handleUpdateTemplate)
		r.Delete("/templates/{id}", s.handleDeleteTemplate)

		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleAddCustomExercise)

		r.Get("/logs", s.handleListLogs)
		r.Delete("/logs/{id}", s.handleDeleteLog)
		r.Get("/records", s.handlePersonalBests)

		r.Get("/session", s.handleCurrentSession)
		r.Post("/session/start", s.handleStartSession)
		r.Post("/session/complete", s.handleCompleteSession)
		r.Post("/session/quit", s.handleQuitSession)
		r.Post("/session/exercises", s.handleAddSessionExercise)
		r.Delete("/session/exercises/{instanceId}", s.handleRemoveSessionExercise)
		r.Post("/session/exercises/{instanceId}/sets", s.handleAddSet)
		r.Patch("/session/exercises/{instanceId}/sets/{index}", s.handleUpdateSet)
		r.Delete("/session/exercises/{instanceId}/sets/{index}", s.handleRemoveSet)

		r.Get("/timer", s.handleTimerState)
		r.Post("/timer/start", s.handleTimerStart)
		r.Post("/timer/stop", s.handleTimerStop)
		r.Post("/timer/reset", s.handleTimerReset)

		r.Post("/generate", s.handleGenerate)

		// Destructive; API key required on top of network identity.
		r.With(APIKeyAuth(s.apiKey)).Post("/reset", s.handleResetAll)
	})
}
