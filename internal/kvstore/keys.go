package kvstore

// The persisted state layout is three independent string-keyed blobs.
const (
	// KeyActiveSession holds the active workout session, written and
	// cleared directly by the session manager.
	KeyActiveSession = "active_session"

	// KeyAppState holds the durable application state (templates, logs,
	// personal bests, custom exercises) through the JSON adapter.
	KeyAppState = "app_state"

	// KeyTimerState holds the elapsed-time tracker's small state triple.
	KeyTimerState = "timer_state"
)
