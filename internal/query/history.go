package query

import (
	"context"

	"github.com/rs/zerolog"
)

// Entry is one recorded query.
type Entry struct {
	Query        string
	Intent       string
	ResultsCount int
	SessionID    string
	UserID       string
}

// History records executed queries. Recording is best-effort: a
// failure is warn-logged and never surfaces to the caller.
type History struct {
	logger *zerolog.Logger
}

// NewHistory creates a log-backed History.
func NewHistory(logger *zerolog.Logger) *History {
	return &History{logger: logger}
}

// Record emits one history entry.
func (h *History) Record(_ context.Context, e Entry) {
	h.logger.Info().
		Str("event", "query_history").
		Str("query", e.Query).
		Str("intent", e.Intent).
		Int("results_count", e.ResultsCount).
		Str("session_id", e.SessionID).
		Str("user_id", e.UserID).
		Msg("Query recorded")
}
