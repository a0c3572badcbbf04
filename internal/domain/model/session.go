// Package model contains domain models passed between layers.
package model

import "time"

// SessionType tags how a session was produced.
type SessionType string

// Session types.
const (
	SessionTypeRealCall  SessionType = "real_call"
	SessionTypeSimulated SessionType = "simulated"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == SessionTypeRealCall || t == SessionTypeSimulated
}

// SessionStatus tracks import/processing state.
type SessionStatus string

// Session statuses.
const (
	StatusImporting SessionStatus = "importing"
	StatusComplete  SessionStatus = "complete"
	StatusFailed    SessionStatus = "failed"
)

// Session is a single CPR incident or training run. MetricRecord and
// ScoreBreakdown are owned by the session; the scoring and aggregation
// layers never hold them independently.
type Session struct {
	ID           string        `json:"id"`
	Type         SessionType   `json:"session_type"`
	Status       SessionStatus `json:"status"`
	Date         string        `json:"date"` // YYYY-MM-DD
	Time         string        `json:"time,omitempty"`
	EventType    string        `json:"event_type,omitempty"`
	Outcome      string        `json:"outcome,omitempty"`
	ProviderID   string        `json:"provider_id,omitempty"`
	ProviderName string        `json:"provider_name,omitempty"`
	TeamID       string        `json:"team_id,omitempty"`

	// ShocksDelivered is nil when unknown. Zero means a confirmed
	// non-shockable rhythm, which the scorer treats differently.
	ShocksDelivered *int `json:"shocks_delivered,omitempty"`

	Metrics *MetricRecord `json:"metrics,omitempty"`

	// Score and Breakdown are set exactly once, by the scoring worker or
	// the backfill sweep, and never overwritten.
	Score     *int            `json:"score,omitempty"`
	Breakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Scoreable reports whether the session is eligible for scoring: only
// real, complete sessions with a metric record carry a JcLS score.
func (s *Session) Scoreable() bool {
	return s.Type == SessionTypeRealCall && s.Status == StatusComplete && s.Metrics != nil
}
