// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pulsetrack/pulsetrack/internal/adapters/repository"
	"github.com/pulsetrack/pulsetrack/internal/domain/dedupe"
	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/pauses"
	"github.com/pulsetrack/pulsetrack/internal/domain/rankings"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// SubmitSession stores a session and queues it for scoring.
	SubmitSession(ctx context.Context, s model.Session) error

	// Read operations over stored sessions.
	Session(ctx context.Context, id string) (model.Session, error)
	ProviderRankings(ctx context.Context, typeFilter model.SessionType, limit int) []*rankings.Stats
	TeamRankings(ctx context.Context, typeFilter model.SessionType, limit int) []*rankings.Stats
	DashboardKPIs(ctx context.Context) rankings.KPIs
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	sessionsHandler  *SessionsHandler
	rankingsHandler  *RankingsHandler
	dashboardHandler *DashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		sessionsHandler:  NewSessionsHandler(deps),
		rankingsHandler:  NewRankingsHandler(deps),
		dashboardHandler: NewDashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleGetSession, "session"))
	mux.HandleFunc("/rankings/providers", MetricsMiddleware(s.rankingsHandler.HandleProviders, "rankings_providers"))
	mux.HandleFunc("/rankings/teams", MetricsMiddleware(s.rankingsHandler.HandleTeams, "rankings_teams"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
}

// sessionRequest mirrors the OpenAPI schema for POST /sessions.
type sessionRequest struct {
	ImportID        string              `json:"import_id"`
	SessionType     string              `json:"session_type"`
	Date            string              `json:"date"`
	Time            string              `json:"time"`
	EventType       string              `json:"event_type"`
	Outcome         string              `json:"outcome"`
	ProviderID      string              `json:"provider_id"`
	ProviderName    string              `json:"provider_name"`
	TeamID          string              `json:"team_id"`
	ShocksDelivered *int                `json:"shocks_delivered"`
	Metrics         *model.MetricRecord `json:"metrics"`
	PauseRows       []pauses.Row        `json:"pause_rows"`
}

func (r *sessionRequest) validate() error {
	switch {
	case !model.SessionType(r.SessionType).Valid():
		return errors.New("session_type must be real_call or simulated")
	case strings.TrimSpace(r.Date) == "":
		return errors.New("missing date")
	case strings.TrimSpace(r.ProviderID) == "" && strings.TrimSpace(r.ProviderName) == "":
		return errors.New("missing provider")
	}
	return nil
}

// toSession builds the stored session. Pause rows, when present, are
// parsed and merged into the metric record before storage so the scorer
// sees one flat record.
func (r *sessionRequest) toSession(ctx context.Context) model.Session {
	if strings.TrimSpace(r.ImportID) == "" {
		r.ImportID = uuid.NewString()
	}

	rec := r.Metrics
	if len(r.PauseRows) > 0 {
		if rec == nil {
			rec = &model.MetricRecord{}
		}
		summary := pauses.Parse(ctx, r.PauseRows)
		if !summary.Empty() {
			rec.ApplyPauseSummary(summary)
		}
	}

	return model.Session{
		ID:              r.ImportID,
		Type:            model.SessionType(r.SessionType),
		Status:          model.StatusComplete,
		Date:            r.Date,
		Time:            r.Time,
		EventType:       r.EventType,
		Outcome:         r.Outcome,
		ProviderID:      r.ProviderID,
		ProviderName:    r.ProviderName,
		TeamID:          r.TeamID,
		ShocksDelivered: r.ShocksDelivered,
		Metrics:         rec,
	}
}

type ackResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
