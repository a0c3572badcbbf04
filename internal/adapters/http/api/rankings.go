// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/pulsetrack/pulsetrack/internal/domain/model"
	"github.com/pulsetrack/pulsetrack/internal/domain/rankings"
)

type rankingQuery func(ctx context.Context, typeFilter model.SessionType, limit int) []*rankings.Stats

// RankingsHandler handles leaderboard queries for providers and teams.
type RankingsHandler struct {
	deps Dependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps Dependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleProviders handles GET /rankings/providers?type=&limit= requests.
func (h *RankingsHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.ProviderRankings)
}

// HandleTeams handles GET /rankings/teams?type=&limit= requests.
func (h *RankingsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.deps.TeamRankings)
}

func (h *RankingsHandler) handle(w http.ResponseWriter, r *http.Request, query rankingQuery) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	typeFilter := model.SessionType(r.URL.Query().Get("type"))
	if typeFilter == "all" {
		typeFilter = ""
	}
	if typeFilter != "" && !typeFilter.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request",
			errors.New("type must be real_call or simulated"))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request",
				errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	rows := query(r.Context(), typeFilter, limit)
	writeJSON(w, http.StatusOK, rows)
}
