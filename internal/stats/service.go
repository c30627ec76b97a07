// Package stats exposes the REST query surface for player statistics.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/players"
)

// StatsProvider defines what the handlers need from the players app
type StatsProvider interface {
	GetStats(ctx context.Context, username string) (*players.PlayerStats, error)
}

// PickupsApp defines what the handlers need from the pickups app
type PickupsApp interface {
	ReportPickups(ctx context.Context, username string, items []string) error
	GetItemStats(ctx context.Context, username string) (map[string]int64, error)
}

// Service serves the stats and pickups HTTP endpoints.
type Service struct {
	stats   StatsProvider
	pickups PickupsApp
}

// NewService creates a new stats HTTP service
func NewService(stats StatsProvider, pickups PickupsApp) *Service {
	return &Service{
		stats:   stats,
		pickups: pickups,
	}
}

// RegisterRoutes registers the stats HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /stats/{account}", s.handleGetStats)
	mux.HandleFunc("GET /stats/{account}/items", s.handleGetItemStats)
	mux.HandleFunc("POST /pickups", s.handleReportPickups)
}

func (s *Service) handleGetStats(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")

	stats, err := s.stats.GetStats(r.Context(), account)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Service) handleGetItemStats(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")

	counts, err := s.pickups.GetItemStats(r.Context(), account)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

type reportPickupsRequest struct {
	Account string   `json:"account"`
	Items   []string `json:"items"`
}

func (s *Service) handleReportPickups(w http.ResponseWriter, r *http.Request) {
	var req reportPickupsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Account == "" {
		http.Error(w, "account is required", http.StatusBadRequest)
		return
	}

	if err := s.pickups.ReportPickups(r.Context(), req.Account, req.Items); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, players.ErrNotFound) {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("stats request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
