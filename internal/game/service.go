package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Tylerea12/trash-panda-pickup/internal/catalog"
	"github.com/Tylerea12/trash-panda-pickup/internal/models"
)

// GameApp defines what the HTTP layer needs from the game application
type GameApp interface {
	StartSolo(ctx context.Context, username string, tier catalog.SizeTier, durationSeconds int) (*models.Game, error)
	StartChallenge(ctx context.Context, username string, tier catalog.SizeTier, durationSeconds int) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	JoinGame(ctx context.Context, gameID uuid.UUID, username string) (*models.Game, error)
}

// Service exposes the game lifecycle over HTTP.
type Service struct {
	app GameApp
}

// NewService creates a new game HTTP service
func NewService(app GameApp) *Service {
	return &Service{
		app: app,
	}
}

// RegisterRoutes registers the game HTTP routes
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /games/{id}/join", s.handleJoinGame)
}

type createGameRequest struct {
	Username        string `json:"username"`
	Size            string `json:"size"`
	DurationSeconds *int   `json:"durationSeconds"`
	Mode            string `json:"mode"`
}

type joinGameRequest struct {
	Username string `json:"username"`
}

const defaultDurationSeconds = 300

func (s *Service) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	duration := defaultDurationSeconds
	if req.DurationSeconds != nil {
		duration = *req.DurationSeconds
	}

	tier := catalog.SizeTier(req.Size)

	var (
		g   *models.Game
		err error
	)
	if req.Mode == "challenge" {
		g, err = s.app.StartChallenge(r.Context(), req.Username, tier, duration)
	} else {
		g, err = s.app.StartSolo(r.Context(), req.Username, tier, duration)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, playViewFor(g, req.Username))
}

func (s *Service) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	g, err := s.app.GetGame(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playViewFor(g, r.URL.Query().Get("username")))
}

func (s *Service) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	var req joinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	g, err := s.app.JoinGame(r.Context(), id, req.Username)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, playViewFor(g, req.Username))
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "game not found", http.StatusNotFound)
	case errors.Is(err, ErrSessionFull):
		http.Error(w, "game already has two players", http.StatusConflict)
	case errors.Is(err, catalog.ErrConfiguration):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("game request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func playViewFor(g *models.Game, account string) PlayView {
	return PlayView{
		SessionID:       g.ID.String(),
		AccountName:     account,
		Items:           g.Items,
		DurationSeconds: g.DurationSeconds,
		StartTimestamp:  g.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
