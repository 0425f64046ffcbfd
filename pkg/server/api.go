package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/trytobebee/gridsnake/pkg/config"
	"github.com/trytobebee/gridsnake/pkg/game"
)

const maxLeaderboardLimit = 100

var validate = validator.New(validator.WithRequiredStructEnabled())

// ScoreRequest is the body of POST /api/leaderboard.
type ScoreRequest struct {
	Username string `json:"username" validate:"required,max=20"`
	Score    int    `json:"score" validate:"gt=0"`
	Mode     string `json:"mode" validate:"required,oneof=walls pass-through"`
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gameInfos())
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}
	respondJSON(w, http.StatusOK, g.sess.Snapshot().Snapshot())
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode != "" {
		if _, err := game.ParseMode(mode); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	limit := config.DefaultLeaderboardTop
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := s.scores.Top(r.Context(), mode, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load leaderboard")
		respondError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) postScore(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = s.playerName(req.Username)
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, _ := game.ParseMode(req.Mode)
	res, err := s.scores.SubmitScore(r.Context(), req.Username, req.Score, mode)
	if err != nil {
		s.log.Error().Err(err).Str("player", req.Username).Msg("failed to submit score")
		respondError(w, http.StatusInternalServerError, "failed to submit score")
		return
	}
	s.log.Info().Str("player", req.Username).Int("score", req.Score).Int("rank", res.Rank).Msg("score submitted")
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) getPlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		respondError(w, http.StatusServiceUnavailable, "leaderboard unavailable")
		return
	}

	name := s.playerName(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "player name required")
		return
	}
	stats, err := s.scores.PlayerStats(r.Context(), name)
	if err != nil {
		s.log.Error().Err(err).Str("player", name).Msg("failed to load player stats")
		respondError(w, http.StatusInternalServerError, "failed to load player stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
