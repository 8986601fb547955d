package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/transcendia/gamehub/internal/user/service"
	"github.com/transcendia/gamehub/internal/user/store"
	"github.com/transcendia/gamehub/pkg/httpx"
	"github.com/transcendia/gamehub/pkg/slogx"
)

type MatchesHandler struct {
	StatsService *service.StatsService
}

type recordMatchRequest struct {
	Player1ID    string `json:"player1_id"`
	Player2ID    string `json:"player2_id"`
	ScorePlayer1 int    `json:"score_player1"`
	ScorePlayer2 int    `json:"score_player2"`
}

// HandleRecord handles POST /v1/matches.
func (h *MatchesHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req recordMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	match, err := h.StatsService.RecordMatch(ctx, req.Player1ID, req.Player2ID, req.ScorePlayer1, req.ScorePlayer2)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("record match failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"type":  httpx.TypeSuccess,
		"match": match,
	})
}

// HandleStats handles GET /v1/users/{id}/stats.
func (h *MatchesHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	stats, err := h.StatsService.UserStats(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		slogx.FromContext(ctx).Error("load stats failed", "user_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type":  httpx.TypeSuccess,
		"stats": stats,
	})
}

// HandleMatches handles GET /v1/users/{id}/matches.
func (h *MatchesHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	id := r.PathValue("id")
	matches, err := h.StatsService.ListMatches(ctx, id, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("list matches failed", "user_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"type":    httpx.TypeSuccess,
		"matches": matches,
	})
}
