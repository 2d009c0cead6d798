package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/bananagame/platform/internal/auth"
	"github.com/bananagame/platform/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ScoreReader provides the read side of the score store.
type ScoreReader interface {
	TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	UserHighScore(ctx context.Context, userID int64) (int, error)
}

// LeaderboardHandler serves high-score queries.
type LeaderboardHandler struct {
	store ScoreReader
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(store ScoreReader) *LeaderboardHandler {
	return &LeaderboardHandler{store: store}
}

// Leaderboard handles GET /leaderboard.
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(w, domain.ErrValidation("limit must be an integer"))
			return
		}
		limit, err = domain.ValidateLimit(parsed, maxLeaderboardLimit)
		if err != nil {
			RespondError(w, domain.ErrValidation(err.Error()))
			return
		}
	}

	entries, err := h.store.TopScores(r.Context(), limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"highScores": entries,
	})
}

// MyHighScore handles GET /users/me/highscore.
func (h *LeaderboardHandler) MyHighScore(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == 0 {
		RespondError(w, domain.ErrUnauthorized("no auth context"))
		return
	}

	high, err := h.store.UserHighScore(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"highScore": high,
	})
}
