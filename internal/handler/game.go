package handler

import (
	"net/http"

	"github.com/bananagame/platform/internal/auth"
	"github.com/bananagame/platform/internal/game"
)

// GameHandler exposes the game session commands over HTTP.
type GameHandler struct {
	session *game.Session
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(session *game.Session) *GameHandler {
	return &GameHandler{session: session}
}

// Start handles POST /game/start.
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	h.session.Start(r.Context(), userID)
	RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Question handles POST /game/question. The solution stays server-side;
// only the puzzle reaches the client.
func (h *GameHandler) Question(w http.ResponseWriter, r *http.Request) {
	q, err := h.session.RequestQuestion(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"question": q.Question,
	})
}

type answerRequest struct {
	Answer *int `json:"answer"`
}

// Answer handles POST /game/answer.
func (h *GameHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var input answerRequest
	if err := DecodeJSON(r, &input); err != nil || input.Answer == nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "answer must be a number",
		})
		return
	}

	isCorrect, err := h.session.SubmitAnswer(r.Context(), *input.Answer)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"isCorrect": isCorrect,
		"score":     h.session.Score(),
	})
}

// End handles POST /game/end.
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	res := h.session.End(r.Context())
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"finalScore": res.FinalScore,
		"highScore":  res.HighScore,
	})
}

// Score handles GET /game/score.
func (h *GameHandler) Score(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"score":     h.session.Score(),
		"isPlaying": h.session.IsPlaying(),
	})
}
