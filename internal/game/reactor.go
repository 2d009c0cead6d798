package game

import (
	"context"
	"log/slog"

	"github.com/bananagame/platform/internal/event"
)

// Reactor bridges session events to persistence and announcements, keeping
// storage policy out of the session itself.
type Reactor struct {
	bus    *event.Bus
	scores ScoreStore
	logger *slog.Logger
}

// NewReactor creates the reactive handler set.
func NewReactor(bus *event.Bus, scores ScoreStore, logger *slog.Logger) *Reactor {
	return &Reactor{bus: bus, scores: scores, logger: logger}
}

// Register wires the reactions onto the bus. Both run fire-and-forget: the
// publishing command never waits for them. Returns an unsubscribe for both.
func (r *Reactor) Register() func() {
	unsubAnswer := r.bus.SubscribeAsync(event.AnswerSubmitted, r.HandleAnswerSubmitted)
	unsubEnded := r.bus.SubscribeAsync(event.GameEnded, r.HandleGameEnded)
	return func() {
		unsubAnswer()
		unsubEnded()
	}
}

// HandleAnswerSubmitted checks a correct answer's running score against the
// persisted high score and announces HighScoreAchieved when it is ahead.
// The real save only happens at game end, so this is an advisory check
// against a stale persisted value: it may fire once per improvement within a
// session, and consumers must not treat it as a ledger entry.
func (r *Reactor) HandleAnswerSubmitted(ctx context.Context, p event.Payload) error {
	correct, _ := p["isCorrect"].(bool)
	userID, _ := p["userId"].(int64)
	score, _ := p["score"].(int)
	if !correct || userID == 0 {
		return nil
	}

	highScore, err := r.scores.UserHighScore(ctx, userID)
	if err != nil {
		return err
	}
	if score > highScore {
		r.bus.Publish(ctx, event.HighScoreAchieved, event.Payload{
			"userId": userID,
			"score":  score,
		})
	}
	return nil
}

// HandleGameEnded persists the final score and emits ScoreSaved. A storage
// failure is logged and swallowed: the caller of End already has its
// response, there is nothing to roll back.
func (r *Reactor) HandleGameEnded(ctx context.Context, p event.Payload) error {
	userID, _ := p["userId"].(int64)
	finalScore, _ := p["finalScore"].(int)
	if userID == 0 || finalScore <= 0 {
		return nil
	}

	if err := r.scores.SaveScore(ctx, userID, finalScore); err != nil {
		r.logger.Error("save score failed", "user_id", userID, "score", finalScore, "error", err)
		return nil
	}

	r.bus.Publish(ctx, event.ScoreSaved, event.Payload{
		"userId": userID,
		"score":  finalScore,
	})
	return nil
}
