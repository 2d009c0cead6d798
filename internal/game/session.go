package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bananagame/platform/internal/domain"
	"github.com/bananagame/platform/internal/event"
)

// Question is one trivia puzzle from the external provider. The solution is
// returned to the immediate caller only and never published on the bus.
type Question struct {
	Question string `json:"question"`
	Solution int    `json:"solution"`
}

// QuestionProvider is the external source of trivia questions.
type QuestionProvider interface {
	FetchQuestion(ctx context.Context) (Question, error)
}

// ScoreStore is the persistence abstraction the session and its reactions use.
type ScoreStore interface {
	SaveScore(ctx context.Context, userID int64, score int) error
	UserHighScore(ctx context.Context, userID int64) (int, error)
}

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhasePlaying
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	default:
		return "not_started"
	}
}

// PointsPerCorrectAnswer is the fixed score increment.
const PointsPerCorrectAnswer = 10

// Result is returned by End.
type Result struct {
	FinalScore int `json:"finalScore"`
	HighScore  int `json:"highScore"`
}

// Session is the per-player game state machine. It consumes commands,
// mutates its own state, and emits events on the bus for downstream
// consumers.
//
// There is exactly one Session per running process, shared by all commands.
// Concurrent players therefore overwrite each other (last writer wins);
// keying sessions by user would change observable behavior and is left to a
// future revision.
type Session struct {
	mu       sync.Mutex
	bus      *event.Bus
	provider QuestionProvider
	scores   ScoreStore
	logger   *slog.Logger

	question string
	solution int
	score    int
	phase    Phase
	userID   int64
}

// NewSession creates a session in the not-started phase.
func NewSession(bus *event.Bus, provider QuestionProvider, scores ScoreStore, logger *slog.Logger) *Session {
	return &Session{
		bus:      bus,
		provider: provider,
		scores:   scores,
		logger:   logger,
	}
}

// Start begins a new game for userID, resetting any prior score. The session
// instance is reused across games, never recreated.
func (s *Session) Start(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.score = 0
	s.userID = userID
	s.phase = PhasePlaying

	s.bus.Publish(ctx, event.GameStarted, event.Payload{
		"userId": userID,
	})
	s.logger.Info("game started", "user_id", userID)
}

// RequestQuestion fetches the next question from the provider. The game must
// be in progress. On provider failure the error propagates with no state
// change and no event.
func (s *Session) RequestQuestion(ctx context.Context) (Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return Question{}, domain.ErrInvalidState("game is not in progress")
	}
	return s.loadQuestion(ctx)
}

// loadQuestion does the provider round-trip and event publication. Callers
// hold s.mu.
func (s *Session) loadQuestion(ctx context.Context) (Question, error) {
	q, err := s.provider.FetchQuestion(ctx)
	if err != nil {
		return Question{}, err
	}

	s.question = q.Question
	s.solution = q.Solution

	s.bus.Publish(ctx, event.QuestionLoaded, event.Payload{
		"userId":   s.userID,
		"question": s.question,
	})
	return q, nil
}

// SubmitAnswer checks answer against the current solution. Out of phase it
// returns false rather than an error: answering after game over is a no-op,
// not a caller bug. A correct answer scores ten points, emits
// AnswerSubmitted, and chains into the next question fetch; the chained
// provider failure propagates to the caller.
func (s *Session) SubmitAnswer(ctx context.Context, answer int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return false, nil
	}

	if answer != s.solution {
		s.bus.Publish(ctx, event.AnswerSubmitted, event.Payload{
			"userId":    s.userID,
			"isCorrect": false,
			"score":     s.score,
		})
		return false, nil
	}

	s.score += PointsPerCorrectAnswer
	s.bus.Publish(ctx, event.AnswerSubmitted, event.Payload{
		"userId":    s.userID,
		"isCorrect": true,
		"score":     s.score,
	})

	if _, err := s.loadQuestion(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// End finishes the game and reports the final score alongside the persisted
// high score. Ending is idempotent: a second End without an intervening
// Start still returns a result. Persisting the score is not done here; the
// GameEnded reaction owns that.
func (s *Session) End(ctx context.Context) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseEnded

	highScore := 0
	if s.userID != 0 {
		hs, err := s.scores.UserHighScore(ctx, s.userID)
		if err != nil {
			s.logger.Error("high score lookup failed", "user_id", s.userID, "error", err)
		} else {
			highScore = hs
		}
	}

	s.bus.Publish(ctx, event.GameEnded, event.Payload{
		"userId":     s.userID,
		"finalScore": s.score,
		"highScore":  highScore,
	})
	s.logger.Info("game ended", "user_id", s.userID, "final_score", s.score, "high_score", highScore)

	return Result{FinalScore: s.score, HighScore: highScore}
}

// Score returns the current score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// IsPlaying reports whether a game is in progress.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhasePlaying
}

// UserID returns the player owning the current game, 0 when none.
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}
