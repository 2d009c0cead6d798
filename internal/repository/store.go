package repository

import (
	"context"

	"github.com/bananagame/platform/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreStore binds a ScoreRepository to the connection pool and translates
// driver failures into the STORAGE_ERROR taxonomy. It is the persistence
// collaborator the game session and its reactions see.
type ScoreStore struct {
	pool   *pgxpool.Pool
	scores ScoreRepository
}

// NewScoreStore creates a pool-bound score store.
func NewScoreStore(pool *pgxpool.Pool, scores ScoreRepository) *ScoreStore {
	return &ScoreStore{pool: pool, scores: scores}
}

// SaveScore persists a finished game's score.
func (s *ScoreStore) SaveScore(ctx context.Context, userID int64, score int) error {
	if err := s.scores.Insert(ctx, s.pool, userID, score); err != nil {
		return domain.ErrStorage("save score", err)
	}
	return nil
}

// UserHighScore returns the user's best persisted score, 0 when none.
func (s *ScoreStore) UserHighScore(ctx context.Context, userID int64) (int, error) {
	high, err := s.scores.UserHighScore(ctx, s.pool, userID)
	if err != nil {
		return 0, domain.ErrStorage("high score lookup", err)
	}
	return high, nil
}

// TopScores returns the leaderboard, best score per user descending.
func (s *ScoreStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.scores.TopScores(ctx, s.pool, limit)
	if err != nil {
		return nil, domain.ErrStorage("leaderboard", err)
	}
	return entries, nil
}
