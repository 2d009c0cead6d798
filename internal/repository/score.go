package repository

import (
	"context"

	"github.com/bananagame/platform/internal/domain"
)

// PgScoreRepository implements ScoreRepository using pgx.
type PgScoreRepository struct{}

// NewPgScoreRepository creates a new PgScoreRepository.
func NewPgScoreRepository() *PgScoreRepository {
	return &PgScoreRepository{}
}

// Insert appends a finished game's score for a user.
func (r *PgScoreRepository) Insert(ctx context.Context, db DBTX, userID int64, score int) error {
	_, err := db.Exec(ctx,
		`INSERT INTO scores (user_id, score) VALUES ($1, $2)`,
		userID, score)
	return err
}

// UserHighScore returns the user's best persisted score, 0 when none.
func (r *PgScoreRepository) UserHighScore(ctx context.Context, db DBTX, userID int64) (int, error) {
	var high int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(score), 0) FROM scores WHERE user_id = $1`,
		userID).Scan(&high)
	if err != nil {
		return 0, err
	}
	return high, nil
}

// TopScores returns the best score per user, descending.
func (r *PgScoreRepository) TopScores(ctx context.Context, db DBTX, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT u.username, MAX(s.score) AS score
		FROM scores s
		JOIN users u ON u.id = s.user_id
		GROUP BY u.id, u.username
		ORDER BY score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Score); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
