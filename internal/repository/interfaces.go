package repository

import (
	"context"

	"github.com/bananagame/platform/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to the users table.
type UserRepository interface {
	// FindByUsername returns a user by username, or nil when absent.
	FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error)

	// FindByID returns a user by ID, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id int64) (*domain.User, error)

	// Create inserts a new user and fills in the generated ID.
	Create(ctx context.Context, db DBTX, user *domain.User) error
}

// ScoreRepository provides access to the scores table.
type ScoreRepository interface {
	// Insert appends a finished game's score for a user.
	Insert(ctx context.Context, db DBTX, userID int64, score int) error

	// UserHighScore returns the user's best persisted score, 0 when none.
	UserHighScore(ctx context.Context, db DBTX, userID int64) (int, error)

	// TopScores returns the best score per user, descending, capped at limit.
	TopScores(ctx context.Context, db DBTX, limit int) ([]domain.LeaderboardEntry, error)
}
