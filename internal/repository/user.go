package repository

import (
	"context"
	"errors"

	"github.com/bananagame/platform/internal/domain"
	"github.com/jackc/pgx/v5"
)

// PgUserRepository implements UserRepository using pgx.
type PgUserRepository struct{}

// NewPgUserRepository creates a new PgUserRepository.
func NewPgUserRepository() *PgUserRepository {
	return &PgUserRepository{}
}

// FindByUsername returns a user by username, or nil if not found.
func (r *PgUserRepository) FindByUsername(ctx context.Context, db DBTX, username string) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// FindByID returns a user by ID, or nil if not found.
func (r *PgUserRepository) FindByID(ctx context.Context, db DBTX, id int64) (*domain.User, error) {
	row := db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user and fills in the generated ID.
func (r *PgUserRepository) Create(ctx context.Context, db DBTX, user *domain.User) error {
	return db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		 RETURNING id, created_at`,
		user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
