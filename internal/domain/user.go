package domain

import "time"

// User holds credentials and identity from the users table.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Score represents a persisted game result from the scores table.
type Score struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of the high-score board, best score per user.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}
