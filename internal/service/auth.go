package service

import (
	"context"
	"log/slog"

	"github.com/bananagame/platform/internal/auth"
	"github.com/bananagame/platform/internal/domain"
	"github.com/bananagame/platform/internal/event"
	"github.com/bananagame/platform/internal/guard"
	"github.com/bananagame/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration and login.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.UserRepository
	jwtMgr  *auth.JWTManager
	bus     *event.Bus
	limiter *guard.RateLimiter
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.UserRepository,
	jwtMgr *auth.JWTManager,
	bus *event.Bus,
	limiter *guard.RateLimiter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		pool:    pool,
		users:   users,
		jwtMgr:  jwtMgr,
		bus:     bus,
		limiter: limiter,
		logger:  logger,
	}
}

// Credentials holds the register/login request fields.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Register creates a new user account and issues a token.
func (s *AuthService) Register(ctx context.Context, input Credentials, ip string) (*AuthResult, error) {
	if res := s.limiter.Check(ctx, "register:"+ip); !res.Allowed {
		return nil, domain.ErrAccountLocked(res.Reason)
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	existing, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, s.pool, user); err != nil {
		return nil, domain.ErrInternal("create user", err)
	}

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.bus.Publish(ctx, event.UserRegistered, event.Payload{
		"userId":   user.ID,
		"username": user.Username,
	})
	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)

	return &AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}

// Login authenticates a user and issues a token. Failed attempts count
// toward the lockout window.
func (s *AuthService) Login(ctx context.Context, input Credentials, ip string) (*AuthResult, error) {
	if res := s.limiter.Check(ctx, "login:"+ip); !res.Allowed {
		return nil, domain.ErrAccountLocked(res.Reason)
	}
	if err := guard.CheckLocked(ctx, s.pool, input.Username); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, s.pool, input.Username)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Username, ip, false)
		return nil, domain.ErrUnauthorized("invalid username or password")
	}
	guard.RecordAttempt(ctx, s.pool, input.Username, ip, true)

	token, err := s.jwtMgr.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	s.bus.Publish(ctx, event.UserLoggedIn, event.Payload{
		"userId":   user.ID,
		"username": user.Username,
	})

	return &AuthResult{Token: token, UserID: user.ID, Username: user.Username}, nil
}
