package app

import (
	"log/slog"
	"time"

	"github.com/bananagame/platform/internal/auth"
	"github.com/bananagame/platform/internal/event"
	"github.com/bananagame/platform/internal/game"
	"github.com/bananagame/platform/internal/guard"
	"github.com/bananagame/platform/internal/handler"
	"github.com/bananagame/platform/internal/provider"
	"github.com/bananagame/platform/internal/repository"
	"github.com/bananagame/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger
	Bus    *event.Bus
	// External provider config
	BananaAPIURL string
	// Auth rate limit per IP per minute
	AuthRateLimit int
	// Set Secure on auth cookies (TLS deployments)
	SecureCookies bool
}

// NewRouter assembles the chi.Router with all routes and middleware, wiring
// the one game session and its reactions onto the shared bus.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger
	bus := deps.Bus

	// Repositories
	userRepo := repository.NewPgUserRepository()
	scoreRepo := repository.NewPgScoreRepository()
	scoreStore := repository.NewScoreStore(pool, scoreRepo)

	// External providers
	bananaClient := provider.NewBananaClient(deps.BananaAPIURL, logger)

	// Game core: one session per process, reactions registered for its
	// whole lifetime.
	session := game.NewSession(bus, bananaClient, scoreStore, logger)
	reactor := game.NewReactor(bus, scoreStore, logger)
	reactor.Register()

	// Guards
	limiter := guard.NewRateLimiter(deps.AuthRateLimit, time.Minute)

	// Services
	authSvc := service.NewAuthService(pool, userRepo, jwtMgr, bus, limiter, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, deps.SecureCookies)
	gameHandler := handler.NewGameHandler(session)
	leaderboardHandler := handler.NewLeaderboardHandler(scoreStore)
	eventsHandler := handler.NewEventsHandler(bus)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(jwtMgr))

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", gameHandler.Start)
			r.Post("/question", gameHandler.Question)
			r.Post("/answer", gameHandler.Answer)
			r.Post("/end", gameHandler.End)
			r.Get("/score", gameHandler.Score)
		})

		r.Get("/leaderboard", leaderboardHandler.Leaderboard)
		r.Get("/users/me/highscore", leaderboardHandler.MyHighScore)

		r.Route("/events", func(r chi.Router) {
			r.Get("/history", eventsHandler.History)
			r.Delete("/history", eventsHandler.Clear)
		})
	})

	return r
}
