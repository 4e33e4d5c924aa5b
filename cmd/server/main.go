package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"chat-relay/internal/chat"
	"chat-relay/internal/config"
	"chat-relay/internal/db"
	"chat-relay/internal/middleware"
	"chat-relay/internal/presence"
	"chat-relay/internal/user"
)

func main() {
	// 1. Config
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// 2. Platform layer: Postgres + Redis
	database, err := db.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("connected to PostgreSQL")

	if err := database.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	log.Info().Msg("connected to Redis")

	tracker := presence.NewTracker(redisClient, cfg.PresenceTTL)

	// 3. Chat core: registry, broadcaster, store, handlers
	registry := chat.NewRegistry()
	broadcaster := chat.NewBroadcaster(registry, log)
	chatRepo := chat.NewRepository(database.Conn)
	chatHandler := chat.NewHandler(registry, chatRepo, broadcaster, tracker, tracker, log)

	// 4. User feature (accepting a friend request also creates the
	// pair's conversation, hence the chatRepo dependency)
	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, chatRepo, cfg.JWTSecret, cfg.TokenTTL)
	userHandler := user.NewHandler(userService)

	authMiddleware := middleware.NewAuthMiddleware(userService)

	// 5. Routes
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Handle)

		r.Get("/api/me", userHandler.Me)
		r.Get("/api/users/search", userHandler.SearchUsers)
		r.Get("/api/users", userHandler.AllUsers)

		r.Post("/api/friends/request", userHandler.SendRequest)
		r.Post("/api/friends/accept", userHandler.AcceptRequest)
		r.Post("/api/friends/decline", userHandler.DeclineRequest)
		r.Post("/api/friends/remove", userHandler.RemoveFriend)
		r.Get("/api/friends", userHandler.Friends)
		r.Get("/api/friends/requests", userHandler.ReceivedRequests)

		r.Post("/api/conversations", chatHandler.StartConversation)
		r.Get("/api/messages", chatHandler.GetChatHistory)
		r.Get("/api/presence/{userID}", chatHandler.PresenceStatus)

		// WebSocket (real-time); the session still requires an in-band
		// authenticate frame before routing anything.
		r.Get("/ws", chatHandler.ServeWs)
	})

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// 6. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
