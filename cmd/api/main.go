// cmd/api/main.go
// Main entry point for the peer matching API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/auth"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/common/database"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/common/utils"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/config"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/directory"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/matching"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/messaging"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/moods"
	"github.com/ammarbinanwarfuad/mindmate-sub002/internal/notify"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("Starting MindMate Peer Matching API")
	log.Println("========================================")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: no .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}
	log.Println("Configuration loaded")

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 4. Connect to Redis (optional; the engine degrades gracefully)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis unavailable (%v), continuing without cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	// 5. Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database migrations completed")

	// 6. Wire the matching engine
	moodStore := moods.NewStore(db)
	userDirectory := directory.NewStore(db)
	channelService := messaging.NewChannelService(db)
	eventEmitter := notify.NewEmitter(db, redisClient)

	extractor := matching.NewSignalExtractor(moodStore, userDirectory, cfg.SignalLookbackDays)
	profiles := matching.NewProfileCache(extractor, redisClient, cfg.ProfileCacheTTL)
	matchRepo := matching.NewPostgresRepository(db)

	matchingService := matching.NewService(
		matchRepo, profiles, userDirectory, channelService, eventEmitter,
		matching.Config{
			CandidateLimit:    cfg.CandidateLimit,
			CandidateMinScore: cfg.CandidateMinScore,
			MatchTTL:          cfg.MatchTTL,
		},
	)

	// 7. Routes
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	matching.RegisterRoutes(router, matching.NewHandler(matchingService), authMiddleware)

	// 8. Background expiry sweep
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	matching.NewScheduler(matchingService, cfg.ExpirySweepEvery).Start(ctx)

	// 9. Start the server with graceful shutdown
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			avatar_url TEXT,
			bio TEXT,
			study_year INTEGER NOT NULL DEFAULT 1,
			programme VARCHAR(100) NOT NULL DEFAULT '',
			matching_opt_in BOOLEAN NOT NULL DEFAULT FALSE,
			show_bio BOOLEAN NOT NULL DEFAULT TRUE,
			show_study_year BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_matching_opt_in
			ON users(matching_opt_in) WHERE matching_opt_in = TRUE`,

		`CREATE TABLE IF NOT EXISTS mood_entries (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			mood_score DOUBLE PRECISION NOT NULL CHECK (mood_score >= 0 AND mood_score <= 10),
			triggers TEXT[] NOT NULL DEFAULT '{}',
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mood_entries_user_recorded
			ON mood_entries(user_id, recorded_at)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id SERIAL PRIMARY KEY,
			user_a_id INTEGER NOT NULL REFERENCES users(id),
			user_b_id INTEGER NOT NULL REFERENCES users(id),
			compatibility_score INTEGER NOT NULL CHECK (compatibility_score >= 0 AND compatibility_score <= 100),
			shared_factors TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			requested_by INTEGER NOT NULL REFERENCES users(id),
			channel_ref VARCHAR(64),
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			responded_at TIMESTAMPTZ,
			CHECK (user_a_id < user_b_id),
			CHECK (status IN ('pending', 'accepted', 'declined', 'expired'))
		)`,
		// One live row per canonical pair; expired rows are kept for
		// history and do not block a fresh request.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_live_pair
			ON matches(user_a_id, user_b_id) WHERE status != 'expired'`,
		`CREATE INDEX IF NOT EXISTS idx_matches_pending_created
			ON matches(created_at) WHERE status = 'pending'`,

		`CREATE TABLE IF NOT EXISTS conversations (
			id SERIAL PRIMARY KEY,
			channel_ref VARCHAR(64) UNIQUE NOT NULL,
			participant_ids INTEGER[] NOT NULL,
			kind VARCHAR(30) NOT NULL DEFAULT 'peer_support',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id SERIAL PRIMARY KEY,
			event_id VARCHAR(64) UNIQUE NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id),
			type VARCHAR(40) NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}',
			read_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
