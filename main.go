package main

import (
	"context"
	"log"
	"os"

	"stackit/internal/api"
	"stackit/internal/auth"
	"stackit/internal/config"
	"stackit/internal/forum"
	"stackit/internal/store"
	"stackit/internal/suggest"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()
	if cfg.Supabase.URL == "" {
		log.Fatal("SUPABASE_URL is required")
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	st := store.NewClient(cfg.Supabase, logger)

	// Live subscriptions are optional: without the realtime socket the watch
	// endpoints report unavailable and everything else still works.
	rt := store.NewRealtime(cfg.Supabase, logger)
	if err := rt.Connect(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("realtime unavailable, live watches disabled")
		rt = nil
	} else {
		defer rt.Close()
	}

	questions := forum.NewQuestionService(st, logger)
	notifications := forum.NewNotificationService(st, rt, logger)
	counts := &forum.RPCUpdater{Store: st}
	answers := forum.NewAnswerService(st, rt, counts, questions, notifications, logger)

	deps := api.Deps{
		Auth:          auth.NewClient(cfg),
		Verifier:      auth.NewVerifier(cfg),
		Store:         st,
		Questions:     questions,
		Answers:       answers,
		Notifications: notifications,
	}
	if cfg.Cohere.APIKey != "" {
		deps.Suggest = suggest.NewClient(cfg.Cohere.APIKey)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	server := api.NewServer(cfg, deps, logger)
	api.SetupRoutes(router, server, cfg)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
