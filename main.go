package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/vitalityhub/vitality-helper/internal/chat"
	"github.com/vitalityhub/vitality-helper/internal/config"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"github.com/vitalityhub/vitality-helper/internal/logger"
	"github.com/vitalityhub/vitality-helper/internal/server"
	"github.com/vitalityhub/vitality-helper/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting VitalityHub server...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	log.Println("Configuration loaded successfully")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Chat history lives in Redis when configured, in memory otherwise.
	var chatHistory chat.HistoryStore
	if cfg.Redis.Host != "" {
		redisStore, err := chat.NewRedisStore(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		chatHistory = redisStore
		log.Println("Using Redis chat history store")
	} else {
		chatHistory = chat.NewMemoryStore()
		log.Println("Using in-memory chat history store")
	}

	// Initialize services
	aiService, err := services.NewAIService(cfg.GeminiAPIKey, cfg.OpenAIAPIKey, cfg.AIProvider)
	if err != nil {
		log.Fatalf("Failed to create AI service: %v", err)
	}
	streakService := services.NewStreakService(db)
	svc := server.Services{
		User:       services.NewUserService(db),
		Mood:       services.NewMoodService(db, streakService),
		Fitness:    services.NewFitnessService(db, streakService),
		Medication: services.NewMedicationService(db, streakService),
		Friend:     services.NewFriendService(db),
		Buddy:      services.NewBuddyService(db),
		AI:         aiService,
	}
	log.Println("Services initialized successfully")

	srv := server.New(cfg.Server, svc, chatHistory, database.DefaultUserID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Server is running. Press Ctrl+C to stop.")
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
