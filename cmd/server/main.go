package main

import (
	"context"
	"errors"
	"fitbuddy/app/internal/api"
	"fitbuddy/app/internal/assistant"
	"fitbuddy/app/internal/config"
	"fitbuddy/app/internal/payment"
	"fitbuddy/app/internal/repository/mongo"
	"fitbuddy/app/internal/service"
	"fitbuddy/app/internal/storage"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title fitbuddy API
// @version 1.0
// @description Workout plans, saved workouts and an AI fitness coach.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting fitbuddy server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("FATAL: jwt.secret must be set")
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB)
	}()

	// --- Initialize Storage ---
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	fileStorage, err := storage.NewS3Storage(initCtx, cfg.S3)
	cancelInit()
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Providers ---
	chatProvider, workoutProvider := newCompletionProviders(cfg.OpenAI)
	synth := newSynthesizer(cfg.ElevenLabs)

	checkout, err := payment.NewStripeCheckout(cfg.Stripe)
	if errors.Is(err, payment.ErrNotConfigured) {
		log.Println("WARN: Stripe is not configured; checkout is disabled.")
		checkout = payment.Disabled{}
	} else if err != nil {
		log.Fatalf("FATAL: Failed to initialize Stripe: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := service.NewProfileService(userRepo, fileStorage)
	subscriptionService := service.NewSubscriptionService(userRepo, checkout, cfg.Stripe.AllowTestActivation)
	workoutService := service.NewWorkoutService(workoutRepo, workoutProvider, subscriptionService)

	var orchestrator *assistant.Orchestrator
	if chatProvider != nil {
		orchestrator = assistant.NewOrchestrator(chatProvider, subscriptionService)
	} else {
		orchestrator = assistant.NewOrchestrator(unconfiguredProvider{}, subscriptionService)
	}
	var players *assistant.Players
	if synth != nil {
		players = assistant.NewPlayers(synth)
	}

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware
	api.SetupRoutes(router, cfg.JWT.Secret, api.Services{
		Auth:         authService,
		Profile:      profileService,
		Workouts:     workoutService,
		Subscription: subscriptionService,
		Orchestrator: orchestrator,
		Players:      players,
	})

	// --- Start HTTP Server ---
	// Write deadlines are set per request so speech streams can run long.
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     api.WithWriteTimeout(router, cfg.Server.WriteTimeout, api.SpeechPath),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
