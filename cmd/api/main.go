package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cyguard-backend/cmd"
	"cyguard-backend/internal/analysis"
	"cyguard-backend/internal/api"
	"cyguard-backend/internal/auth"
	"cyguard-backend/internal/breach"
	"cyguard-backend/internal/database"
	"cyguard-backend/internal/intel"
	"cyguard-backend/internal/persistence"
	"cyguard-backend/internal/storage"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type APIConfig struct {
	DatabaseURL       string `env:"DATABASE_URL,notEmpty,required"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY,notEmpty,required"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION"`
	ScreenshotBucket  string `env:"SCREENSHOT_BUCKET_NAME" envDefault:"cyguard-screenshots"`
	APIPort           string `env:"API_PORT" envDefault:"8001"`
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := breach.SeedFixtures(db); err != nil {
		log.Fatalf("Failed to seed breach fixtures: %v", err)
	}
	if err := intel.SeedFixtures(db); err != nil {
		log.Fatalf("Failed to seed intel fixtures: %v", err)
	}

	objects, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		Bucket:          cfg.ScreenshotBucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}
	if err := objects.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("Failed to ensure screenshot bucket: %v", err)
	}

	records := persistence.NewRecordStore(db)
	adapter := storage.NewScreenshotOffloader(records, objects)

	llm := analysis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	analyzer := analysis.NewService(llm, analysis.NewPolicyFetcher())
	dispatcher := analysis.NewDispatcher(analyzer)

	identity := auth.NewService(db)

	authHandler := api.NewAuthService(identity)
	chatHandler := api.NewChatService(adapter, records, dispatcher)
	defer chatHandler.Close()
	toolsHandler := api.NewToolsService(analyzer, breach.NewStore(db))
	intelHandler := api.NewIntelService(intel.NewService(db))

	// --- Chi Router Setup ---
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics
	r.Use(middleware.Timeout(60 * time.Second)) // Set request timeout
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", api.RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	authHandler.AddRoutes(r)
	toolsHandler.AddRoutes(r)
	intelHandler.AddRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(authHandler.Middleware)
		chatHandler.AddRoutes(r)
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
