package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
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

// The local build keeps everything on disk: sqlite for records, a directory
// blob per user for chat history, and a local object store for screenshots.
type Config struct {
	Root         string `env:"ROOT" envDefault:"./cyguard"`
	Port         int    `env:"PORT" envDefault:"3001"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

func createServer(cfg Config) (*http.Server, func(), error) {
	db, err := database.NewDatabase(filepath.Join(cfg.Root, "db", "cyguard.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := breach.SeedFixtures(db); err != nil {
		return nil, nil, fmt.Errorf("failed to seed breach fixtures: %w", err)
	}
	if err := intel.SeedFixtures(db); err != nil {
		return nil, nil, fmt.Errorf("failed to seed intel fixtures: %w", err)
	}

	blobs, err := persistence.NewLocalStore(filepath.Join(cfg.Root, "chats"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create chat history store: %w", err)
	}

	objects, err := storage.NewLocalObjectStore(filepath.Join(cfg.Root, "storage"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create object store: %w", err)
	}
	adapter := storage.NewScreenshotOffloader(blobs, objects)

	llm := analysis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	analyzer := analysis.NewService(llm, analysis.NewPolicyFetcher())
	dispatcher := analysis.NewDispatcher(analyzer)

	identity := auth.NewService(db)

	authHandler := api.NewAuthService(identity)
	chatHandler := api.NewChatService(adapter, blobs, dispatcher)
	toolsHandler := api.NewToolsService(analyzer, breach.NewStore(db))
	intelHandler := api.NewIntelService(intel.NewService(db))

	r := chi.NewRouter()

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", api.RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.AddRoutes(r)
		toolsHandler.AddRoutes(r)
		intelHandler.AddRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(authHandler.Middleware)
			chatHandler.AddRoutes(r)
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
	return server, chatHandler.Close, nil
}

func main() {
	cmd.LoadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(cfg.Root, os.ModePerm); err != nil {
		log.Fatalf("error creating directory for log file: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(cfg.Root, "backend.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	slog.Info("starting backend", "root", cfg.Root, "port", cfg.Port)

	server, cleanup, err := createServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	defer cleanup()

	// Goroutine for graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("server stopped")
}
