package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/noirlabs/interrogation-engine/internal/config"
	"github.com/noirlabs/interrogation-engine/internal/handlers"
	"github.com/noirlabs/interrogation-engine/internal/logger"
	"github.com/noirlabs/interrogation-engine/internal/middleware"
	"github.com/noirlabs/interrogation-engine/internal/services"
	"github.com/noirlabs/interrogation-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Interrogation Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer startupCancel()

	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "mistral":
		if cfg.MistralAPIKey == "" {
			log.Error("Mistral API key is required when using mistral provider")
			os.Exit(1)
		}
		llmService = services.NewMistralService(cfg.MistralAPIKey, cfg.ModelName, log)
		log.Info("Using Mistral LLM provider")
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error("Gemini API key is required when using gemini provider")
			os.Exit(1)
		}
		llmService, err = services.NewGeminiService(startupCtx, cfg.GeminiAPIKey, log)
		if err != nil {
			log.Error("Failed to create Gemini service", "error", err)
			os.Exit(1)
		}
		log.Info("Using Gemini LLM provider")
	case "none", "":
		// No gateway configured. Every turn comes from the keyword
		// generator, which the handlers fall through to on a nil service.
		log.Warn("No LLM provider configured, serving fallback turns only")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"mistral", "gemini", "none"})
		os.Exit(1)
	}

	if llmService != nil {
		if err := llmService.InitModel(startupCtx, cfg.ModelName); err != nil {
			log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
			os.Exit(1)
		}
		defer func() {
			if err := llmService.Close(); err != nil {
				log.Error("Error closing LLM service", "error", err)
			}
		}()
	}

	var store storage.Storage
	if cfg.RedisURL != "" {
		redisStore := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		if err := redisStore.WaitForConnection(startupCtx); err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = redisStore
		log.Info("Using Redis session storage", "ttl", cfg.SessionTTL)
	} else {
		store = storage.NewMemoryStorage()
		log.Warn("No Redis URL configured, sessions are held in memory")
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	sessionHandler := handlers.NewSessionHandler(store, log)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.Handle("/v1/sessions/", sessionHandler)

	dialogueHandler := handlers.NewDialogueHandler(llmService, store, log)
	mux.Handle("/v1/dialogue", dialogueHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
