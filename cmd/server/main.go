// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/medlabel/go-medlabel/internal/config"
	"github.com/medlabel/go-medlabel/internal/domain"
	"github.com/medlabel/go-medlabel/internal/handlers"
	"github.com/medlabel/go-medlabel/internal/middleware"
	"github.com/medlabel/go-medlabel/internal/ratelimit"
	chatrepo "github.com/medlabel/go-medlabel/internal/repository/chat"
	conversationrepo "github.com/medlabel/go-medlabel/internal/repository/conversation"
	"github.com/medlabel/go-medlabel/internal/services"
	"github.com/medlabel/go-medlabel/internal/services/ai"
	"github.com/medlabel/go-medlabel/internal/services/index"
	"github.com/medlabel/go-medlabel/internal/services/label"
	"github.com/medlabel/go-medlabel/internal/services/rag"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.Conversation{}, &domain.Chat{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	conversationRepo := conversationrepo.NewConversationRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.EmbeddingKey = cfg.EmbeddingAPIKey
	aiConfig.EmbeddingBaseURL = cfg.EmbeddingBaseURL
	aiConfig.EmbeddingModel = cfg.EmbeddingModelName
	aiConfig.LLMKey = cfg.LLMAPIKey
	aiConfig.LLMBaseURL = cfg.LLMBaseURL
	aiConfig.ChatModel = cfg.ChatModelName
	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize AI provider: %v", err)
	}

	labelConfig := label.DefaultConfig()
	labelConfig.BaseURL = cfg.LabelAPIBaseURL
	fetcher, err := label.NewFetcher(labelConfig, services.NewLogger("label"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize label fetcher: %v", err)
	}

	vectorIndex, err := buildIndex(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize vector index: %v", err)
	}

	pipeline, err := rag.NewPipeline(
		fetcher,
		provider,
		vectorIndex,
		conversationRepo,
		&rag.Config{
			ChunkSize:        cfg.ChunkSize,
			ChunkOverlap:     cfg.ChunkOverlap,
			RetrievalTopK:    cfg.RetrievalTopK,
			EmbedConcurrency: cfg.EmbedConcurrency,
		},
		services.NewLogger("pipeline"),
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize answer pipeline: %v", err)
	}

	conversationService := services.NewConversationService(conversationRepo, chatRepo, services.NewLogger("conversation"))

	// --- Handlers ---
	promptHandler := handlers.NewPromptHandler(pipeline)
	conversationHandler := handlers.NewConversationHandler(conversationService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware([]byte(cfg.JWTSecretKey))

	promptLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultPromptConfig())
	defer promptLimiter.Close()

	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// --- Protected Routes ---
	protected := r.PathPrefix("/").Subrouter()
	protected.Use(authMiddleware)

	prompt := protected.PathPrefix("/prompt").Subrouter()
	prompt.Use(middleware.RateLimitMiddleware(promptLimiter, "prompt"))
	prompt.HandleFunc("", promptHandler.HandlePrompt).Methods("POST")

	protected.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations", conversationHandler.CreateConversation).Methods("POST")
	protected.HandleFunc("/conversations/{id}", conversationHandler.GetConversation).Methods("GET")
	protected.HandleFunc("/conversations/{id}/title", conversationHandler.RenameConversation).Methods("PUT")
	protected.HandleFunc("/conversations/{id}", conversationHandler.DeleteConversation).Methods("DELETE")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Medication label assistant starting on port %s", cfg.ServerPort)
	if cfg.PineconeAPIKey != "" {
		log.Printf("Vector index: pinecone (%s)", cfg.PineconeIndexHost)
	} else {
		log.Printf("Vector index: in-memory")
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}

// buildIndex selects the external index when Pinecone credentials are set,
// and the in-process index otherwise.
func buildIndex(cfg *config.Config) (rag.VectorIndex, error) {
	logger := services.NewLogger("index")
	if cfg.PineconeAPIKey == "" {
		return index.NewMemory(logger), nil
	}

	pineconeConfig := index.DefaultPineconeConfig()
	pineconeConfig.APIKey = cfg.PineconeAPIKey
	pineconeConfig.IndexHost = cfg.PineconeIndexHost
	pineconeConfig.Namespace = cfg.PineconeNamespace
	return index.NewPinecone(pineconeConfig, logger)
}
