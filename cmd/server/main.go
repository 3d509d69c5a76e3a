// File: cmd/server/main.go
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

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/healthadvisor/advisor-server/internal/config"
	"github.com/healthadvisor/advisor-server/internal/domain"
	"github.com/healthadvisor/advisor-server/internal/handlers"
	"github.com/healthadvisor/advisor-server/internal/middleware"
	"github.com/healthadvisor/advisor-server/internal/repository/conversation"
	"github.com/healthadvisor/advisor-server/internal/repository/healthrecord"
	"github.com/healthadvisor/advisor-server/internal/repository/message"
	"github.com/healthadvisor/advisor-server/internal/repository/tx"
	"github.com/healthadvisor/advisor-server/internal/repository/user"
	"github.com/healthadvisor/advisor-server/internal/services"
	"github.com/healthadvisor/advisor-server/internal/services/ai"
	"github.com/healthadvisor/advisor-server/internal/services/chat"
	"github.com/healthadvisor/advisor-server/internal/services/health"
	"github.com/healthadvisor/advisor-server/internal/services/user_services"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("advisor-server")
	production := strings.ToLower(cfg.Environment) == "production"

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open database at %s: %v", cfg.DatabasePath, err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.HealthRecord{},
	); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	userRepo := user.NewGormUserRepository(db)
	conversationRepo := conversation.NewConversationRepository(db)
	messageRepo := message.NewMessageRepository(db)
	healthRepo := healthrecord.NewHealthRecordRepository(db)

	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.LLMAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.LLMModel
	aiConfig.Timeout = time.Duration(cfg.LLMTimeoutSeconds) * time.Second
	aiConfig.MaxRetries = cfg.LLMMaxRetries
	aiConfig.BackoffBase = time.Duration(cfg.LLMBackoffBaseMS) * time.Millisecond

	aiService, err := services.NewAIService(aiConfig, ai.NewOpenAIProvider(aiConfig), logger)
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}

	chatConfig := chat.DefaultConfig()
	chatConfig.HistoryDepth = cfg.ChatHistoryDepth
	chatConfig.ContextCapPerCategory = cfg.ContextCapPerCategory
	chatConfig.MaxMessageLength = cfg.MaxMessageLength
	chatConfig.HistoryPageDefault = cfg.HistoryPageDefault
	chatConfig.HistoryPageMax = cfg.HistoryPageMax
	chatConfig.ConversationsPageDefault = cfg.ConversationsPageDefault
	chatConfig.ConversationsPageMax = cfg.ConversationsPageMax
	if cfg.FallbackReply != "" {
		chatConfig.FallbackReply = cfg.FallbackReply
	}

	chatService, err := services.NewChatService(
		chatConfig,
		conversationRepo,
		messageRepo,
		tx.NewGormManager(db),
		aiService,
		health.NewStoreProvider(healthRepo),
		logger,
	)
	if err != nil {
		log.Fatalf("failed to initialize chat service: %v", err)
	}

	healthService := services.NewHealthService(healthRepo, logger)
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)

	chatHandler := handlers.NewChatHandler(chatService)
	healthHandler := handlers.NewHealthRecordHandler(healthService)
	authHandler := handlers.NewAuthHandler(authService, production)

	router := mux.NewRouter()
	router.Use(middleware.RecoverPanic)
	router.Use(middleware.LoggingMiddleware)
	router.Use(corsMiddleware)

	router.HandleFunc("/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(authService))
	api.HandleFunc("/chat", chatHandler.SendMessage).Methods("POST", "OPTIONS")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST", "OPTIONS")
	api.HandleFunc("/conversations", chatHandler.GetConversations).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetHistory).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}", chatHandler.RenameConversation).Methods("PUT", "OPTIONS")
	api.HandleFunc("/health-records", healthHandler.AddRecord).Methods("POST", "OPTIONS")
	api.HandleFunc("/health-records", healthHandler.ListRecords).Methods("GET")

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
