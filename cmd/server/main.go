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

	"social-media-server/internal/config"
	"social-media-server/internal/handler"
	"social-media-server/internal/mailer"
	"social-media-server/internal/middleware"
	"social-media-server/internal/observability"
	"social-media-server/internal/repository"
	"social-media-server/internal/service"
	"social-media-server/pkg/token"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := observability.Init(cfg.Sentry.DSN, cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize error reporting: %v", err)
	}
	defer observability.Flush()

	couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
	)

	client, err := kivik.New("couch", couchURL)
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	exists, err := client.DBExists(context.Background(), cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(context.Background(), cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	if err := repository.EnsureIndexes(context.Background(), client, cfg.Database.Name); err != nil {
		log.Fatalf("Failed to create database indexes: %v", err)
	}

	userRepo := repository.NewUserRepository(client, cfg.Database.Name)
	codec := token.NewCodec(cfg.JWT.Secret, cfg.JWT.RefreshSecret)

	authService := service.NewAuthService(userRepo, codec)
	userService := service.NewUserService(userRepo)
	passwordService := service.NewPasswordService(userRepo, codec, mailer.NewLogMailer(), cfg.Mail.ResetBaseURL)

	authHandler := handler.NewAuthHandler(authService, userService, cfg.IsProduction())
	passwordHandler := handler.NewPasswordHandler(passwordService, cfg.IsProduction())
	userHandler := handler.NewUserHandler(userService)

	authGate := middleware.Auth(codec, userRepo)

	r := mux.NewRouter()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/forgot-password", passwordHandler.ForgotPassword).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/reset-password/{token}", passwordHandler.ResetPassword).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(authGate)

	protected.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	protected.HandleFunc("/auth/change-password", passwordHandler.ChangePassword).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods("PUT", "OPTIONS")

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting social media server on %s (env: %s)", addr, cfg.Server.Env)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"social-media-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"Social Media API","version":"1.0.0","endpoints":{"/api/auth/register":"POST","/api/auth/login":"POST","/api/auth/refresh":"POST","/api/auth/me":"GET (protected)"}}`))
}
