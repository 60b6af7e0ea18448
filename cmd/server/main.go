package main

import (
	"net/http"

	"ops-console/internal/auth"
	"ops-console/internal/config"
	"ops-console/internal/handlers"
	"ops-console/internal/logger"
	"ops-console/internal/router"
	"ops-console/internal/service/identity"
	"ops-console/internal/service/session"
	"ops-console/internal/store"

	"github.com/joho/godotenv"
)

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Log.Warn("No .env file found, relying on environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize record store
	recordStore, err := store.NewPostgresStore(cfg.Database)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize record store")
	}
	defer recordStore.Close()

	// Seed demo end users so a fresh console can be linked immediately
	if err := store.SeedDemoEndUsers(recordStore); err != nil {
		logger.Log.WithError(err).Fatal("Failed to seed demo end users")
	}

	// Wire services
	identityService := identity.NewService(recordStore)
	routerClient := router.NewHTTPClient(&cfg.Router)
	sessionManager := session.NewManager(identityService, routerClient)

	authHandlers := auth.NewHandlers(recordStore, &cfg.Auth)
	consoleHandlers := handlers.NewConsoleHandlers(identityService, sessionManager)

	mux := http.NewServeMux()

	// CORS preflight handler for OPTIONS requests
	corsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.WriteHeader(http.StatusOK)
	}
	mux.HandleFunc("OPTIONS /api/", corsHandler)

	// Public routes
	mux.HandleFunc("POST /api/login", enableCORS(authHandlers.LoginHandler))
	mux.HandleFunc("POST /api/register", enableCORS(authHandlers.RegisterHandler))
	mux.HandleFunc("GET /api/health", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))

	// Identity linking
	mux.HandleFunc("GET /api/identity", enableCORS(authHandlers.Middleware(consoleHandlers.IdentityStatusHandler)))
	mux.HandleFunc("POST /api/identity/preview", enableCORS(authHandlers.Middleware(consoleHandlers.PreviewIdentityHandler)))
	mux.HandleFunc("POST /api/identity/link", enableCORS(authHandlers.Middleware(consoleHandlers.LinkIdentityHandler)))
	mux.HandleFunc("DELETE /api/identity/link", enableCORS(authHandlers.Middleware(consoleHandlers.UnlinkIdentityHandler)))

	// Chat session
	mux.HandleFunc("GET /api/session", enableCORS(authHandlers.Middleware(consoleHandlers.GetSessionHandler)))
	mux.HandleFunc("POST /api/session/messages", enableCORS(authHandlers.Middleware(consoleHandlers.SendMessageHandler)))
	mux.HandleFunc("DELETE /api/session/messages", enableCORS(authHandlers.Middleware(consoleHandlers.ClearMessagesHandler)))
	mux.HandleFunc("PUT /api/session/provider", enableCORS(authHandlers.Middleware(consoleHandlers.SelectProviderHandler)))
	mux.HandleFunc("PUT /api/session/context", enableCORS(authHandlers.Middleware(consoleHandlers.SelectContextHandler)))
	mux.HandleFunc("PUT /api/session/selected-message", enableCORS(authHandlers.Middleware(consoleHandlers.SelectMessageHandler)))

	logger.Log.WithField("port", cfg.Server.Port).Info("Operator console starting")

	if err := http.ListenAndServe(":"+cfg.Server.Port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
