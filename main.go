package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/finsight/backend/src/config"
	"github.com/username/finsight/backend/src/database"
	"github.com/username/finsight/backend/src/handlers"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/model"
	"github.com/username/finsight/backend/src/security"
	"github.com/username/finsight/backend/src/services"
	"github.com/username/finsight/backend/src/storage"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000":    true,
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("FinSight backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	profileCache := cache.New(config.Cfg.ProfileCacheExpiry, config.Cfg.ProfileCacheCleanup)
	limiterCache := cache.New(10*time.Minute, 20*time.Minute)

	handlers.InitializeGoogleOAuthConfig()

	store := storage.NewSQLiteStore(database.DB)
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)

	profileService := services.NewProfileService(store, profileCache)
	categorizationService := services.NewCategorizationService(store, profileService)
	anomalyService := services.NewAnomalyService(store, profileService,
		config.Cfg.AnomalyWindowDays, config.Cfg.AnomalyZScoreLimit)
	healthService := services.NewHealthService(store, services.UserCreditScoreSource{DB: database.DB})
	investmentService := services.NewInvestmentService(store, services.UnlinkedPositionProvider{},
		config.Cfg.InvestmentHorizonYrs)
	analyticsService := services.NewAnalyticsService(store)
	seedService := services.NewSeedService(store, categorizationService, anomalyService, healthService, investmentService)

	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(store)
	txHandler := handlers.NewTransactionHandler(store, categorizationService, anomalyService)
	goalHandler := handlers.NewGoalHandler(store)
	healthHandler := handlers.NewHealthHandler(healthService)
	investmentHandler := handlers.NewInvestmentHandler(store, investmentService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	userHandler := handlers.NewUserHandler(seedService, profileService)

	// Expired sessions are swept in the background rather than on each check.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := model.DeleteExpiredSessions(database.DB); err != nil {
				logger.L.Error("Expired session sweep failed", "error", err)
			} else if n > 0 {
				logger.L.Info("Expired sessions removed", "count", n)
			}
		}
	}()

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(handlers.RateLimitMiddleware(limiterCache, config.Cfg.RateLimitPerSecond, config.Cfg.RateLimitBurst))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "FinSight Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Get("/auth/google/login", authHandler.HandleGoogleLogin)
			r.Get("/auth/google/callback", authHandler.HandleGoogleCallback)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authHandler.AuthMiddleware)

			r.Post("/auth/logout", authHandler.LogoutHandler)
			r.Get("/auth/me", authHandler.HandleGetCurrentUser)

			r.Get("/dashboard", analyticsHandler.HandleGetDashboard)

			r.Get("/accounts", accountHandler.HandleGetAccounts)
			r.Post("/accounts", accountHandler.HandleCreateAccount)
			r.Put("/accounts/{id}/balance", accountHandler.HandleUpdateAccountBalance)

			r.Get("/transactions", txHandler.HandleGetTransactions)
			r.Post("/transactions", txHandler.HandleAddManualTransaction)

			r.Get("/goals", goalHandler.HandleGetGoals)
			r.Post("/goals", goalHandler.HandleCreateGoal)
			r.Put("/goals/{id}/progress", goalHandler.HandleUpdateGoalProgress)

			r.Get("/financial-health", healthHandler.HandleGetFinancialHealth)
			r.Get("/financial-health/detailed", healthHandler.HandleGetDetailedHealth)
			r.Get("/financial-health/insights", healthHandler.HandleGetHealthInsights)

			r.Get("/investment-recommendations", investmentHandler.HandleGetRecommendations)
			r.Post("/investment-recommendations/generate", investmentHandler.HandleGenerateRecommendations)
			r.Get("/investment-recommendations/rebalance", investmentHandler.HandleRebalance)

			r.Post("/ml/categorize", txHandler.HandleCategorize)
			r.Post("/ml/detect-anomalies", txHandler.HandleDetectAnomalies)

			r.Get("/spending-analytics", analyticsHandler.HandleGetSpendingAnalytics)
			r.Get("/net-worth-history", analyticsHandler.HandleGetNetWorthHistory)
			r.Get("/insights", analyticsHandler.HandleGetInsights)

			r.Put("/user/credit-score", userHandler.HandleSetCreditScore)
			r.Post("/demo-data", userHandler.HandleSeedDemoData)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		http.NotFound(w, r)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
