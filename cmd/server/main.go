package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sterlingcraftco/taxaware-backend/docs"
	"github.com/sterlingcraftco/taxaware-backend/internal/config"
	"github.com/sterlingcraftco/taxaware-backend/internal/database"
	mW "github.com/sterlingcraftco/taxaware-backend/internal/middleware"
	"github.com/sterlingcraftco/taxaware-backend/internal/migrations"
	"github.com/sterlingcraftco/taxaware-backend/internal/paystack"
	"github.com/sterlingcraftco/taxaware-backend/internal/services"
)

// @title TaxAware Backend API
// @version 1.0
// @description Ledger and billing engine for the TaxAware platform: tax-savings accounts, recurring transactions, quarterly interest and subscription billing
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "TaxAware Backend API"
	docs.SwaggerInfo.Description = "Ledger and billing engine for the TaxAware platform"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	db := database.InitDatabase(cfg.Database)
	defer db.Close()

	if err := migrations.Run(db, cfg.Database.MigrationsPath, cfg.Database.Name); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := database.InitRedis(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	gateway := paystack.NewClient(cfg.Paystack)

	savingsService := services.NewSavingsService(db, redisClient, gateway, cfg.Savings)
	interestService := services.NewInterestService(db, cfg.Savings)
	recurringService := services.NewRecurringService(db)
	subscriptionService := services.NewSubscriptionService(db, gateway, cfg.Billing)

	mW.InitAuthMiddleware(redisClient, cfg.JWT.SecretKey)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+cfg.Port+"/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)
			r.Use(mW.RateLimit(20, 40))

			// Savings endpoints
			r.Post("/savings/deposit/initialize", savingsService.InitializeDeposit)
			r.Post("/savings/deposit/verify", savingsService.VerifyDeposit)
			r.Post("/savings/withdraw", savingsService.Withdraw)
			r.Get("/savings/account", savingsService.GetAccount)
			r.Get("/savings/transactions", savingsService.ListTransactions)

			// Recurring rule endpoints
			r.Post("/recurring", recurringService.CreateRule)
			r.Get("/recurring", recurringService.ListRules)
			r.Put("/recurring/{ruleId}", recurringService.UpdateRule)
			r.Delete("/recurring/{ruleId}", recurringService.DeleteRule)
			r.Patch("/recurring/{ruleId}/toggle", recurringService.ToggleRule)
			r.Post("/recurring/{ruleId}/process", recurringService.ProcessDue)

			// Subscription endpoints
			r.Post("/subscriptions/initialize", subscriptionService.InitializeSubscription)
			r.Post("/subscriptions/verify", subscriptionService.VerifySubscription)
			r.Get("/subscriptions", subscriptionService.GetSubscription)
		})

		// Scheduler entry points (auth required, separate limiter budget)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)
			r.Use(mW.RateLimit(2, 4))

			r.Post("/recurring/process-due", recurringService.ProcessDueRules)
			r.Post("/interest/run", interestService.RunAccrualHandler)
			r.Post("/interest/reset-quarter", interestService.ResetQuarterHandler)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
