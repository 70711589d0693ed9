// api/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cartpulse/api/analytics"
	"cartpulse/api/database"
	"cartpulse/api/handlers"
	"cartpulse/api/ledger"
	"cartpulse/api/middleware"
	"cartpulse/api/revenue"
	"cartpulse/api/store"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL (users) ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- ClickHouse (event warehouse) ---
	chClient, err := database.NewClickHouseDB()
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse warehouse: %v", err)
	}
	defer chClient.Close()

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	eventStore := store.NewEventStore(chClient, os.Getenv("EVENTS_TABLE"))

	// --- Session reconstruction & attribution engine ---
	resolver := analytics.NewAttributionResolver(splitCSV(os.Getenv("OWNED_DOMAINS")))
	engine := analytics.NewEngine(eventStore, resolver)

	// --- Payment ledgers & FX ---
	cardLedger := ledger.NewCardLedger(os.Getenv("STRIPE_API_KEY"))
	walletLedger := ledger.NewWalletLedger(
		envOr("PAYPAL_API_BASE", "https://api-m.paypal.com"),
		os.Getenv("PAYPAL_CLIENT_ID"),
		os.Getenv("PAYPAL_CLIENT_SECRET"),
	)
	rateSource := revenue.NewHTTPRateSource(envOr("FX_API_BASE", "https://api.frankfurter.app"))
	overrideRates, err := parseOverrideRates(os.Getenv("FX_OVERRIDE_RATES"))
	if err != nil {
		log.Fatalf("Malformed FX_OVERRIDE_RATES: %v", err)
	}

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore)
	trackHandlers := handlers.NewTrackHandlers(eventStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(engine, eventStore)
	revenueHandlers := handlers.NewRevenueHandlers(cardLedger, walletLedger, rateSource, overrideRates)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			protected.POST("/track", trackHandlers.TrackEvents)

			stats := protected.Group("/stats")
			{
				stats.GET("/sessions", analyticsHandlers.GetSessions)
				stats.GET("/purchase-sessions", analyticsHandlers.GetPurchaseSessions)
				stats.GET("/event-params", analyticsHandlers.GetEventParams)
			}

			rev := protected.Group("/revenue")
			{
				rev.GET("/cards", revenueHandlers.GetCardRevenue)
				rev.GET("/wallet", revenueHandlers.GetWalletRevenue)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// parseOverrideRates decodes the optional FX_OVERRIDE_RATES JSON object
// ({"EUR": 0.92, ...}). A malformed value is a startup-fatal
// misconfiguration, not a per-request error.
func parseOverrideRates(raw string) (map[string]float64, error) {
	if raw == "" {
		return nil, nil
	}
	rates := map[string]float64{}
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
