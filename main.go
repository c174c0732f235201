// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"veloshop/api/analytics"
	"veloshop/api/database"
	"veloshop/api/handlers"
	"veloshop/api/logger"
	"veloshop/api/middleware"
	"veloshop/api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	zapLogger, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL: users + the mutable visit_sessions event store ---
	dbClient, err := database.NewPostgresDB(zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}
	defer dbClient.Close()

	// --- ClickHouse: optional raw page-view firehose ---
	var eventLogStore *store.EventLogStore
	chClient, err := database.NewClickHouseDB(zapLogger)
	if err != nil {
		zapLogger.Warn("raw page-view log disabled", zap.Error(err))
	} else {
		defer chClient.Close()
		eventLogStore = store.NewEventLogStore(chClient, zapLogger)
	}

	// --- Redis: optional snapshot cache ---
	var snapshotCache *store.SnapshotCache
	redisClient, err := database.NewRedisClient(zapLogger)
	if err != nil {
		zapLogger.Warn("snapshot cache disabled", zap.Error(err))
	} else if redisClient != nil {
		defer redisClient.Close()
		snapshotCache = store.NewSnapshotCache(redisClient, time.Minute, zapLogger)
	}

	// --- Stores and engine ---
	userStore := store.NewUserStore(dbClient.DB, zapLogger)
	visitStore := store.NewVisitStore(dbClient.DB, zapLogger)
	engine := analytics.NewEngine(visitStore, zapLogger)

	// --- Handlers ---
	authHandlers := handlers.NewAuthHandlers(userStore, zapLogger)
	trackHandlers := handlers.NewTrackHandlers(visitStore, eventLogStore, zapLogger)
	analyticsHandlers := handlers.NewAnalyticsHandlers(engine, visitStore, snapshotCache, zapLogger)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		// Dashboard authentication
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Storefront beacons (public: shoppers have no dashboard token)
		api.POST("/track", trackHandlers.TrackPageView)
		api.POST("/track/duration", trackHandlers.TrackVisitDuration)

		// Dashboard analytics (require a valid JWT or internal API key)
		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(zapLogger))
		{
			protected.GET("/analytics", analyticsHandlers.GetAnalytics)
			protected.GET("/visitors/recent", analyticsHandlers.GetRecentVisitors)
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
		zapLogger.Info("API server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("API server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exiting")
}
