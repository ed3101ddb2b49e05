package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	_ "gritinterview/docs"
	"gritinterview/internal/app"
	"gritinterview/internal/config"
	"gritinterview/internal/oracle"
)

// @title GRIT Interview API
// @version 1.0
// @description Structured GRIT interview sessions scored by an external reasoning service
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	serverCfg := config.LoadServerConfig()

	// Load oracle config and log settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("Oracle Config:")
	log.Printf("  Backend:       %s", aiConfig.Backend)
	log.Printf("  Poll interval: %s", aiConfig.PollInterval)
	log.Printf("  Job timeout:   %s", aiConfig.JobTimeout)
	if aiConfig.IsEnabled() {
		log.Println("  Credentials:   configured ✓")
	} else {
		log.Println("  Credentials:   NOT SET (using mock oracle)")
	}

	interviewCfg, err := config.LoadInterviewConfig(os.Getenv("INTERVIEW_CONFIG"))
	if err != nil {
		log.Fatal("Failed to load interview config:", err)
	}
	log.Printf("Interview: %d turns, selection %s", interviewCfg.MaxTurns, interviewCfg.Selection)

	orc, err := oracle.New(ctx, aiConfig)
	if err != nil {
		log.Fatal("Failed to create oracle:", err)
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(serverCfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(serverCfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: serverCfg.RedisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	a, err := app.New(db, rdb, orc, serverCfg, aiConfig, interviewCfg)
	if err != nil {
		log.Fatal("Failed to build services:", err)
	}
	defer a.Close()
	log.Println("WebSocket hub started")

	// Start server
	srv := &http.Server{
		Addr:    ":" + serverCfg.Port,
		Handler: a.Router(),
	}

	go func() {
		log.Printf("Server starting on :%s", serverCfg.Port)
		log.Printf("Host auth: username=%s", serverCfg.HostUsername)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST /v1/sessions")
		log.Println("  GET  /v1/sessions/{sessionId}")
		log.Println("  POST /v1/sessions/{sessionId}/answers")
		log.Println("  GET  /v1/sessions/{sessionId}/summary")
		log.Println("  GET  /v1/admin/sessions")
		log.Println("  WS   /v1/ws/sessions/{sessionId}")
		log.Println("  WS   /v1/ws/host")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
