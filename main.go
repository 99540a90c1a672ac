package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/handlers"
	"github.com/kvitka-shop/flower-bot/session"
	"github.com/kvitka-shop/flower-bot/utils"
)

const sessionTTL = 600 * time.Second

// Load environment variables from .env file
func init() {
	log.Info("Loading environment variables")
	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file")
	}
}

func main() {
	// Set up logging
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	log.Info("Server Version: Flower Shop Bot V1")

	// Set up Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:        os.Getenv("REDIS_HOST"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          0,
		DialTimeout: 20 * time.Second, // initial connection timeout
	})

	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRedis()

	if _, err := redisClient.Ping(redisCtx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Info("Successfully connected to Redis")

	// Wire up the dialogue pipeline
	store := session.NewRedisStore(redisClient, sessionTTL)
	defer store.Close()

	catalogClient := utils.NewCatalogClient()
	oracleClient := utils.NewOracleClient()
	weatherClient := utils.NewWeatherClient()

	estimator := handlers.NewOrderEstimator(catalogClient, weatherClient)
	flowerHandler := handlers.NewFlowerCatalogHandler(catalogClient, oracleClient, estimator)
	dialogHandler := handlers.NewDialogHandler(oracleClient, flowerHandler)
	chatHandler := handlers.NewChatHandler(store, dialogHandler)

	// Define HTTP routes
	http.HandleFunc("/healthz", handlers.HealthCheckHandler)
	http.HandleFunc("/chat", chatHandler.HandleChat)

	// Set up signal handling
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverExit := make(chan struct{})

	// Start HTTP server in a goroutine
	go func() {
		port := ":" + os.Getenv("PORT")
		if port == ":" {
			port = ":8080"
		}
		log.Info("Starting server on...", port)
		log.Fatal(http.ListenAndServe(port, nil))
		close(serverExit)
	}()

	// On termination, close all connections and shut down the server
	select {
	case <-stop:
		log.Info("Shutting down server...")
	case <-serverExit:
		log.Info("Server exited unexpectedly...")
	}

	log.Info("Server shut down gracefully")
}
