package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/stayflow/booking-pipeline/internal/events"
	"github.com/stayflow/booking-pipeline/internal/handler"
	"github.com/stayflow/booking-pipeline/internal/repository"
	"github.com/stayflow/booking-pipeline/pkg/config"
	"github.com/stayflow/booking-pipeline/pkg/db"
	"github.com/stayflow/booking-pipeline/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Info("Service configuration",
		zap.String("stats_port", cfg.StatsPort),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("kafka_group_id", cfg.KafkaGroupID))

	gdb, err := db.Open(cfg.StatsDSN)
	if err != nil {
		logger.Fatal("Failed to connect to stats database", zap.Error(err))
	}

	aggregateRepo := repository.NewAggregateRepository(gdb)
	if err := aggregateRepo.Migrate(); err != nil {
		logger.Fatal("Failed to migrate aggregate schema", zap.Error(err))
	}

	reader := events.NewReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
	consumer := events.NewConsumer(reader, aggregateRepo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting booking event consumer",
			zap.String("topic", cfg.KafkaTopic),
			zap.String("group_id", cfg.KafkaGroupID))
		if err := consumer.Run(ctx); err != nil {
			logger.Error("Consumer stopped with error", zap.Error(err))
		}
	}()

	statsHandler := handler.NewStatsHandler(aggregateRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats/users/:id", statsHandler.GetUserStats)
		v1.GET("/stats/hotels/:id", statsHandler.GetHotelStats)
		v1.GET("/stats/days/:day", statsHandler.GetDayStats)
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "healthy",
				"service": "booking-aggregator",
				"port":    cfg.StatsPort,
			})
		})
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.StatsPort,
		Handler: router,
	}

	go func() {
		logger.Info("Starting stats HTTP server", zap.String("port", cfg.StatsPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop fetching; an in-flight apply finishes before the consumer exits.
	cancel()
	if err := reader.Close(); err != nil {
		logger.Error("Failed to close reader", zap.Error(err))
	}
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Aggregator stopped")
}
