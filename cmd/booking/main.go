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

	"github.com/stayflow/booking-pipeline/internal/events"
	"github.com/stayflow/booking-pipeline/internal/handler"
	"github.com/stayflow/booking-pipeline/internal/policy"
	"github.com/stayflow/booking-pipeline/internal/repository"
	"github.com/stayflow/booking-pipeline/internal/service"
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
		zap.String("port", cfg.Port),
		zap.String("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic),
		zap.String("monolith_base_url", cfg.MonolithBaseURL))

	gdb, err := db.Open(cfg.BookingDSN)
	if err != nil {
		logger.Fatal("Failed to connect to booking database", zap.Error(err))
	}

	bookingRepo := repository.NewBookingRepository(gdb)
	if err := bookingRepo.Migrate(); err != nil {
		logger.Fatal("Failed to migrate booking schema", zap.Error(err))
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	defer producer.Close()

	gateway := policy.NewClient(cfg.MonolithBaseURL, cfg.MonolithTimeout)
	bookingService := service.NewBookingService(bookingRepo, gateway, producer, logger)
	bookingHandler := handler.NewBookingHandler(bookingService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/bookings", bookingHandler.CreateBooking)
		v1.GET("/bookings", bookingHandler.ListBookings)
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "healthy",
				"service": "booking-service",
				"port":    cfg.Port,
			})
		})
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
