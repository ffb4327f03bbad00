// main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/booking-api/config"
	"github.com/slotwise/booking-api/endpoint"
	"github.com/slotwise/booking-api/mail"
	"github.com/slotwise/booking-api/middleware"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/notification"
	"github.com/slotwise/booking-api/queue"
	"github.com/slotwise/booking-api/util"
)

func main() {
	// Load the configuration
	cfg := config.LoadConfig()
	util.SetJWTSecret(cfg.JWTSecret)

	db, err := config.ConnectMySQL()
	if err != nil {
		log.Fatalf("Error connecting to MySQL: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Appointment{}); err != nil {
		log.Fatalf("Error migrating schema: %v", err)
	}

	if _, err := config.ConnectRedis(); err != nil {
		util.Logger().Warnf("Redis unavailable, continuing without it: %v", err)
	}

	store := buildNotificationStore()

	// The mail worker consumes cancellation jobs outside the request path.
	q := queue.New(config.GetRedisClient())
	sender := mail.NewSender(cfg)
	q.Handle(queue.CancellationMailJob, func(ctx context.Context, payload json.RawMessage) error {
		return handleCancellationMail(sender, payload)
	})
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go q.Run(workerCtx)

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.NotificationStoreMiddleware(store))
	router.Use(middleware.QueueMiddleware(q))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	router.Static("/files", cfg.UploadDir)

	router.POST("/sessions", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.POST("/users", endpoint.CreateUser)

	auth := router.Group("/")
	auth.Use(middleware.Authenticate())
	{
		auth.PUT("/users", endpoint.UpdateUser)
		auth.GET("/providers", endpoint.ListProviders)
		auth.GET("/appointments", endpoint.ListAppointments)
		auth.POST("/appointments", endpoint.CreateAppointment)
		auth.DELETE("/appointments/:id", endpoint.CancelAppointment)
		auth.GET("/schedule", endpoint.Schedule)
		auth.GET("/available/:providerId", endpoint.ListAvailability)
		auth.GET("/notifications", endpoint.ListNotifications)
		auth.PUT("/notifications/:id", endpoint.MarkNotificationRead)
		auth.POST("/files", endpoint.UploadFile)
	}

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

// handleCancellationMail decodes a cancellation job and hands it to the sender.
func handleCancellationMail(sender *mail.Sender, payload json.RawMessage) error {
	var msg mail.CancellationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode cancellation mail payload: %w", err)
	}
	return sender.SendCancellationMail(msg)
}

// buildNotificationStore prefers MongoDB and falls back to process memory
// when no document store is configured.
func buildNotificationStore() notification.Store {
	if _, err := config.ConnectMongo(); err != nil {
		util.Logger().Warnf("MongoDB unavailable: %v", err)
	}
	if coll := config.GetMongoCollection("notifications"); coll != nil {
		return notification.NewMongoStore(coll)
	}
	util.Logger().Warn("No MongoDB configured, keeping notifications in memory")
	return notification.NewMemoryStore()
}
