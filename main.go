package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"gardenia/backend/config"
	"gardenia/backend/db"
	"gardenia/backend/handlers"
	"gardenia/backend/middleware"
	"gardenia/backend/services"
	"gardenia/backend/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := utils.NewLogger()

	// Connect to database
	database, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Initialize Redis client
	redisClient := services.NewRedisClient(cfg, logger)
	defer redisClient.Close()

	// Initialize services
	statusStore := services.NewUserStatusStore(database, redisClient, cfg.PresenceTTL, logger)
	presence := services.NewPresenceService(statusStore, cfg.HeartbeatInterval, logger)
	presence.Start()

	emailService := services.NewEmailService(cfg, logger)
	scheduler := services.NewReminderScheduler(database, emailService, cfg.ReminderHour, logger)
	scheduler.Start()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(database, cfg.JWTSecret, logger)
	postHandler := handlers.NewPostHandler(database, logger)
	plantHandler := handlers.NewPlantHandler(database, logger)
	reminderHandler := handlers.NewReminderHandler(database, emailService, cfg.UploadDir, logger)
	quizHandler := handlers.NewQuizHandler(database, logger)
	contactHandler := handlers.NewContactHandler(database, logger)
	userPresenceHandler := handlers.NewUserPresenceHandler(statusStore, logger)
	wsHandler := handlers.NewWSHandler(presence, cfg.JWTSecret, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "gardenia-backend",
			"timestamp": time.Now(),
		})
	})

	// Presence websocket endpoint (token carried in the query string)
	router.GET("/ws", wsHandler.Serve)

	// Uploaded reminder-plant images
	router.Static("/uploads", cfg.UploadDir)

	authRequired := middleware.Auth(cfg.JWTSecret)

	// API routes
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.GET("/allusers", authHandler.AllUsers)
			auth.GET("/usercount", authHandler.UserCount)
			auth.POST("/logout", authHandler.Logout)
			auth.DELETE("/deleteuser/:id", authHandler.DeleteUser)
			auth.PUT("/status/:userId", authRequired, authHandler.UpdateStatus)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.POST("", authRequired, postHandler.CreatePost)
			posts.POST("/:id/like", authRequired, postHandler.LikePost)
			posts.POST("/:id/comment", authRequired, postHandler.CommentPost)
		}

		plants := api.Group("/plants")
		{
			plants.GET("", plantHandler.ListPlants)
			plants.GET("/:id", plantHandler.GetPlant)
			plants.POST("", plantHandler.CreatePlant)
		}

		reminders := api.Group("/plantreminder")
		{
			reminders.GET("", reminderHandler.ListReminders)
			reminders.POST("", reminderHandler.CreateReminder)
			reminders.PUT("/:id/water", reminderHandler.WaterReminder)
			reminders.DELETE("/:id", reminderHandler.DeleteReminder)
		}

		questions := api.Group("/questions")
		{
			questions.POST("/add-question", quizHandler.AddQuestion)
			questions.GET("", quizHandler.ListQuestions)
			questions.DELETE("/delete-question/:id", quizHandler.DeleteQuestion)
			questions.POST("/save-attempt", quizHandler.SaveAttempt)
			questions.GET("/quizcount", quizHandler.AttemptCount)
		}

		contact := api.Group("/contact")
		{
			contact.POST("", contactHandler.SubmitContact)
			contact.GET("/contactcount", contactHandler.ContactCount)
			contact.GET("/contactget", contactHandler.ListContacts)
		}

		users := api.Group("/users")
		{
			users.GET("/online", authRequired, userPresenceHandler.OnlineUsers)
			users.GET("/:id/status", authRequired, userPresenceHandler.UserStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Gardenia backend", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop background services
	scheduler.Stop()
	presence.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
