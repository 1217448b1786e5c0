package main

import (
	"github.com/fieldops/duty-assignment-api/internal/config"
	"github.com/fieldops/duty-assignment-api/internal/database"
	"github.com/fieldops/duty-assignment-api/internal/handlers"
	"github.com/fieldops/duty-assignment-api/internal/middleware"
	"github.com/fieldops/duty-assignment-api/internal/repository"
	"github.com/fieldops/duty-assignment-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set up logging
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Wire repositories
	db := database.GetDB()
	assignmentStore := repository.NewAssignmentStore(db)
	personDirectory := repository.NewPersonDirectory(db)
	postDirectory := repository.NewPostDirectory(db)

	// Wire services
	notifier := services.NewLogNotificationDispatcher(log)
	activity := services.NewLogActivityLogger(log)
	eligibility := services.NewEligibilityValidator(personDirectory, assignmentStore)
	capacity := services.NewCapacityGuard(postDirectory, assignmentStore)
	assignmentService := services.NewAssignmentService(
		assignmentStore, personDirectory, postDirectory,
		eligibility, capacity, notifier, activity,
	)
	transferService := services.NewTransferService(
		assignmentStore, personDirectory, postDirectory, notifier, activity,
	)

	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, transferService, eligibility)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Duty Assignment API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireActor(personDirectory))
	{
		assignments := api.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.ListAssignments)
			assignments.POST("", assignmentHandler.CreateAssignment)
			assignments.POST("/transfer", assignmentHandler.TransferAssignment)
			assignments.GET("/:id", assignmentHandler.GetAssignment)
			assignments.POST("/:id/approve", assignmentHandler.ApproveAssignment)
			assignments.POST("/:id/reject", assignmentHandler.RejectAssignment)
			assignments.POST("/:id/end", assignmentHandler.EndAssignment)
		}

		api.GET("/operators/:id/eligibility", assignmentHandler.CheckEligibility)
	}

	// Start server
	log.Infof("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
