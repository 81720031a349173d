package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/middleware"
	"performance-review-api/routes"
	"performance-review-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging and database
	config.InitLogging()
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Setup routes
	routes.SetupRoutes(router)

	// Start the background workflow sweep when an interval is configured.
	// The scheduler itself is stateless; this ticker is just its trigger.
	if minutes, _ := strconv.Atoi(os.Getenv("WORKFLOW_SWEEP_MINUTES")); minutes > 0 {
		go runSweepLoop(time.Duration(minutes) * time.Minute)
		log.Printf("Workflow sweep scheduled every %d minutes", minutes)
	}

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func runSweepLoop(interval time.Duration) {
	directory := services.NewGormDirectory(config.DB)
	cycles := services.NewGormCycleStore(config.DB)
	reviews := services.NewGormReviewStore(config.DB)
	assigner := services.NewAssignmentEngine(cycles, reviews, directory, nil)
	machine := services.NewPhaseMachine(cycles, assigner)
	notifier := services.NewNotificationCenter(config.DB, directory)
	scheduler := services.NewWorkflowScheduler(cycles, reviews, machine, directory, notifier)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for now := range ticker.C {
		result := scheduler.RunSweep(now)
		log.Printf("workflow sweep: advanced=%d reminders=%d escalations=%d errors=%d",
			len(result.AdvancedCycles), len(result.RemindersSent),
			len(result.Escalations), len(result.Errors))
	}
}
