package main

import (
	"log"
	"os"
	"time"

	"performance-review-api/config"
	"performance-review-api/services"

	"github.com/joho/godotenv"
)

// One-shot workflow sweep, suitable for cron.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitLogging()
	config.InitDB()

	directory := services.NewGormDirectory(config.DB)
	cycles := services.NewGormCycleStore(config.DB)
	reviews := services.NewGormReviewStore(config.DB)
	assigner := services.NewAssignmentEngine(cycles, reviews, directory, nil)
	machine := services.NewPhaseMachine(cycles, assigner)
	notifier := services.NewNotificationCenter(config.DB, directory)
	scheduler := services.NewWorkflowScheduler(cycles, reviews, machine, directory, notifier)

	result := scheduler.RunSweep(time.Now())
	log.Printf("workflow sweep: advanced=%v reminders=%v escalations=%v",
		result.AdvancedCycles, result.RemindersSent, result.Escalations)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Printf("workflow sweep error: %s", e)
		}
		os.Exit(1)
	}
}
