package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"sixfinity_gym/internal/models"
	"sixfinity_gym/internal/services"
)

// The worker only runs what the scheduled_tasks table tells it to. This tool
// inserts one task, or seeds the standing sweeps a deployment needs.
func main() {
	taskName := flag.String("task_name", "", "Name of the task")
	argsStr := flag.String("arguments", "{}", "JSON arguments for the task")
	dueStr := flag.String("due", "", "Due date (format: 2006-01-02 15:04, local time, or RFC3339)")
	taskType := flag.String("tasktype", "onetime", "Task type (onetime or recurring)")
	recurring := flag.String("recurring", "", "RFC 5545 RRULE string for recurring tasks")
	maxAttempt := flag.Int("max_attempt", 3, "Max attempts")
	seed := flag.Bool("seed", false, "Seed the standing payment and booking sweeps instead")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := services.InitDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect DB: %v", err)
	}

	if *seed {
		seedSweeps(db)
		return
	}

	if *taskName == "" || *dueStr == "" {
		fmt.Println("Usage: schedule_task -task_name <name> -due <YYYY-MM-DD HH:MM> [options], or schedule_task -seed")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(*argsStr), &args); err != nil {
		log.Fatalf("Invalid JSON arguments: %v", err)
	}

	due, err := time.Parse(time.RFC3339, *dueStr)
	if err != nil {
		due, err = time.ParseInLocation("2006-01-02 15:04", *dueStr, time.Local)
		if err != nil {
			log.Fatalf("Invalid due date format. Use '2006-01-02 15:04' (local) or RFC3339: %v", err)
		}
	}

	var recurringPtr *string
	if *recurring != "" {
		recurringPtr = recurring
	}

	task := models.ScheduledTask{
		TaskName:          *taskName,
		Arguments:         args,
		Due:               due,
		TaskType:          models.ScheduledTaskType(*taskType),
		RecurringInterval: recurringPtr,
		MaxAttempt:        *maxAttempt,
		Status:            models.ScheduledTaskStatusActive,
	}

	if err := db.Create(&task).Error; err != nil {
		log.Fatalf("Failed to create task: %v", err)
	}

	fmt.Printf("Successfully created task ID: %d\n", task.ID)
	fmt.Printf("Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due, task.TaskType)
}

// seedSweeps inserts the recurring sweeps every deployment needs, skipping
// any that already have an active row.
func seedSweeps(db *gorm.DB) {
	sweeps := []struct {
		name     string
		rrule    string
		args     map[string]interface{}
		maxRetry int
	}{
		{"verify_pending_payments", "FREQ=MINUTELY;INTERVAL=10", map[string]interface{}{"min_age_minutes": 10}, 3},
		{"process_pending_refunds", "FREQ=MINUTELY;INTERVAL=30", map[string]interface{}{}, 3},
		{"booking_reminders", "FREQ=MINUTELY;INTERVAL=15", map[string]interface{}{"lead_minutes": 120}, 3},
		{"mark_no_shows", "FREQ=MINUTELY;INTERVAL=15", map[string]interface{}{"grace_minutes": 30}, 3},
	}

	for _, s := range sweeps {
		var count int64
		db.Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ?", s.name, models.ScheduledTaskStatusActive).
			Count(&count)
		if count > 0 {
			fmt.Printf("Skipping %s: already scheduled\n", s.name)
			continue
		}

		rrule := s.rrule
		task := models.ScheduledTask{
			TaskName:          s.name,
			Arguments:         s.args,
			Due:               time.Now(),
			TaskType:          models.ScheduledTaskTypeRecurring,
			RecurringInterval: &rrule,
			MaxAttempt:        s.maxRetry,
			Status:            models.ScheduledTaskStatusActive,
		}
		if err := db.Create(&task).Error; err != nil {
			log.Fatalf("Failed to seed %s: %v", s.name, err)
		}
		fmt.Printf("Seeded %s (ID %d)\n", s.name, task.ID)
	}
}
