package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
	"github.com/mesboard-dev/mesboard/internal/tasks"
)

// StartSummaryScheduler runs a periodic check (every minute) for a due
// dashboard aggregation and enqueues the task when the cron schedule fires
func StartSummaryScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueSummaryTask(client, db, logger)

	for range ticker.C {
		checkAndEnqueueSummaryTask(client, db, logger)
	}
}

func checkAndEnqueueSummaryTask(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton config
	var config models.Config
	err := db.First(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping aggregation check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for aggregation")
		return
	}

	if config.SummarySchedule == "" {
		logger.Debug().Msg("No summary schedule configured")
		return
	}

	now := time.Now()

	// First run after the schedule is set: compute the next fire time only
	if config.NextAggregateAt == nil {
		schedule, err := cron.ParseStandard(config.SummarySchedule)
		if err != nil {
			logger.Error().Err(err).Str("schedule", config.SummarySchedule).Msg("Invalid summary schedule")
			return
		}
		next := schedule.Next(now)
		config.NextAggregateAt = &next
		if err := db.Save(&config).Error; err != nil {
			logger.Error().Err(err).Msg("Failed to save next aggregation time")
		}
		return
	}

	if config.NextAggregateAt.After(now) {
		logger.Debug().
			Time("next_aggregate_at", *config.NextAggregateAt).
			Msg("Aggregation not due yet")
		return
	}

	task, err := tasks.NewAggregateSummaryTask(now.Format("2006-01-02"))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build aggregation task")
		return
	}

	if _, err := client.Enqueue(task); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue aggregation task")
		return
	}

	logger.Info().
		Str("schedule", config.SummarySchedule).
		Msg("Enqueued dashboard aggregation task")

	// Clear the fire time; the handler stamps the next one on completion
	config.NextAggregateAt = nil
	if err := db.Save(&config).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to clear aggregation fire time")
	}
}
