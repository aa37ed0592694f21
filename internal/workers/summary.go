package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/dashboard"
	"github.com/mesboard-dev/mesboard/internal/models"
	"github.com/mesboard-dev/mesboard/internal/tasks"
)

// HandleAggregateSummary recomputes the dashboard aggregation for the date in
// the task payload (today when empty) and stamps the singleton config with
// the completion time and the next scheduled run.
func HandleAggregateSummary(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseTaskPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	date := payload.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	svc := dashboard.NewService(db, logger)
	summary, err := svc.Aggregate(date)
	if err != nil {
		return fmt.Errorf("failed to aggregate summary for %s: %w", date, err)
	}

	var config models.Config
	if err := db.First(&config).Error; err != nil {
		// No config yet (first setup not done) - aggregation still succeeded
		logger.Warn().Err(err).Msg("Config not found, skipping schedule stamp")
		return nil
	}

	now := time.Now()
	config.LastAggregatedAt = &now
	config.NextAggregateAt = nil
	if config.SummarySchedule != "" {
		schedule, err := cron.ParseStandard(config.SummarySchedule)
		if err != nil {
			logger.Error().Err(err).Str("schedule", config.SummarySchedule).Msg("Invalid summary schedule")
		} else {
			next := schedule.Next(now)
			config.NextAggregateAt = &next
		}
	}

	if err := db.Save(&config).Error; err != nil {
		return fmt.Errorf("failed to stamp config: %w", err)
	}

	logger.Info().
		Str("date", date).
		Int("actual_qty", summary.ActualQty).
		Msg("Summary aggregation task complete")

	return nil
}
