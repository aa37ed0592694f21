package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Dashboard aggregation task (recomputes one day's summary + hourly rows)
	TypeAggregateSummary = "summary:aggregate"
)

// TaskPayload is the common payload for all tasks
type TaskPayload struct {
	Date string `json:"date,omitempty"` // YYYY-MM-DD
}

// NewAggregateSummaryTask creates a task to aggregate the dashboard for a date
func NewAggregateSummaryTask(date string) (*asynq.Task, error) {
	payload, err := json.Marshal(TaskPayload{
		Date: date,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAggregateSummary, payload), nil
}

// ParseTaskPayload decodes the common payload from a task
func ParseTaskPayload(t *asynq.Task) (TaskPayload, error) {
	var payload TaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
