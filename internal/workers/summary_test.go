package workers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
	"github.com/mesboard-dev/mesboard/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestHandleAggregateSummary(t *testing.T) {
	db := newTestDB(t)

	cfg := &models.Config{
		JWTSecret:       "secret",
		SummarySchedule: "0 6 * * *",
	}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	order := &models.WorkOrder{
		OrderNo: "WO-1", ProductName: "Housing", PlannedQty: 100,
		Status: models.OrderStatusInProgress, StartDate: "2026-03-09", DueDate: "2026-03-12",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	task, err := tasks.NewAggregateSummaryTask("2026-03-10")
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := HandleAggregateSummary(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var summary models.DashboardSummary
	if err := db.Where("date = ?", "2026-03-10").First(&summary).Error; err != nil {
		t.Fatalf("summary not stored: %v", err)
	}
	if summary.PlannedQty != 100 {
		t.Errorf("planned = %d, want 100", summary.PlannedQty)
	}

	// The config is stamped with the completion time and the next run
	var stamped models.Config
	if err := db.First(&stamped).Error; err != nil {
		t.Fatalf("config lookup failed: %v", err)
	}
	if stamped.LastAggregatedAt == nil {
		t.Error("expected last aggregated time to be set")
	}
	if stamped.NextAggregateAt == nil {
		t.Fatal("expected next aggregate time to be set")
	}
	if !stamped.NextAggregateAt.After(time.Now()) {
		t.Errorf("next run %v is not in the future", stamped.NextAggregateAt)
	}
}

func TestHandleAggregateSummary_DefaultsToToday(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewAggregateSummaryTask("")
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := HandleAggregateSummary(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	var count int64
	db.Model(&models.DashboardSummary{}).Where("date = ?", today).Count(&count)
	if count != 1 {
		t.Errorf("summaries for today = %d, want 1", count)
	}
}

func TestHandleAggregateSummary_NoConfigIsNotAnError(t *testing.T) {
	db := newTestDB(t)

	task, err := tasks.NewAggregateSummaryTask("2026-03-10")
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}

	if err := HandleAggregateSummary(context.Background(), task, db, zerolog.Nop()); err != nil {
		t.Errorf("handler should tolerate missing config: %v", err)
	}
}

func TestHandleAggregateSummary_BadPayload(t *testing.T) {
	db := newTestDB(t)

	task := asynq.NewTask(tasks.TypeAggregateSummary, []byte("{broken"))
	if err := HandleAggregateSummary(context.Background(), task, db, zerolog.Nop()); err == nil {
		t.Error("expected error for malformed payload")
	}
}
