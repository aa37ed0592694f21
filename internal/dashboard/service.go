package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
)

// Shift window the hourly chart covers
const (
	shiftStartHour = 9
	shiftEndHour   = 17
)

var ErrNoSummary = errors.New("no summary for date")

// Service computes and serves the aggregated dashboard data
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a dashboard service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("service", "dashboard").Logger(),
	}
}

// Summary returns the persisted daily snapshot for the date
func (s *Service) Summary(date string) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if err := s.db.Where("date = ?", date).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSummary
		}
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}
	return &summary, nil
}

// Hourly returns the per-hour chart rows for the date
func (s *Service) Hourly(date string) ([]models.HourlyProduction, error) {
	var rows []models.HourlyProduction
	if err := s.db.Where("date = ?", date).Order("hour ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load hourly production: %w", err)
	}
	return rows, nil
}

// Equipment returns the equipment board rows
func (s *Service) Equipment() ([]models.Equipment, error) {
	var rows []models.Equipment
	if err := s.db.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	return rows, nil
}

// Aggregate recomputes the summary row and the hourly chart rows for the
// date from work orders, production results, and equipment. It replaces any
// previous aggregation for the same date so re-running is safe.
func (s *Service) Aggregate(date string) (*models.DashboardSummary, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)

	// Orders whose window covers the date contribute their plan
	var planned int64
	err = s.db.Model(&models.WorkOrder{}).
		Where("start_date <= ? AND due_date >= ?", date, date).
		Select("COALESCE(SUM(planned_qty), 0)").Scan(&planned).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum planned quantity: %w", err)
	}

	var results []models.ProductionResult
	err = s.db.Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load production results: %w", err)
	}

	var actual, defects int
	actualByHour := make(map[string]int)
	for _, r := range results {
		actual += r.ProducedQty
		defects += r.DefectQty
		actualByHour[r.StartTime.Format("15:00")] += r.ProducedQty
	}

	var totalEquipment, activeEquipment int64
	if err := s.db.Model(&models.Equipment{}).Count(&totalEquipment).Error; err != nil {
		return nil, fmt.Errorf("failed to count equipment: %w", err)
	}
	err = s.db.Model(&models.Equipment{}).
		Where("status = ?", models.EquipmentRunning).Count(&activeEquipment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active equipment: %w", err)
	}

	summary := &models.DashboardSummary{
		Date:            date,
		PlannedQty:      int(planned),
		ActualQty:       actual,
		ActiveEquipment: int(activeEquipment),
		TotalEquipment:  int(totalEquipment),
	}
	if planned > 0 {
		summary.AchievementRate = round1(float64(actual) / float64(planned) * 100)
	}
	if actual > 0 {
		summary.DefectRate = round1(float64(defects) / float64(actual) * 100)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Replace the previous aggregation for the date
		if err := tx.Where("date = ?", date).Delete(&models.DashboardSummary{}).Error; err != nil {
			return fmt.Errorf("failed to clear old summary: %w", err)
		}
		if err := tx.Create(summary).Error; err != nil {
			return fmt.Errorf("failed to store summary: %w", err)
		}

		if err := tx.Where("date = ?", date).Delete(&models.HourlyProduction{}).Error; err != nil {
			return fmt.Errorf("failed to clear old hourly rows: %w", err)
		}

		// The plan is spread evenly across the shift hours
		plannedPerHour := int(planned) / (shiftEndHour - shiftStartHour)
		for h := shiftStartHour; h < shiftEndHour; h++ {
			hour := fmt.Sprintf("%02d:00", h)
			row := models.HourlyProduction{
				Date:    date,
				Hour:    hour,
				Planned: plannedPerHour,
				Actual:  actualByHour[hour],
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to store hourly row: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("date", date).
		Int("planned_qty", summary.PlannedQty).
		Int("actual_qty", summary.ActualQty).
		Float64("achievement_rate", summary.AchievementRate).
		Msg("Dashboard summary aggregated")

	return summary, nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
