package workorders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
)

// DueDateOffsetDays is added to the start date to derive the due date
const DueDateOffsetDays = 3

// DefaultPageSize matches the work-order table page size
const DefaultPageSize = 5

var (
	ErrOrderNotFound   = errors.New("work order not found")
	ErrDuplicateOrder  = errors.New("work order number already exists")
	ErrOperatorUnknown = errors.New("operator employee id not found")
)

// ValidationError reports a rejected field with a user-facing message
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Service owns work-order lifecycle rules
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewService creates a work-order service
func NewService(db *gorm.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("service", "workorders").Logger(),
	}
}

// ListParams filters and pages the work-order list
type ListParams struct {
	Keyword  string // product name substring
	Status   string // empty = all
	Page     int
	PageSize int
}

// List returns one page of work orders plus the filtered total
func (s *Service) List(params ListParams) ([]models.WorkOrder, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = DefaultPageSize
	}

	query := s.db.Model(&models.WorkOrder{})
	if kw := strings.TrimSpace(params.Keyword); kw != "" {
		query = query.Where("product_name LIKE ?", "%"+kw+"%")
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count work orders: %w", err)
	}

	var orders []models.WorkOrder
	offset := (params.Page - 1) * params.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(params.PageSize).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list work orders: %w", err)
	}

	return orders, total, nil
}

// CreateParams carries a new work order from the entry form
type CreateParams struct {
	OrderNo     string
	ProductName string
	PlannedQty  int
	StartDate   string // YYYY-MM-DD
}

// Create validates and stores a new work order.
// The due date is derived from the start date; new orders always begin
// PENDING with zero completed quantity and no assigned line.
func (s *Service) Create(params CreateParams) (*models.WorkOrder, error) {
	orderNo := strings.TrimSpace(params.OrderNo)
	if orderNo == "" {
		return nil, invalid("order_no", "order number is required")
	}
	if strings.TrimSpace(params.ProductName) == "" {
		return nil, invalid("product_name", "product name is required")
	}
	if params.PlannedQty < 1 {
		return nil, invalid("planned_qty", "planned quantity must be at least 1")
	}

	start, err := time.Parse("2006-01-02", params.StartDate)
	if err != nil {
		return nil, invalid("start_date", "start date must be YYYY-MM-DD")
	}

	// Orders are planned ahead: the start date must be after today
	if !startsAfterToday(start, time.Now()) {
		return nil, invalid("start_date", "start date must be after today")
	}

	var count int64
	if err := s.db.Model(&models.WorkOrder{}).Where("order_no = ?", orderNo).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check order number: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateOrder
	}

	order := &models.WorkOrder{
		OrderNo:      orderNo,
		ProductName:  strings.TrimSpace(params.ProductName),
		PlannedQty:   params.PlannedQty,
		CompletedQty: 0,
		Status:       models.OrderStatusPending,
		StartDate:    start.Format("2006-01-02"),
		DueDate:      start.AddDate(0, 0, DueDateOffsetDays).Format("2006-01-02"),
	}

	if err := s.db.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create work order: %w", err)
	}

	s.logger.Info().Str("order_no", order.OrderNo).Int("planned_qty", order.PlannedQty).Msg("Work order created")

	return order, nil
}

// startsAfterToday compares calendar dates, each rendered in its own
// location, so the planning rule follows the operator's local day rather
// than UTC midnight.
func startsAfterToday(start, now time.Time) bool {
	return start.Format("2006-01-02") > now.Format("2006-01-02")
}

// UpdateParams carries optional mutations to an existing order
type UpdateParams struct {
	Status       *string
	AssignedLine *string
}

// Update applies the provided fields to the order
func (s *Service) Update(id string, params UpdateParams) (*models.WorkOrder, error) {
	var order models.WorkOrder
	if err := models.FindByID(s.db, id, &order); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load work order: %w", err)
	}

	if params.Status != nil {
		switch *params.Status {
		case models.OrderStatusPending, models.OrderStatusInProgress, models.OrderStatusCompleted:
			order.Status = *params.Status
		default:
			return nil, invalid("status", "unknown status")
		}
	}
	if params.AssignedLine != nil {
		order.AssignedLine = *params.AssignedLine
	}

	if err := s.db.Save(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to update work order: %w", err)
	}

	return &order, nil
}

// Delete removes an order and its production results
func (s *Service) Delete(id string) error {
	var order models.WorkOrder
	if err := models.FindByID(s.db, id, &order); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to load work order: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_order_id = ?", order.ID).Delete(&models.ProductionResult{}).Error; err != nil {
			return fmt.Errorf("failed to delete production results: %w", err)
		}
		if err := tx.Delete(&order).Error; err != nil {
			return fmt.Errorf("failed to delete work order: %w", err)
		}
		return nil
	})
}

// ResultParams carries a production performance entry from the floor
type ResultParams struct {
	WorkOrderID string
	ProducedQty int
	DefectQty   int
	StartTime   time.Time
	EndTime     time.Time
	OperatorID  string
	Note        string
}

// RecordResult validates a performance entry and rolls it up into its work
// order: completed quantity grows by the produced quantity and the status
// advances to IN_PROGRESS, then COMPLETED once the plan is met.
func (s *Service) RecordResult(params ResultParams) (*models.ProductionResult, error) {
	if params.ProducedQty < 1 {
		return nil, invalid("produced_qty", "produced quantity must be at least 1")
	}
	if params.DefectQty < 0 || params.DefectQty > params.ProducedQty {
		return nil, invalid("defect_qty", "defect quantity must be between 0 and produced quantity")
	}
	if !params.EndTime.After(params.StartTime) {
		return nil, invalid("end_time", "end time must be after start time")
	}

	var operatorCount int64
	if err := s.db.Model(&models.User{}).Where("employee_id = ?", params.OperatorID).Count(&operatorCount).Error; err != nil {
		return nil, fmt.Errorf("failed to check operator: %w", err)
	}
	if operatorCount == 0 {
		return nil, ErrOperatorUnknown
	}

	var result *models.ProductionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.WorkOrder
		if err := models.FindByID(tx, params.WorkOrderID, &order); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to load work order: %w", err)
		}

		result = &models.ProductionResult{
			WorkOrderID: order.ID,
			ProductName: order.ProductName,
			ProducedQty: params.ProducedQty,
			DefectQty:   params.DefectQty,
			StartTime:   params.StartTime,
			EndTime:     params.EndTime,
			OperatorID:  params.OperatorID,
			Note:        params.Note,
		}
		if err := tx.Create(result).Error; err != nil {
			return fmt.Errorf("failed to create production result: %w", err)
		}

		order.CompletedQty += params.ProducedQty
		if order.CompletedQty >= order.PlannedQty {
			order.Status = models.OrderStatusCompleted
		} else {
			order.Status = models.OrderStatusInProgress
		}
		if err := tx.Save(&order).Error; err != nil {
			return fmt.Errorf("failed to roll up work order: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("work_order_id", params.WorkOrderID).
		Int("produced_qty", params.ProducedQty).
		Int("defect_qty", params.DefectQty).
		Msg("Production result recorded")

	return result, nil
}

// ListResults returns production results, newest first
func (s *Service) ListResults() ([]models.ProductionResult, error) {
	var results []models.ProductionResult
	if err := s.db.Order("start_time DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list production results: %w", err)
	}
	return results, nil
}
