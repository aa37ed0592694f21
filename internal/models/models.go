package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config represents the global configuration for the single-tenant deployment
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first setup (64 hex chars)

	// Dashboard aggregation configuration
	SummarySchedule  string     `json:"summary_schedule"`   // Cron expression, e.g. "*/10 * * * *", empty = no auto aggregation
	LastAggregatedAt *time.Time `json:"last_aggregated_at"` // When the last summary aggregation completed
	NextAggregateAt  *time.Time `json:"next_aggregate_at"`  // Calculated from cron schedule
}

// User account statuses
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User represents a local operator or administrator account
type User struct {
	BaseModel
	EmployeeID   string    `json:"employee_id" gorm:"unique;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Department   string    `json:"department"`
	Position     string    `json:"position"`
	Username     string    `json:"username" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"not null;default:USER"` // ADMIN or USER
	Status       string    `json:"status" gorm:"not null;default:INACTIVE"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Work order statuses
const (
	OrderStatusPending    = "PENDING"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
)

// WorkOrder represents a production order for a single product run
type WorkOrder struct {
	BaseModel
	OrderNo      string `json:"order_no" gorm:"unique;not null"` // Natural key entered by planners (e.g. WO-20260831-001)
	ProductName  string `json:"product_name" gorm:"not null"`
	PlannedQty   int    `json:"planned_qty" gorm:"not null"`
	CompletedQty int    `json:"completed_qty" gorm:"not null;default:0"`
	Status       string `json:"status" gorm:"not null;default:PENDING"`
	AssignedLine string `json:"assigned_line"`
	StartDate    string `json:"start_date" gorm:"not null"` // YYYY-MM-DD
	DueDate      string `json:"due_date" gorm:"not null"`   // YYYY-MM-DD
}

// ProductionResult represents a single performance entry reported from the floor
type ProductionResult struct {
	BaseModel
	WorkOrderID string    `json:"work_order_id" gorm:"not null"`
	ProductName string    `json:"product_name" gorm:"not null"`
	ProducedQty int       `json:"produced_qty" gorm:"not null"`
	DefectQty   int       `json:"defect_qty" gorm:"not null;default:0"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`
	OperatorID  string    `json:"operator_id" gorm:"not null"` // Employee ID of the reporting operator
	Note        string    `json:"note"`

	// Relationships
	WorkOrder WorkOrder `json:"work_order,omitzero" gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE"`
}

// Equipment statuses
const (
	EquipmentRunning     = "RUNNING"
	EquipmentMaintenance = "MAINTENANCE"
	EquipmentStopped     = "STOPPED"
)

// Equipment represents a machine on a production line
type Equipment struct {
	BaseModel
	Code          string  `json:"equipment_code" gorm:"unique;not null"`
	Name          string  `json:"equipment_name" gorm:"not null"`
	Line          string  `json:"line"`
	Status        string  `json:"status" gorm:"not null;default:STOPPED"`
	OperationRate float64 `json:"operation_rate" gorm:"not null;default:0"`
}

// HourlyProduction is one aggregated chart row: planned vs actual for an hour
type HourlyProduction struct {
	BaseModel
	Date    string `json:"date" gorm:"not null;index"` // YYYY-MM-DD
	Hour    string `json:"hour" gorm:"not null"`       // e.g. "09:00"
	Planned int    `json:"planned" gorm:"not null"`
	Actual  int    `json:"actual" gorm:"not null"`
}

// DashboardSummary is the aggregated daily snapshot shown on the dashboard cards
type DashboardSummary struct {
	BaseModel
	Date            string  `json:"date" gorm:"unique;not null"` // YYYY-MM-DD
	PlannedQty      int     `json:"planned_qty" gorm:"not null"`
	ActualQty       int     `json:"actual_qty" gorm:"not null"`
	AchievementRate float64 `json:"achievement_rate" gorm:"not null"`
	DefectRate      float64 `json:"defect_rate" gorm:"not null"`
	ActiveEquipment int     `json:"active_equipment" gorm:"not null"`
	TotalEquipment  int     `json:"total_equipment" gorm:"not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Config{}, &WorkOrder{}, &ProductionResult{},
		&Equipment{}, &HourlyProduction{}, &DashboardSummary{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
