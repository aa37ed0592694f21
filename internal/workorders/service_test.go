package workorders

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewService(db, zerolog.Nop())
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02")
}

func createOrder(t *testing.T, svc *Service, orderNo string, qty int) *models.WorkOrder {
	t.Helper()

	order, err := svc.Create(CreateParams{
		OrderNo:     orderNo,
		ProductName: "Sensor Housing",
		PlannedQty:  qty,
		StartDate:   tomorrow(),
	})
	if err != nil {
		t.Fatalf("failed to create order %s: %v", orderNo, err)
	}
	return order
}

func createOperator(t *testing.T, svc *Service, employeeID string) {
	t.Helper()

	user := &models.User{
		EmployeeID:   employeeID,
		Name:         "Test Operator",
		Username:     "op-" + employeeID,
		PasswordHash: "x",
		Role:         "USER",
		Status:       models.UserStatusActive,
	}
	if err := svc.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create operator: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	tests := []struct {
		name   string
		params CreateParams
		field  string
	}{
		{
			name:   "missing order number",
			params: CreateParams{ProductName: "Widget", PlannedQty: 10, StartDate: tomorrow()},
			field:  "order_no",
		},
		{
			name:   "blank order number",
			params: CreateParams{OrderNo: "   ", ProductName: "Widget", PlannedQty: 10, StartDate: tomorrow()},
			field:  "order_no",
		},
		{
			name:   "missing product name",
			params: CreateParams{OrderNo: "WO-001", PlannedQty: 10, StartDate: tomorrow()},
			field:  "product_name",
		},
		{
			name:   "zero quantity",
			params: CreateParams{OrderNo: "WO-001", ProductName: "Widget", PlannedQty: 0, StartDate: tomorrow()},
			field:  "planned_qty",
		},
		{
			name:   "negative quantity",
			params: CreateParams{OrderNo: "WO-001", ProductName: "Widget", PlannedQty: -5, StartDate: tomorrow()},
			field:  "planned_qty",
		},
		{
			name:   "malformed date",
			params: CreateParams{OrderNo: "WO-001", ProductName: "Widget", PlannedQty: 10, StartDate: "03/10/2026"},
			field:  "start_date",
		},
		{
			name:   "start today",
			params: CreateParams{OrderNo: "WO-001", ProductName: "Widget", PlannedQty: 10, StartDate: today},
			field:  "start_date",
		},
		{
			name:   "start in the past",
			params: CreateParams{OrderNo: "WO-001", ProductName: "Widget", PlannedQty: 10, StartDate: yesterday},
			field:  "start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(tt.params)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestStartsAfterToday_LocalCalendarDay(t *testing.T) {
	// 2026-03-10 08:00 UTC. In UTC-12 the local date is still 03-09; in
	// UTC+13 it is already 03-11. The rule must follow the local day.
	west := time.FixedZone("UTC-12", -12*3600)
	east := time.FixedZone("UTC+13", 13*3600)
	parse := func(s string) time.Time {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", s, err)
		}
		return start
	}

	tests := []struct {
		name  string
		start string
		now   time.Time
		want  bool
	}{
		{
			name:  "west of UTC accepts local tomorrow",
			start: "2026-03-10",
			now:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).In(west),
			want:  true,
		},
		{
			name:  "east of UTC rejects local today",
			start: "2026-03-11",
			now:   time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC).In(east),
			want:  false,
		},
		{
			name:  "same day rejected",
			start: "2026-03-10",
			now:   time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			want:  false,
		},
		{
			name:  "next day accepted",
			start: "2026-03-11",
			now:   time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startsAfterToday(parse(tt.start), tt.now); got != tt.want {
				t.Errorf("startsAfterToday(%s, %s) = %v, want %v", tt.start, tt.now, got, tt.want)
			}
		})
	}
}

func TestCreate_DerivesDueDateAndDefaults(t *testing.T) {
	svc := newTestService(t)

	start := time.Now().AddDate(0, 0, 2)
	order, err := svc.Create(CreateParams{
		OrderNo:     "WO-100",
		ProductName: "  Sensor Housing  ",
		PlannedQty:  50,
		StartDate:   start.Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	wantDue := start.AddDate(0, 0, DueDateOffsetDays).Format("2006-01-02")
	if order.DueDate != wantDue {
		t.Errorf("due date = %q, want %q", order.DueDate, wantDue)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("status = %q, want %q", order.Status, models.OrderStatusPending)
	}
	if order.CompletedQty != 0 {
		t.Errorf("completed = %d, want 0", order.CompletedQty)
	}
	if order.ProductName != "Sensor Housing" {
		t.Errorf("product name = %q, want trimmed", order.ProductName)
	}
	if order.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestCreate_DuplicateOrderNo(t *testing.T) {
	svc := newTestService(t)

	createOrder(t, svc, "WO-200", 10)

	_, err := svc.Create(CreateParams{
		OrderNo:     "WO-200",
		ProductName: "Another Product",
		PlannedQty:  5,
		StartDate:   tomorrow(),
	})
	if !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("err = %v, want ErrDuplicateOrder", err)
	}
}

func TestList_Paging(t *testing.T) {
	svc := newTestService(t)

	for i := 0; i < 7; i++ {
		createOrder(t, svc, "WO-30"+string(rune('0'+i)), 10)
	}

	orders, total, err := svc.List(ListParams{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(orders) != DefaultPageSize {
		t.Errorf("page size = %d, want %d", len(orders), DefaultPageSize)
	}

	orders, _, err = svc.List(ListParams{Page: 2})
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if len(orders) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(orders))
	}
}

func TestList_Filters(t *testing.T) {
	svc := newTestService(t)

	createOrder(t, svc, "WO-400", 10)
	if _, err := svc.Create(CreateParams{
		OrderNo:     "WO-401",
		ProductName: "Gear Assembly",
		PlannedQty:  20,
		StartDate:   tomorrow(),
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, total, err := svc.List(ListParams{Keyword: "Gear"})
	if err != nil {
		t.Fatalf("keyword list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("keyword match = %d/%d, want 1/1", len(orders), total)
	}
	if orders[0].OrderNo != "WO-401" {
		t.Errorf("matched order = %q, want WO-401", orders[0].OrderNo)
	}

	_, total, err = svc.List(ListParams{Status: models.OrderStatusCompleted})
	if err != nil {
		t.Fatalf("status list failed: %v", err)
	}
	if total != 0 {
		t.Errorf("completed total = %d, want 0", total)
	}
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)

	order := createOrder(t, svc, "WO-500", 10)

	status := models.OrderStatusInProgress
	line := "Line A"
	updated, err := svc.Update(order.ID, UpdateParams{Status: &status, AssignedLine: &line})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != models.OrderStatusInProgress {
		t.Errorf("status = %q, want IN_PROGRESS", updated.Status)
	}
	if updated.AssignedLine != "Line A" {
		t.Errorf("line = %q, want Line A", updated.AssignedLine)
	}

	bad := "SHIPPED"
	if _, err := svc.Update(order.ID, UpdateParams{Status: &bad}); err == nil {
		t.Error("expected error for unknown status")
	}

	if _, err := svc.Update("missing-id", UpdateParams{}); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestRecordResult_Validation(t *testing.T) {
	svc := newTestService(t)
	createOperator(t, svc, "EMP-01")
	order := createOrder(t, svc, "WO-600", 100)

	now := time.Now()

	tests := []struct {
		name   string
		params ResultParams
		field  string
	}{
		{
			name: "zero produced",
			params: ResultParams{
				WorkOrderID: order.ID, ProducedQty: 0,
				StartTime: now, EndTime: now.Add(time.Hour), OperatorID: "EMP-01",
			},
			field: "produced_qty",
		},
		{
			name: "defects exceed produced",
			params: ResultParams{
				WorkOrderID: order.ID, ProducedQty: 5, DefectQty: 6,
				StartTime: now, EndTime: now.Add(time.Hour), OperatorID: "EMP-01",
			},
			field: "defect_qty",
		},
		{
			name: "negative defects",
			params: ResultParams{
				WorkOrderID: order.ID, ProducedQty: 5, DefectQty: -1,
				StartTime: now, EndTime: now.Add(time.Hour), OperatorID: "EMP-01",
			},
			field: "defect_qty",
		},
		{
			name: "end before start",
			params: ResultParams{
				WorkOrderID: order.ID, ProducedQty: 5,
				StartTime: now, EndTime: now.Add(-time.Hour), OperatorID: "EMP-01",
			},
			field: "end_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordResult(tt.params)

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestRecordResult_UnknownOperator(t *testing.T) {
	svc := newTestService(t)
	order := createOrder(t, svc, "WO-601", 100)

	now := time.Now()
	_, err := svc.RecordResult(ResultParams{
		WorkOrderID: order.ID,
		ProducedQty: 10,
		StartTime:   now,
		EndTime:     now.Add(time.Hour),
		OperatorID:  "NOBODY",
	})
	if !errors.Is(err, ErrOperatorUnknown) {
		t.Fatalf("err = %v, want ErrOperatorUnknown", err)
	}
}

func TestRecordResult_RollsUpWorkOrder(t *testing.T) {
	svc := newTestService(t)
	createOperator(t, svc, "EMP-01")
	order := createOrder(t, svc, "WO-602", 100)

	now := time.Now()

	// First entry: order moves to IN_PROGRESS
	result, err := svc.RecordResult(ResultParams{
		WorkOrderID: order.ID,
		ProducedQty: 40,
		DefectQty:   2,
		StartTime:   now,
		EndTime:     now.Add(time.Hour),
		OperatorID:  "EMP-01",
	})
	if err != nil {
		t.Fatalf("first result failed: %v", err)
	}
	if result.ProductName != "Sensor Housing" {
		t.Errorf("product name = %q, want copied from order", result.ProductName)
	}

	var reloaded models.WorkOrder
	if err := models.FindByID(svc.db, order.ID, &reloaded); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.CompletedQty != 40 {
		t.Errorf("completed = %d, want 40", reloaded.CompletedQty)
	}
	if reloaded.Status != models.OrderStatusInProgress {
		t.Errorf("status = %q, want IN_PROGRESS", reloaded.Status)
	}

	// Second entry meets the plan: order completes
	if _, err := svc.RecordResult(ResultParams{
		WorkOrderID: order.ID,
		ProducedQty: 60,
		StartTime:   now.Add(2 * time.Hour),
		EndTime:     now.Add(3 * time.Hour),
		OperatorID:  "EMP-01",
	}); err != nil {
		t.Fatalf("second result failed: %v", err)
	}

	if err := models.FindByID(svc.db, order.ID, &reloaded); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.CompletedQty != 100 {
		t.Errorf("completed = %d, want 100", reloaded.CompletedQty)
	}
	if reloaded.Status != models.OrderStatusCompleted {
		t.Errorf("status = %q, want COMPLETED", reloaded.Status)
	}
}

func TestRecordResult_OrderNotFound(t *testing.T) {
	svc := newTestService(t)
	createOperator(t, svc, "EMP-01")

	now := time.Now()
	_, err := svc.RecordResult(ResultParams{
		WorkOrderID: "missing-id",
		ProducedQty: 10,
		StartTime:   now,
		EndTime:     now.Add(time.Hour),
		OperatorID:  "EMP-01",
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestDelete_RemovesOrderAndResults(t *testing.T) {
	svc := newTestService(t)
	createOperator(t, svc, "EMP-01")
	order := createOrder(t, svc, "WO-700", 100)

	now := time.Now()
	if _, err := svc.RecordResult(ResultParams{
		WorkOrderID: order.ID,
		ProducedQty: 10,
		StartTime:   now,
		EndTime:     now.Add(time.Hour),
		OperatorID:  "EMP-01",
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	if err := svc.Delete(order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var orderCount, resultCount int64
	svc.db.Model(&models.WorkOrder{}).Count(&orderCount)
	svc.db.Model(&models.ProductionResult{}).Count(&resultCount)
	if orderCount != 0 || resultCount != 0 {
		t.Errorf("remaining orders/results = %d/%d, want 0/0", orderCount, resultCount)
	}

	if err := svc.Delete(order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("second delete err = %v, want ErrOrderNotFound", err)
	}
}
