package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesboard-dev/mesboard/internal/models"
	"github.com/mesboard-dev/mesboard/internal/workorders"
)

// CreateWorkOrderRequest represents the work-order entry form
type CreateWorkOrderRequest struct {
	OrderNo     string `json:"order_no" binding:"required" validate:"alphanumdash,max=30"`
	ProductName string `json:"product_name" binding:"required"`
	PlannedQty  int    `json:"planned_qty" binding:"required"`
	StartDate   string `json:"start_date" binding:"required"`
}

// UpdateWorkOrderRequest carries optional work-order mutations
type UpdateWorkOrderRequest struct {
	Status       *string `json:"status"`
	AssignedLine *string `json:"assigned_line"`
}

// WorkOrderListResponse is one page of work orders
type WorkOrderListResponse struct {
	Orders   []models.WorkOrder `json:"orders"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

func (s *Server) respondServiceError(c *gin.Context, err error) {
	var ve *workorders.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, workorders.ErrDuplicateOrder):
		c.JSON(http.StatusConflict, gin.H{"error": "Work order number already exists"})
	case errors.Is(err, workorders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Work order not found"})
	case errors.Is(err, workorders.ErrOperatorUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown operator employee ID"})
	default:
		s.logger.Error().Err(err).Msg("Work order service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// listWorkOrders returns a filtered, paged list of work orders
func (s *Server) listWorkOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(workorders.DefaultPageSize)))

	params := workorders.ListParams{
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	orders, total, err := s.ordersService.List(params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list work orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, WorkOrderListResponse{
		Orders:   orders,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// createWorkOrder validates and stores a new work order
func (s *Server) createWorkOrder(c *gin.Context) {
	var req CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	order, err := s.ordersService.Create(workorders.CreateParams{
		OrderNo:     req.OrderNo,
		ProductName: req.ProductName,
		PlannedQty:  req.PlannedQty,
		StartDate:   req.StartDate,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// updateWorkOrder applies status / line changes to an order
func (s *Server) updateWorkOrder(c *gin.Context) {
	var req UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.ordersService.Update(c.Param("id"), workorders.UpdateParams{
		Status:       req.Status,
		AssignedLine: req.AssignedLine,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// deleteWorkOrder removes an order and its results (admin only)
func (s *Server) deleteWorkOrder(c *gin.Context) {
	if err := s.ordersService.Delete(c.Param("id")); err != nil {
		s.respondServiceError(c, err)
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("work_order_id", c.Param("id")).
		Str("deleted_by", sessionData.UserID).
		Msg("Work order deleted")

	c.Status(http.StatusNoContent)
}
