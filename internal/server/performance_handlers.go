package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesboard-dev/mesboard/internal/models"
	"github.com/mesboard-dev/mesboard/internal/workorders"
)

// CreateResultRequest represents a production performance entry
type CreateResultRequest struct {
	WorkOrderID string    `json:"work_order_id" binding:"required"`
	ProducedQty int       `json:"produced_qty" binding:"required"`
	DefectQty   int       `json:"defect_qty"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	OperatorID  string    `json:"operator_id" binding:"required"`
	Note        string    `json:"note"`
}

// ProductionResultDetail joins a result with its operator's name
type ProductionResultDetail struct {
	models.ProductionResult
	OperatorName string `json:"operator_name"`
}

// listProductionResults returns all results, newest first, with operator names
func (s *Server) listProductionResults(c *gin.Context) {
	results, err := s.ordersService.ListResults()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list production results")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Resolve operator employee IDs to names in one pass
	var users []models.User
	if err := s.db.Select("employee_id", "name").Find(&users).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to load operators")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	nameByEmployee := make(map[string]string, len(users))
	for _, u := range users {
		nameByEmployee[u.EmployeeID] = u.Name
	}

	details := make([]ProductionResultDetail, len(results))
	for i, r := range results {
		details[i] = ProductionResultDetail{
			ProductionResult: r,
			OperatorName:     nameByEmployee[r.OperatorID],
		}
	}

	c.JSON(http.StatusOK, details)
}

// createProductionResult records a performance entry and rolls it up into
// its work order
func (s *Server) createProductionResult(c *gin.Context) {
	var req CreateResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.ordersService.RecordResult(workorders.ResultParams{
		WorkOrderID: req.WorkOrderID,
		ProducedQty: req.ProducedQty,
		DefectQty:   req.DefectQty,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		OperatorID:  req.OperatorID,
		Note:        req.Note,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
