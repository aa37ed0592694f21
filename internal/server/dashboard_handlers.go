package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mesboard-dev/mesboard/internal/dashboard"
	"github.com/mesboard-dev/mesboard/internal/tasks"
)

func dateParam(c *gin.Context) string {
	if date := c.Query("date"); date != "" {
		return date
	}
	return time.Now().Format("2006-01-02")
}

// getDashboardSummary returns the daily snapshot for the requested date
// (today by default), computing it on the fly if no aggregation ran yet
func (s *Server) getDashboardSummary(c *gin.Context) {
	date := dateParam(c)

	summary, err := s.dashboardService.Summary(date)
	if errors.Is(err, dashboard.ErrNoSummary) {
		summary, err = s.dashboardService.Aggregate(date)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("date", date).Msg("Failed to load dashboard summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// getHourlyProduction returns the hourly chart rows for the requested date
func (s *Server) getHourlyProduction(c *gin.Context) {
	rows, err := s.dashboardService.Hourly(dateParam(c))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load hourly production")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// listEquipment returns the equipment board
func (s *Server) listEquipment(c *gin.Context) {
	rows, err := s.dashboardService.Equipment()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list equipment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// triggerAggregation enqueues an aggregation task for the requested date
// (admin only)
func (s *Server) triggerAggregation(c *gin.Context) {
	date := dateParam(c)

	task, err := tasks.NewAggregateSummaryTask(date)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to build aggregation task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue aggregation task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue aggregation"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"date": date, "status": "queued"})
}
