package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/mesboard-dev/mesboard/internal/models"
)

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	ID               string     `json:"id"`
	SummarySchedule  string     `json:"summary_schedule"`
	LastAggregatedAt *time.Time `json:"last_aggregated_at"`
	NextAggregateAt  *time.Time `json:"next_aggregate_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// UpdateConfigRequest represents the request to update configuration
type UpdateConfigRequest struct {
	SummarySchedule *string `json:"summary_schedule"`
}

// getConfig returns the singleton configuration (admin only)
func (s *Server) getConfig(c *gin.Context) {
	var config models.Config
	if err := s.db.First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ConfigResponse{
		ID:               config.ID,
		SummarySchedule:  config.SummarySchedule,
		LastAggregatedAt: config.LastAggregatedAt,
		NextAggregateAt:  config.NextAggregateAt,
		CreatedAt:        config.CreatedAt,
	})
}

// updateConfig updates the aggregation schedule (admin only)
func (s *Server) updateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var config models.Config
	if err := s.db.First(&config).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Configuration not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to get config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if req.SummarySchedule != nil {
		schedule := *req.SummarySchedule
		if schedule != "" {
			parsed, err := cron.ParseStandard(schedule)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cron expression", "details": err.Error()})
				return
			}
			next := parsed.Next(time.Now())
			config.NextAggregateAt = &next
		} else {
			config.NextAggregateAt = nil
		}
		config.SummarySchedule = schedule
	}

	if err := s.db.Save(&config).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update config")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update config"})
		return
	}

	sessionData, _ := GetSessionData(c)
	s.logger.Info().
		Str("summary_schedule", config.SummarySchedule).
		Str("updated_by", sessionData.UserID).
		Msg("Config updated")

	c.JSON(http.StatusOK, ConfigResponse{
		ID:               config.ID,
		SummarySchedule:  config.SummarySchedule,
		LastAggregatedAt: config.LastAggregatedAt,
		NextAggregateAt:  config.NextAggregateAt,
		CreatedAt:        config.CreatedAt,
	})
}
