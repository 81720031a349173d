package controllers

import (
	"net/http"

	"performance-review-api/config"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

type statusCount struct {
	Status string `gorm:"column:status" json:"status"`
	Count  int64  `gorm:"column:count" json:"count"`
}

// GetDashboardStats returns per-user review counts by status plus the
// active-cycle overview. Admins additionally get system-wide totals.
func GetDashboardStats(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var mine []statusCount
	if err := config.DB.Model(&models.Review{}).
		Select("status, COUNT(*) AS count").
		Where("reviewer_id = ?", userID).
		Group("status").
		Scan(&mine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	var activeCycles int64
	config.DB.Model(&models.ReviewCycle{}).
		Where("status NOT IN ? AND delete_at IS NULL",
			[]string{models.PhasePlanning, models.PhaseCompleted}).
		Count(&activeCycles)

	payload := gin.H{
		"success":       true,
		"my_reviews":    mine,
		"active_cycles": activeCycles,
	}

	if isAdmin(c) {
		var all []statusCount
		if err := config.DB.Model(&models.Review{}).
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&all).Error; err == nil {
			payload["all_reviews"] = all
		}
	}

	c.JSON(http.StatusOK, payload)
}
