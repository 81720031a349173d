package controllers

import (
	"net/http"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

var validGoalStatuses = map[string]bool{
	models.GoalStatusDraft:     true,
	models.GoalStatusActive:    true,
	models.GoalStatusCompleted: true,
	models.GoalStatusCancelled: true,
}

// GetGoals lists the current user's goals. Managers can pass user_id to
// view a direct report's goals; admins can view anyone's.
func GetGoals(c *gin.Context) {
	userID, _ := getCurrentUserID(c)
	targetID := userID

	if raw := c.Query("user_id"); raw != "" {
		requested, err := strconv.Atoi(raw)
		if err != nil || requested <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			return
		}
		if requested != userID && !isAdmin(c) {
			var count int64
			config.DB.Model(&models.User{}).
				Where("user_id = ? AND manager_id = ? AND delete_at IS NULL", requested, userID).
				Count(&count)
			if count == 0 {
				c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view these goals"})
				return
			}
		}
		targetID = requested
	}

	var goals []models.Goal
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", targetID).
		Order("due_date ASC").
		Find(&goals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "goals": goals, "total": len(goals)})
}

type goalRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Metric      *string    `json:"metric"`
	CycleID     *int       `json:"cycle_id"`
	Weight      float64    `json:"weight"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateGoal creates a goal owned by the current user.
func CreateGoal(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Weight < 0 || req.Weight > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Weight must be between 0 and 1"})
		return
	}

	now := time.Now()
	goal := models.Goal{
		UserID:      userID,
		CycleID:     req.CycleID,
		Title:       req.Title,
		Description: req.Description,
		Metric:      req.Metric,
		Weight:      req.Weight,
		Status:      models.GoalStatusActive,
		DueDate:     req.DueDate,
		CreateAt:    &now,
	}

	if err := config.DB.Create(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "goal": goal})
}

// UpdateGoal updates a goal's progress and status. Owner only.
func UpdateGoal(c *gin.Context) {
	goalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || goalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal ID"})
		return
	}
	userID, _ := getCurrentUserID(c)

	var goal models.Goal
	if err := config.DB.Where("goal_id = ? AND delete_at IS NULL", goalID).First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}
	if goal.UserID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to edit this goal"})
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Progress    *float64   `json:"progress"`
		Status      *string    `json:"status"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		goal.Title = *req.Title
	}
	if req.Description != nil {
		goal.Description = req.Description
	}
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Progress must be between 0 and 100"})
			return
		}
		goal.Progress = *req.Progress
	}
	if req.Status != nil {
		if !validGoalStatuses[*req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal status"})
			return
		}
		goal.Status = *req.Status
	}
	if req.DueDate != nil {
		goal.DueDate = req.DueDate
	}

	now := time.Now()
	goal.UpdateAt = &now
	if err := config.DB.Save(&goal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "goal": goal})
}

// DeleteGoal soft-deletes a goal. Owner or admin.
func DeleteGoal(c *gin.Context) {
	goalID, err := strconv.Atoi(c.Param("id"))
	if err != nil || goalID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal ID"})
		return
	}
	userID, _ := getCurrentUserID(c)

	var goal models.Goal
	if err := config.DB.Where("goal_id = ? AND delete_at IS NULL", goalID).First(&goal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}
	if goal.UserID != userID && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to delete this goal"})
		return
	}

	if err := config.DB.Model(&goal).Update("delete_at", time.Now()).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete goal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Goal deleted"})
}
