package controllers

import (
	"net/http"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"
	"performance-review-api/utils"

	"github.com/gin-gonic/gin"
)

var validFeedbackTypes = map[string]bool{
	models.FeedbackTypePraise:     true,
	models.FeedbackTypeSuggestion: true,
	models.FeedbackTypeConcern:    true,
}

// GetFeedback lists feedback received by the current user. Anonymous
// entries are served without the sender.
func GetFeedback(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var entries []models.Feedback
	if err := config.DB.Preload("FromUser").
		Where("to_user_id = ? AND delete_at IS NULL", userID).
		Order("create_at DESC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	for i := range entries {
		if entries[i].IsAnonymous {
			entries[i].FromUserID = 0
			entries[i].FromUser = nil
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": entries, "total": len(entries)})
}

// GetSentFeedback lists feedback the current user has given.
func GetSentFeedback(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var entries []models.Feedback
	if err := config.DB.Preload("ToUser").
		Where("from_user_id = ? AND delete_at IS NULL", userID).
		Order("create_at DESC").
		Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "feedback": entries, "total": len(entries)})
}

// CreateFeedback records a feedback entry for another user.
func CreateFeedback(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var req struct {
		ToUserID      int    `json:"to_user_id" binding:"required"`
		Type          string `json:"type" binding:"required"`
		Message       string `json:"message" binding:"required"`
		RelatedGoalID *int   `json:"related_goal_id"`
		IsAnonymous   bool   `json:"is_anonymous"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validFeedbackTypes[req.Type] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feedback type"})
		return
	}
	if req.ToUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback must be addressed to someone else"})
		return
	}

	req.Message = utils.SanitizeInput(req.Message)
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must not be empty"})
		return
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("user_id = ? AND delete_at IS NULL", req.ToUserID).
		Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
		return
	}

	now := time.Now()
	entry := models.Feedback{
		FromUserID:    userID,
		ToUserID:      req.ToUserID,
		Type:          req.Type,
		Message:       req.Message,
		RelatedGoalID: req.RelatedGoalID,
		IsAnonymous:   req.IsAnonymous,
		CreateAt:      &now,
	}

	if err := config.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "feedback": entry})
}
