package controllers

import (
	"net/http"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

// GetMyNotifications lists the current user's notifications, newest first.
func GetMyNotifications(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	query := config.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("create_at DESC").Limit(200).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetUnreadCount returns the unread notification count for the badge.
func GetUnreadCount(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var count int64
	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unread": count})
}

// MarkNotificationRead marks a single notification as read.
func MarkNotificationRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil || notificationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}
	userID, _ := getCurrentUserID(c)

	now := time.Now()
	res := config.DB.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "update_at": now})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllNotificationsRead marks every unread notification as read.
func MarkAllNotificationsRead(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	now := time.Now()
	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "update_at": now}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
