package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

// GetTemplates lists review templates.
func GetTemplates(c *gin.Context) {
	var templates []models.ReviewTemplate
	if err := config.DB.Where("delete_at IS NULL").
		Order("template_id ASC").
		Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "templates": templates, "total": len(templates)})
}

// GetTemplate returns a single review template.
func GetTemplate(c *gin.Context) {
	templateID, err := strconv.Atoi(c.Param("id"))
	if err != nil || templateID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	var template models.ReviewTemplate
	if err := config.DB.Where("template_id = ? AND delete_at IS NULL", templateID).
		First(&template).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
}

// CreateTemplate creates a review template. Questions must be valid JSON.
func CreateTemplate(c *gin.Context) {
	var req struct {
		TemplateName string  `json:"template_name" binding:"required"`
		Description  *string `json:"description"`
		Questions    string  `json:"questions" binding:"required"`
		RatingScale  int     `json:"rating_scale"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !json.Valid([]byte(req.Questions)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Questions must be valid JSON"})
		return
	}
	if req.RatingScale <= 0 {
		req.RatingScale = 5
	}

	now := time.Now()
	template := models.ReviewTemplate{
		TemplateName: req.TemplateName,
		Description:  req.Description,
		Questions:    req.Questions,
		RatingScale:  req.RatingScale,
		CreateAt:     &now,
	}

	if err := config.DB.Create(&template).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "template": template})
}
