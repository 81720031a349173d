package controllers

import (
	"net/http"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"

	"github.com/gin-gonic/gin"
)

func reviewIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid review ID"})
		return 0, false
	}
	return id, true
}

// maskReviewer hides the reviewer on anonymous reviews when the record is
// served to anyone other than the reviewer.
func maskReviewer(review *models.Review, viewerID int) {
	if review.IsAnonymous && review.ReviewerID != viewerID {
		review.ReviewerID = 0
		review.Reviewer = nil
	}
}

// GetMyReviews lists the reviews assigned to the current user as reviewer.
func GetMyReviews(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	query := config.DB.Preload("Reviewee").Preload("Cycle").
		Where("reviewer_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if cycleID := c.Query("cycle_id"); cycleID != "" {
		query = query.Where("cycle_id = ?", cycleID)
	}

	var reviews []models.Review
	if err := query.Order("create_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetReviewsAboutMe lists reviews where the current user is the reviewee.
// Only reviews marked visible are returned, with anonymity applied.
func GetReviewsAboutMe(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var reviews []models.Review
	if err := config.DB.Preload("Reviewer").Preload("Cycle").
		Where("reviewee_id = ? AND visible_to_reviewee = ?", userID, true).
		Order("create_at DESC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	for i := range reviews {
		maskReviewer(&reviews[i], userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetReview returns a single review, restricted to its reviewer, its
// reviewee (when visible) and admins.
func GetReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)

	var review models.Review
	if err := config.DB.Preload("Reviewer").Preload("Reviewee").Preload("Cycle").
		Where("review_id = ?", reviewID).
		First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	switch {
	case review.ReviewerID == userID, isAdmin(c):
	case review.RevieweeID == userID && review.VisibleToReviewee:
		maskReviewer(&review, userID)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to view this review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// SaveReviewDraft stores the reviewer's in-progress answers.
func SaveReviewDraft(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)

	var req struct {
		Answers string `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var review models.Review
	if err := config.DB.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.ReviewerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned reviewer can edit this review"})
		return
	}
	if !review.IsOpen() {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Review is no longer editable",
			"current_state": review.Status,
		})
		return
	}

	now := time.Now()
	review.Answers = &req.Answers
	review.Status = models.ReviewStatusInProgress
	review.UpdateAt = &now
	if err := config.DB.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// SubmitReview moves an open review to submitted, awaiting approval.
func SubmitReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)

	var req struct {
		Answers *string `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var review models.Review
	if err := config.DB.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.ReviewerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned reviewer can submit this review"})
		return
	}
	if !review.IsOpen() {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Review cannot be submitted from its current state",
			"current_state": review.Status,
		})
		return
	}
	if req.Answers != nil {
		review.Answers = req.Answers
	}
	if review.Answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answers are required to submit"})
		return
	}

	now := time.Now()
	review.Status = models.ReviewStatusSubmitted
	review.ApprovalStatus = models.ApprovalPending
	review.SubmittedAt = &now
	review.UpdateAt = &now
	if err := config.DB.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// ResubmitReview reopens a rejected review so the reviewer can revise and
// submit it again.
func ResubmitReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)

	var review models.Review
	if err := config.DB.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.ReviewerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the assigned reviewer can resubmit this review"})
		return
	}
	if review.Status != models.ReviewStatusRejected {
		c.JSON(http.StatusConflict, gin.H{
			"error":         "Only rejected reviews can be resubmitted",
			"current_state": review.Status,
		})
		return
	}

	now := time.Now()
	review.Status = models.ReviewStatusInProgress
	review.ApprovalStatus = models.ApprovalPending
	review.RejectionReason = nil
	review.UpdateAt = &now
	if err := config.DB.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reopen review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}
