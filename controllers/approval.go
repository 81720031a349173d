package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApproveReview records a manager/admin approval of a submitted review.
func ApproveReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	approverID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	review, err := newApprovalService().Approve(reviewID, approverID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// RejectReview records a manager/admin rejection with a required reason.
func RejectReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}
	approverID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := newApprovalService().Reject(reviewID, approverID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

// GetPendingApprovals lists submitted reviews waiting on the caller.
// Admins see the system-wide queue; managers see their reports' reviews.
func GetPendingApprovals(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return
	}

	svc := newApprovalService()

	if isAdmin(c) && c.Query("scope") == "all" {
		reviews, err := svc.ListAllPending()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews, "total": len(reviews)})
		return
	}

	reviews, err := svc.ListPendingForManager(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews, "total": len(reviews)})
}
