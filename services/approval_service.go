package services

import (
	"strings"
	"time"

	"performance-review-api/models"
)

// ApprovalService governs the submitted → approved/rejected transition for
// individual reviews. Only managers and admins may decide.
type ApprovalService struct {
	reviews   ReviewStore
	directory Directory
}

func NewApprovalService(reviews ReviewStore, directory Directory) *ApprovalService {
	return &ApprovalService{reviews: reviews, directory: directory}
}

func (s *ApprovalService) loadForDecision(reviewID, approverID int) (*models.Review, error) {
	review, err := s.reviews.GetReview(reviewID)
	if err != nil {
		return nil, err
	}

	approver, err := s.directory.GetUser(approverID)
	if err != nil {
		return nil, err
	}
	if approver.RoleName != RoleManager && approver.RoleName != RoleAdmin {
		return nil, &NotAuthorizedError{UserID: approverID, RequiredRole: "manager or admin"}
	}

	if !review.AwaitingApproval() {
		return nil, &InvalidStateError{Kind: StateNotApprovable, CurrentState: review.Status}
	}
	return review, nil
}

// Approve marks a submitted review as approved by the given actor.
func (s *ApprovalService) Approve(reviewID, approverID int) (*models.Review, error) {
	review, err := s.loadForDecision(reviewID, approverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	review.Status = models.ReviewStatusApproved
	review.ApprovalStatus = models.ApprovalApproved
	review.ApprovedBy = &approverID
	review.ApprovedAt = &now
	review.RejectionReason = nil

	if err := s.reviews.UpdateReview(review); err != nil {
		return nil, err
	}
	return review, nil
}

// Reject marks a submitted review as rejected. A reason is required; the
// reviewer may later resubmit.
func (s *ApprovalService) Reject(reviewID, approverID int, reason string) (*models.Review, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("a rejection reason is required")
	}

	review, err := s.loadForDecision(reviewID, approverID)
	if err != nil {
		return nil, err
	}

	review.Status = models.ReviewStatusRejected
	review.ApprovalStatus = models.ApprovalRejected
	review.RejectionReason = &reason

	if err := s.reviews.UpdateReview(review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListPendingForManager returns submitted reviews awaiting approval whose
// reviewee reports to the given manager. Managers without direct reports
// fall back to reviews they authored as the manager reviewer, which covers
// single-contributor manager accounts.
func (s *ApprovalService) ListPendingForManager(managerID int) ([]models.Review, error) {
	reports, err := s.directory.GetDirectReports(managerID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return s.reviews.ListPendingByReviewer(managerID, models.ReviewTypeManager)
	}

	revieweeIDs := make([]int, 0, len(reports))
	for _, r := range reports {
		revieweeIDs = append(revieweeIDs, r.ID)
	}
	return s.reviews.ListPendingForReviewees(revieweeIDs)
}

// ListAllPending returns every review awaiting approval, for admin use.
func (s *ApprovalService) ListAllPending() ([]models.Review, error) {
	return s.reviews.ListAllPending()
}
