package models

import "time"

// Review types.
const (
	ReviewTypeSelf    = "self"
	ReviewTypePeer    = "peer"
	ReviewTypeManager = "manager"
	ReviewTypeUpward  = "upward"
)

// Review statuses.
const (
	ReviewStatusPending    = "pending"
	ReviewStatusInProgress = "in_progress"
	ReviewStatusSubmitted  = "submitted"
	ReviewStatusApproved   = "approved"
	ReviewStatusRejected   = "rejected"
	ReviewStatusCalibrated = "calibrated"
)

// Approval statuses.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Review struct {
	ReviewID        int    `gorm:"primaryKey;column:review_id" json:"review_id"`
	ReferenceNumber string `gorm:"column:reference_number" json:"reference_number"`
	CycleID         int    `gorm:"column:cycle_id;uniqueIndex:uidx_review_pair" json:"cycle_id"`
	TemplateID      int    `gorm:"column:template_id" json:"template_id"`
	ReviewerID      int    `gorm:"column:reviewer_id;uniqueIndex:uidx_review_pair" json:"reviewer_id"`
	RevieweeID      int    `gorm:"column:reviewee_id;uniqueIndex:uidx_review_pair" json:"reviewee_id"`
	ReviewType      string `gorm:"column:review_type;uniqueIndex:uidx_review_pair" json:"review_type"`

	Status         string `gorm:"column:status" json:"status"`
	ApprovalStatus string `gorm:"column:approval_status" json:"approval_status"`

	IsAnonymous       bool `gorm:"column:is_anonymous" json:"is_anonymous"`
	VisibleToReviewee bool `gorm:"column:visible_to_reviewee" json:"visible_to_reviewee"`

	// Answers holds the reviewer's responses as opaque JSON; question
	// rendering belongs to the template layer.
	Answers *string `gorm:"column:answers" json:"answers,omitempty"`

	SubmittedAt     *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	ApprovedBy      *int       `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	RejectionReason *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	ReminderCount    int        `gorm:"column:reminder_count" json:"reminder_count"`
	LastReminderSent *time.Time `gorm:"column:last_reminder_sent" json:"last_reminder_sent,omitempty"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Cycle    *ReviewCycle `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`
	Reviewer *User        `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Reviewee *User        `gorm:"foreignKey:RevieweeID" json:"reviewee,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}

// IsOpen reports whether the review still needs reviewer action.
func (r *Review) IsOpen() bool {
	return r.Status == ReviewStatusPending || r.Status == ReviewStatusInProgress
}

// AwaitingApproval reports whether the review can be approved or rejected.
// The check is deliberately permissive: either field qualifies, so reviews
// whose status was forced by another path are still processable.
func (r *Review) AwaitingApproval() bool {
	return r.Status == ReviewStatusSubmitted || r.ApprovalStatus == ApprovalPending
}
