package models

import "time"

// Feedback types.
const (
	FeedbackTypePraise     = "praise"
	FeedbackTypeSuggestion = "suggestion"
	FeedbackTypeConcern    = "concern"
)

type Feedback struct {
	FeedbackID    int    `gorm:"primaryKey;column:feedback_id" json:"feedback_id"`
	FromUserID    int    `gorm:"column:from_user_id" json:"from_user_id"`
	ToUserID      int    `gorm:"column:to_user_id" json:"to_user_id"`
	Type          string `gorm:"column:type" json:"type"`
	Message       string `gorm:"column:message" json:"message"`
	RelatedGoalID *int   `gorm:"column:related_goal_id" json:"related_goal_id,omitempty"`
	IsAnonymous   bool   `gorm:"column:is_anonymous" json:"is_anonymous"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	FromUser *User `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`
	ToUser   *User `gorm:"foreignKey:ToUserID" json:"to_user,omitempty"`
}

func (Feedback) TableName() string {
	return "feedback"
}
