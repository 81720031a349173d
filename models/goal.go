package models

import "time"

// Goal statuses.
const (
	GoalStatusDraft     = "draft"
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusCancelled = "cancelled"
)

type Goal struct {
	GoalID      int     `gorm:"primaryKey;column:goal_id" json:"goal_id"`
	UserID      int     `gorm:"column:user_id" json:"user_id"`
	CycleID     *int    `gorm:"column:cycle_id" json:"cycle_id,omitempty"`
	Title       string  `gorm:"column:title" json:"title"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
	Metric      *string `gorm:"column:metric" json:"metric,omitempty"`
	Weight      float64 `gorm:"column:weight" json:"weight"`
	Progress    float64 `gorm:"column:progress" json:"progress"`
	Status      string  `gorm:"column:status" json:"status"`

	DueDate  *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Goal) TableName() string {
	return "goals"
}
