package models

import "time"

type ReviewTemplate struct {
	TemplateID   int     `gorm:"primaryKey;column:template_id" json:"template_id"`
	TemplateName string  `gorm:"column:template_name" json:"template_name"`
	Description  *string `gorm:"column:description" json:"description,omitempty"`
	// Questions is a JSON array of question definitions.
	Questions   string `gorm:"column:questions" json:"questions"`
	RatingScale int    `gorm:"column:rating_scale" json:"rating_scale"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (ReviewTemplate) TableName() string {
	return "review_templates"
}
