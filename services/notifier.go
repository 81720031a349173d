package services

import (
	"fmt"
	"log"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"

	"gorm.io/gorm"
)

// Notifier delivers reminder and escalation notices. Delivery is
// fire-and-forget from the workflow's point of view: implementations may
// fail, callers log and move on.
type Notifier interface {
	SendReminder(review *models.Review) error
	SendEscalation(manager *DirectoryUser, review *models.Review) error
}

// NotificationCenter writes an in-app notification row and mirrors it to
// email when SMTP is configured. Email failures are logged, not returned:
// the inbox row is the delivery of record.
type NotificationCenter struct {
	db        *gorm.DB
	directory Directory
}

func NewNotificationCenter(db *gorm.DB, directory Directory) *NotificationCenter {
	return &NotificationCenter{db: db, directory: directory}
}

func (n *NotificationCenter) SendReminder(review *models.Review) error {
	title := "Review reminder"
	message := fmt.Sprintf("You have an outstanding %s review to complete.", review.ReviewType)
	return n.deliver(review.ReviewerID, title, message, "reminder", review)
}

func (n *NotificationCenter) SendEscalation(manager *DirectoryUser, review *models.Review) error {
	title := "Overdue review escalation"
	message := fmt.Sprintf("A %s review assigned to one of your reports has received %d reminders without a response.",
		review.ReviewType, review.ReminderCount)
	return n.deliver(manager.ID, title, message, "escalation", review)
}

func (n *NotificationCenter) deliver(userID int, title, message, kind string, review *models.Review) error {
	reviewID := uint(review.ReviewID)
	notification := models.Notification{
		UserID:          uint(userID),
		Title:           title,
		Message:         message,
		Type:            kind,
		RelatedReviewID: &reviewID,
		CreateAt:        time.Now(),
	}
	if err := n.db.Create(&notification).Error; err != nil {
		return storeErr("notifier.deliver", err)
	}

	recipient, err := n.directory.GetUser(userID)
	if err != nil {
		log.Printf("notifier: could not resolve recipient %d: %v", userID, err)
		return nil
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p>", recipient.Name, message)
	if err := config.SendMail([]string{recipient.Email}, title, body); err != nil {
		log.Printf("notifier: email to %s failed: %v", recipient.Email, err)
	}
	return nil
}
