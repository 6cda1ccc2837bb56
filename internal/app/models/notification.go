package models

import "time"

// NotificationType groups notifications for display
type NotificationType string

const (
	NotificationApplication  NotificationType = "application"
	NotificationDisbursement NotificationType = "disbursement"
	NotificationRepayment    NotificationType = "repayment"
	NotificationReview       NotificationType = "review"
	NotificationSystem       NotificationType = "system"
)

// Notification is a user-scoped message. Only IsRead ever changes.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
