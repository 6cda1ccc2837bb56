package dto

import "github.com/bobasi/bursary/internal/app/models"

// NotificationFilterRequest selects the caller's notifications
type NotificationFilterRequest struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit"`
}

// NotificationListResponse lists notifications with the unread count
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// MarkReadResponse reports how many notifications were flipped
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}
