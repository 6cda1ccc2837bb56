package services

import (
	"context"
	"time"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/rs/zerolog"
)

// defaultNotificationLimit caps an unfiltered notification listing
const defaultNotificationLimit = 50

// reviewerRoles receive the fan-out for every new application
var reviewerRoles = []models.RoleType{models.RoleAdmin, models.RoleReviewCommittee}

// notify inserts one unread notification using the caller's repositories, so
// it commits or rolls back with the surrounding transaction.
func notify(ctx context.Context, repos *repositories.Repositories, userID int64, title, message string, kind models.NotificationType, at time.Time) error {
	return repos.Notifications.Create(ctx, &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: at,
	})
}

// notifyRoles fans a notification out to every active user holding one of
// roles in a single statement and returns the number of recipients.
func notifyRoles(ctx context.Context, repos *repositories.Repositories, roles []models.RoleType, title, message string, kind models.NotificationType, at time.Time) (int64, error) {
	return repos.Notifications.CreateForRoles(ctx, roles, title, message, kind, at)
}

// notifyStudent resolves the user owning studentID and notifies them
func notifyStudent(ctx context.Context, repos *repositories.Repositories, studentID int64, title, message string, kind models.NotificationType, at time.Time) error {
	student, err := repos.Students.GetByID(ctx, studentID)
	if err != nil {
		return err
	}
	return notify(ctx, repos, student.UserID, title, message, kind, at)
}

// NotificationService serves the caller's own notifications
type NotificationService struct {
	repos  *repositories.Repositories
	logger zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repos *repositories.Repositories, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repos:  repos,
		logger: logger.With().Str("service", "notifications").Logger(),
	}
}

// List returns the actor's notifications, newest first, with the unread count
func (s *NotificationService) List(ctx context.Context, actor auth.Actor, unreadOnly bool, limit int) ([]*models.Notification, int64, error) {
	if err := auth.Authorize(actor, auth.OpReadNotifications); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}

	items, err := s.repos.Notifications.ListByUser(ctx, actor.UserID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repos.Notifications.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkAllRead flips every unread notification of the actor and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor auth.Actor) (int64, error) {
	if err := auth.Authorize(actor, auth.OpReadNotifications); err != nil {
		return 0, err
	}
	updated, err := s.repos.Notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Int64("userID", actor.UserID).Int64("updated", updated).Msg("Notifications marked read")
	return updated, nil
}
