package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/logger"
)

// PgNotificationRepository handles notification database operations
type PgNotificationRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewNotificationRepository creates a new PgNotificationRepository
func NewNotificationRepository(db db.DBTX) *PgNotificationRepository {
	return &PgNotificationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a single notification
func (r *PgNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := r.sb.Insert("notifications").
		Columns("user_id", "title", "message", "type", "is_read", "created_at").
		Values(n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID); err != nil {
		logger.Error().Err(err).Int64("userID", n.UserID).Msg("Error creating notification")
		return dberrors.Classify(err, "could not create notification")
	}
	return nil
}

// CreateForRoles fans a notification out to every active holder of roles
func (r *PgNotificationRepository) CreateForRoles(ctx context.Context, roles []models.RoleType, title, message string, kind models.NotificationType, at time.Time) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
		SELECT id, $1, $2, $3, FALSE, $4
		FROM users
		WHERE role = ANY($5) AND status = $6`,
		title, message, kind, at, names, models.UserStatusActive)
	if err != nil {
		logger.Error().Err(err).Strs("roles", names).Msg("Error fanning out notification")
		return 0, fmt.Errorf("error creating role notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByUser returns a user's notifications, newest first
func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*models.Notification, error) {
	where := squirrel.Eq{"user_id": userID}
	if unreadOnly {
		where["is_read"] = false
	}
	q := r.sb.Select("id", "user_id", "title", "message", "type", "is_read", "created_at").
		From("notifications").
		Where(where).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list notifications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error querying notifications")
		return nil, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	items := []*models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification row: %w", err)
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

// CountUnread returns the number of unread notifications of a user
func (r *PgNotificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return n, nil
}

// MarkAllRead flips every unread notification of a user in one statement
func (r *PgNotificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error marking notifications read")
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
