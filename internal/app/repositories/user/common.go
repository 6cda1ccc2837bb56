package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, name, email, password, phone, role, status, last_login_at, created_at, updated_at`

// Filter narrows the account list
type Filter struct {
	Role     models.RoleType
	Status   models.UserStatus
	Page     int
	PageSize int
}

// Repository handles user account database operations
type Repository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewRepository creates a new Repository
func NewRepository(db db.DBTX) *Repository {
	return &Repository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Phone,
		&user.Role, &user.Status, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user. Emails are stored lowercased and must be unique.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password, phone, role, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		user.Name, user.Email, user.Password, user.Phone, user.Role, user.Status).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			logger.Warn().Str("email", user.Email).Msg("Attempted to create user with duplicate email")
			return apperrors.NewConflictError("email already registered")
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return dberrors.Classify(err, "could not create user")
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, notFoundOr(err, "error getting user by email")
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id))
	if err != nil {
		return nil, notFoundOr(err, "error getting user by id")
	}
	return user, nil
}

// UpdateStatus activates, deactivates or suspends an account
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET status = $1, updated_at = NOW()
		WHERE id = $2`,
		status, id)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating user status")
		return dberrors.Classify(err, "could not update user status")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// List returns a page of accounts, newest first, and the total match count
func (r *Repository) List(ctx context.Context, filter Filter) ([]*models.User, int64, error) {
	where := squirrel.Eq{}
	if filter.Role != "" {
		where["role"] = filter.Role
	}
	if filter.Status != "" {
		where["status"] = filter.Status
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	sql, args, err := r.sb.Select(userColumns).
		From("users").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// UpdatePassword replaces the stored password hash
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password = $1, updated_at = $2
		WHERE id = $3`,
		passwordHash, at, id)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating password")
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// Delete removes a user. Owned rows go with it through ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewConflictError("user has recorded reviews or disbursements")
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error deleting user")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("user not found")
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError("user not found")
	}
	logger.Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
