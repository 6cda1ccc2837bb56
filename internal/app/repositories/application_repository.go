package repositories

import (
	"context"
	"errors"
	"fmt"
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

// applicationNumberLockKey identifies the advisory lock taken while numbering
const applicationNumberLockKey int64 = 0x424f42

var applicationColumns = []string{
	"a.id", "a.student_id", "a.application_number", "a.academic_year", "a.semester",
	"a.institution", "a.course", "a.level_of_study", "a.requested_amount", "a.approved_amount",
	"a.purpose", "a.siblings", "a.status", "a.rejection_reason", "a.committee_comments",
	"a.reviewed_by", "a.submitted_at", "a.reviewed_at", "a.approved_at", "a.disbursed_at",
	"a.created_at", "a.updated_at", "s.full_name",
}

// PgApplicationRepository handles application database operations
type PgApplicationRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new PgApplicationRepository
func NewApplicationRepository(db db.DBTX) *PgApplicationRepository {
	return &PgApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	app := &models.Application{Student: &models.Student{}}
	err := row.Scan(
		&app.ID, &app.StudentID, &app.ApplicationNumber, &app.AcademicYear, &app.Semester,
		&app.Institution, &app.Course, &app.LevelOfStudy, &app.RequestedAmount, &app.ApprovedAmount,
		&app.Purpose, &app.Siblings, &app.Status, &app.RejectionReason, &app.CommitteeComments,
		&app.ReviewedBy, &app.SubmittedAt, &app.ReviewedAt, &app.ApprovedAt, &app.DisbursedAt,
		&app.CreatedAt, &app.UpdatedAt, &app.Student.FullName,
	)
	if err != nil {
		return nil, err
	}
	app.Student.ID = app.StudentID
	return app, nil
}

func (r *PgApplicationRepository) selectApplications() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("students s ON s.id = a.student_id")
}

// LockNumbering takes a transaction-scoped advisory lock
func (r *PgApplicationRepository) LockNumbering(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", applicationNumberLockKey); err != nil {
		logger.Error().Err(err).Msg("Error acquiring application numbering lock")
		return fmt.Errorf("error acquiring numbering lock: %w", err)
	}
	return nil
}

// Count returns the total number of applications
func (r *PgApplicationRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM applications").Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return 0, fmt.Errorf("error counting applications: %w", err)
	}
	return total, nil
}

// LastSequence returns the largest numeric suffix of the application numbers
// beginning with numberPrefix
func (r *PgApplicationRepository) LastSequence(ctx context.Context, numberPrefix string) (int64, error) {
	const query = `SELECT COALESCE(MAX(CAST(SUBSTRING(application_number FROM $1) AS BIGINT)), 0)
		FROM applications
		WHERE application_number LIKE $2 AND SUBSTRING(application_number FROM $1) ~ '^[0-9]+$'`

	var last int64
	if err := r.db.QueryRow(ctx, query, len(numberPrefix)+1, numberPrefix+"%").Scan(&last); err != nil {
		logger.Error().Err(err).Str("prefix", numberPrefix).Msg("Error reading last application sequence")
		return 0, fmt.Errorf("error reading last application sequence: %w", err)
	}
	return last, nil
}

// Create inserts a new application and fills its generated fields
func (r *PgApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	siblings := app.Siblings
	if siblings == nil {
		siblings = []models.Sibling{}
	}

	sql, args, err := r.sb.Insert("applications").
		Columns("student_id", "application_number", "academic_year", "semester", "institution",
			"course", "level_of_study", "requested_amount", "purpose", "siblings", "status", "submitted_at").
		Values(app.StudentID, app.ApplicationNumber, app.AcademicYear, app.Semester, app.Institution,
			app.Course, app.LevelOfStudy, app.RequestedAmount, app.Purpose, siblings, app.Status, app.SubmittedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "applications_application_number_key") {
			return apperrors.NewConflictError("application number already assigned")
		}
		logger.Error().Err(err).Str("applicationNumber", app.ApplicationNumber).Msg("Error creating application")
		return dberrors.Classify(err, "could not create application")
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *PgApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"a.id": id})
}

// GetByNumber retrieves an application by its application number
func (r *PgApplicationRepository) GetByNumber(ctx context.Context, number string) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"a.application_number": number})
}

func (r *PgApplicationRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Application, error) {
	sql, args, err := r.selectApplications().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("application not found")
		}
		logger.Error().Err(err).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return app, nil
}

// ListByStudent returns a student's applications, newest first
func (r *PgApplicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Application, error) {
	sql, args, err := r.selectApplications().
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.submitted_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}
	return r.queryApplications(ctx, sql, args)
}

// List returns a filtered page of applications and the total match count
func (r *PgApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"a.status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"a.application_number": pattern},
			squirrel.ILike{"s.full_name": pattern},
			squirrel.ILike{"a.institution": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("applications a").
		Join("students s ON s.id = a.student_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting filtered applications")
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	sql, args, err := r.selectApplications().
		Where(where).
		OrderBy("a.submitted_at DESC", "a.id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	apps, err := r.queryApplications(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *PgApplicationRepository) queryApplications(ctx context.Context, sql string, args []interface{}) ([]*models.Application, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying applications")
		return nil, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// UpdateDecision writes status and decision fields
func (r *PgApplicationRepository) UpdateDecision(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"status":             app.Status,
			"approved_amount":    app.ApprovedAmount,
			"rejection_reason":   app.RejectionReason,
			"committee_comments": app.CommitteeComments,
			"reviewed_by":        app.ReviewedBy,
			"reviewed_at":        app.ReviewedAt,
			"approved_at":        app.ApprovedAt,
			"disbursed_at":       app.DisbursedAt,
			"updated_at":         app.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": app.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", app.ID).Msg("Error updating application decision")
		return dberrors.Classify(err, "could not update application")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("application not found")
	}
	return nil
}

// CompareAndSetStatus updates the status only when it currently equals from
func (r *PgApplicationRepository) CompareAndSetStatus(ctx context.Context, id int64, from, to models.ApplicationStatus, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("applications").
		Set("status", to).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build status update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error updating application status")
		return false, dberrors.Classify(err, "could not update application status")
	}
	return tag.RowsAffected() == 1, nil
}

// MarkDisbursed flips approved -> disbursed and stamps disbursed_at
func (r *PgApplicationRepository) MarkDisbursed(ctx context.Context, id int64, at time.Time) (bool, error) {
	sql, args, err := r.sb.Update("applications").
		Set("status", models.StatusDisbursed).
		Set("disbursed_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id, "status": models.StatusApproved}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build disburse update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error marking application disbursed")
		return false, dberrors.Classify(err, "could not mark application disbursed")
	}
	return tag.RowsAffected() == 1, nil
}

// CountByStatus returns the number of applications per status
func (r *PgApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT status, COUNT(*) FROM applications GROUP BY status")
	if err != nil {
		logger.Error().Err(err).Msg("Error counting applications by status")
		return nil, fmt.Errorf("error counting applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int64, len(models.ApplicationStatuses))
	for _, s := range models.ApplicationStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status models.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// TotalsBySubCounty groups students by sub-county, joining their
// applications so sub-counties without applicants still appear
func (r *PgApplicationRepository) TotalsBySubCounty(ctx context.Context) ([]models.GroupTotal, error) {
	sql, args, err := r.sb.Select(
		"COALESCE(s.sub_county, '') AS sub_county",
		"COUNT(a.id)",
		"COALESCE(SUM(a.approved_amount), 0)").
		From("students s").
		LeftJoin("applications a ON a.student_id = s.id").
		GroupBy("1").
		OrderBy("2 DESC", "1").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sub-county report query: %w", err)
	}
	return r.queryGroupTotals(ctx, sql, args)
}

// TopInstitutions ranks institutions by application count
func (r *PgApplicationRepository) TopInstitutions(ctx context.Context, limit int) ([]models.GroupTotal, error) {
	sql, args, err := r.sb.Select(
		"institution",
		"COUNT(*)",
		"COALESCE(SUM(approved_amount), 0)").
		From("applications").
		GroupBy("institution").
		OrderBy("2 DESC", "1").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build institution report query: %w", err)
	}
	return r.queryGroupTotals(ctx, sql, args)
}

func (r *PgApplicationRepository) queryGroupTotals(ctx context.Context, sql string, args []interface{}) ([]models.GroupTotal, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying report totals")
		return nil, fmt.Errorf("error querying report totals: %w", err)
	}
	defer rows.Close()

	totals := []models.GroupTotal{}
	for rows.Next() {
		var t models.GroupTotal
		if err := rows.Scan(&t.Name, &t.Applications, &t.ApprovedTotal); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
