package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var disbursementColumns = []string{
	"d.id", "d.application_id", "a.application_number", "d.student_id", "d.finance_officer_id",
	"d.amount", "d.disbursement_date", "d.payment_method", "d.bank_name", "d.account_number",
	"d.reference_number", "d.status", "d.notes", "d.created_at",
}

// PgDisbursementRepository handles disbursement database operations
type PgDisbursementRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewDisbursementRepository creates a new PgDisbursementRepository
func NewDisbursementRepository(db db.DBTX) *PgDisbursementRepository {
	return &PgDisbursementRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a disbursement
func (r *PgDisbursementRepository) Create(ctx context.Context, d *models.Disbursement) error {
	sql, args, err := r.sb.Insert("disbursements").
		Columns("application_id", "student_id", "finance_officer_id", "amount", "disbursement_date",
			"payment_method", "bank_name", "account_number", "reference_number", "status", "notes").
		Values(d.ApplicationID, d.StudentID, d.FinanceOfficerID, d.Amount, d.DisbursementDate,
			d.PaymentMethod, d.BankName, d.AccountNumber, d.ReferenceNumber, d.Status, d.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create disbursement SQL")
		return fmt.Errorf("failed to build create disbursement query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "disbursements_reference_number_key") {
			logger.Warn().Str("reference", d.ReferenceNumber).Msg("Disbursement reference collision")
			return apperrors.NewConflictError("disbursement reference already used")
		}
		logger.Error().Err(err).Int64("applicationID", d.ApplicationID).Msg("Error creating disbursement")
		return dberrors.Classify(err, "could not record disbursement")
	}
	return nil
}

func (r *PgDisbursementRepository) selectDisbursements() squirrel.SelectBuilder {
	return r.sb.Select(disbursementColumns...).
		From("disbursements d").
		Join("applications a ON a.id = d.application_id")
}

// List returns a filtered page of disbursements, newest first
func (r *PgDisbursementRepository) List(ctx context.Context, filter DisbursementFilter) ([]*models.Disbursement, int64, error) {
	where := squirrel.And{}
	if filter.PaymentMethod != "" {
		where = append(where, squirrel.Eq{"d.payment_method": filter.PaymentMethod})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"d.reference_number": pattern},
			squirrel.ILike{"a.application_number": pattern},
		})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("disbursements d").
		Join("applications a ON a.id = d.application_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count disbursements query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting disbursements")
		return nil, 0, fmt.Errorf("error counting disbursements: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	sql, args, err := r.selectDisbursements().
		Where(where).
		OrderBy("d.disbursement_date DESC", "d.id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list disbursements query: %w", err)
	}

	items, err := r.query(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByApplication returns the disbursements of one application
func (r *PgDisbursementRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Disbursement, error) {
	sql, args, err := r.selectDisbursements().
		Where(squirrel.Eq{"d.application_id": applicationID}).
		OrderBy("d.disbursement_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list disbursements query: %w", err)
	}
	return r.query(ctx, sql, args)
}

// Totals returns the count and sum of processed disbursements
func (r *PgDisbursementRepository) Totals(ctx context.Context) (int64, decimal.Decimal, error) {
	var count int64
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM disbursements WHERE status = $1",
		models.DisbursementProcessed).Scan(&count, &sum)
	if err != nil {
		logger.Error().Err(err).Msg("Error summing disbursements")
		return 0, decimal.Zero, fmt.Errorf("error summing disbursements: %w", err)
	}
	return count, sum, nil
}

func (r *PgDisbursementRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.Disbursement, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying disbursements")
		return nil, fmt.Errorf("error querying disbursements: %w", err)
	}
	defer rows.Close()

	items := []*models.Disbursement{}
	for rows.Next() {
		d, err := scanDisbursement(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning disbursement row: %w", err)
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func scanDisbursement(row pgx.Row) (*models.Disbursement, error) {
	var d models.Disbursement
	err := row.Scan(&d.ID, &d.ApplicationID, &d.ApplicationNumber, &d.StudentID, &d.FinanceOfficerID,
		&d.Amount, &d.DisbursementDate, &d.PaymentMethod, &d.BankName, &d.AccountNumber,
		&d.ReferenceNumber, &d.Status, &d.Notes, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
