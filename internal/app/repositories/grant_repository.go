package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/logger"
)

var grantColumns = []string{
	"id", "application_id", "student_id", "disbursement_id", "principal_amount", "interest_rate",
	"repayment_period_months", "monthly_installment", "total_payable", "balance_remaining",
	"start_date", "due_date", "status", "created_at",
}

// PgGrantRepository handles grant record database operations
type PgGrantRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewGrantRepository creates a new PgGrantRepository
func NewGrantRepository(db db.DBTX) *PgGrantRepository {
	return &PgGrantRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a grant record
func (r *PgGrantRepository) Create(ctx context.Context, g *models.Grant) error {
	sql, args, err := r.sb.Insert("grants").
		Columns(grantColumns[1:13]...).
		Values(g.ApplicationID, g.StudentID, g.DisbursementID, g.PrincipalAmount, g.InterestRate,
			g.RepaymentPeriodMonths, g.MonthlyInstallment, g.TotalPayable, g.BalanceRemaining,
			g.StartDate, g.DueDate, g.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create grant SQL")
		return fmt.Errorf("failed to build create grant query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&g.ID, &g.CreatedAt); err != nil {
		logger.Error().Err(err).Int64("applicationID", g.ApplicationID).Msg("Error creating grant")
		return dberrors.Classify(err, "could not record grant")
	}
	return nil
}

// List returns a filtered page of grants, newest first
func (r *PgGrantRepository) List(ctx context.Context, filter GrantFilter) ([]*models.Grant, int64, error) {
	where := squirrel.Eq{}
	if filter.Status != "" {
		where["status"] = filter.Status
	}
	if filter.StudentID > 0 {
		where["student_id"] = filter.StudentID
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("grants").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count grants query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting grants")
		return nil, 0, fmt.Errorf("error counting grants: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	sql, args, err := r.sb.Select(grantColumns...).
		From("grants").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list grants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying grants")
		return nil, 0, fmt.Errorf("error querying grants: %w", err)
	}
	defer rows.Close()

	grants := []*models.Grant{}
	for rows.Next() {
		var g models.Grant
		if err := rows.Scan(&g.ID, &g.ApplicationID, &g.StudentID, &g.DisbursementID, &g.PrincipalAmount,
			&g.InterestRate, &g.RepaymentPeriodMonths, &g.MonthlyInstallment, &g.TotalPayable,
			&g.BalanceRemaining, &g.StartDate, &g.DueDate, &g.Status, &g.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning grant row: %w", err)
		}
		grants = append(grants, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating grant rows: %w", err)
	}
	return grants, total, nil
}
