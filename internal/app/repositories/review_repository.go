package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/logger"
)

// PgReviewRepository handles committee review database operations
type PgReviewRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewReviewRepository creates a new PgReviewRepository
func NewReviewRepository(db db.DBTX) *PgReviewRepository {
	return &PgReviewRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a review
func (r *PgReviewRepository) Create(ctx context.Context, review *models.Review) error {
	sql, args, err := r.sb.Insert("application_reviews").
		Columns("application_id", "reviewer_id", "decision", "recommended_amount", "comments", "review_date").
		Values(review.ApplicationID, review.ReviewerID, review.Decision, review.RecommendedAmount, review.Comments, review.ReviewDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create review SQL")
		return fmt.Errorf("failed to build create review query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&review.ID); err != nil {
		logger.Error().Err(err).Int64("applicationID", review.ApplicationID).Msg("Error creating review")
		return dberrors.Classify(err, "could not record review")
	}
	return nil
}

// ListByApplication returns every review of an application with the reviewer's name
func (r *PgReviewRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Review, error) {
	sql, args, err := r.sb.Select("r.id", "r.application_id", "r.reviewer_id", "u.name",
		"r.decision", "r.recommended_amount", "r.comments", "r.review_date").
		From("application_reviews r").
		Join("users u ON u.id = r.reviewer_id").
		Where(squirrel.Eq{"r.application_id": applicationID}).
		OrderBy("r.review_date DESC", "r.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list reviews query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error querying reviews")
		return nil, fmt.Errorf("error querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.ApplicationID, &rv.ReviewerID, &rv.ReviewerName,
			&rv.Decision, &rv.RecommendedAmount, &rv.Comments, &rv.ReviewDate); err != nil {
			return nil, fmt.Errorf("error scanning review row: %w", err)
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}
