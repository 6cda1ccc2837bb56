package services

import (
	"context"
	"strings"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/models/dto"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// ReviewService records committee recommendations
type ReviewService struct {
	repos  *repositories.Repositories
	tx     repositories.TxManager
	now    Clock
	logger zerolog.Logger
}

// NewReviewService creates a new ReviewService
func NewReviewService(repos *repositories.Repositories, tx repositories.TxManager, clock Clock, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		repos:  repos,
		tx:     tx,
		now:    clock,
		logger: logger.With().Str("service", "reviews").Logger(),
	}
}

// Record stores an immutable review and moves a pending application to
// under_review. Later reviews leave the status alone.
func (s *ReviewService) Record(ctx context.Context, actor auth.Actor, applicationID int64, req dto.RecordReviewRequest) (*models.Review, error) {
	if err := auth.Authorize(actor, auth.OpRecordReview); err != nil {
		return nil, err
	}

	if _, err := s.repos.Applications.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	if !req.Decision.IsValid() {
		return nil, apperrors.NewInvalidInputError("decision must be recommend_approval, recommend_rejection or need_more_info")
	}

	review := &models.Review{
		ApplicationID: applicationID,
		ReviewerID:    actor.UserID,
		ReviewerName:  actor.Name,
		Decision:      req.Decision,
		Comments:      strings.TrimSpace(req.Comments),
	}
	if raw := strings.TrimSpace(req.RecommendedAmount.String()); raw != "" {
		amount, err := helpers.ParsePositiveAmount(raw)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("recommended amount: " + err.Error())
		}
		review.RecommendedAmount = &amount
	}

	var movedToReview bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		now := s.now()
		review.ReviewDate = now
		if err := repos.Reviews.Create(ctx, review); err != nil {
			return err
		}
		moved, err := repos.Applications.CompareAndSetStatus(ctx, applicationID, models.StatusPending, models.StatusUnderReview, now)
		if err != nil {
			return err
		}
		movedToReview = moved
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReviewRecorded(string(review.Decision))
	if movedToReview {
		metrics.StatusChanged(string(models.StatusUnderReview))
	}
	s.logger.Info().
		Int64("applicationID", applicationID).
		Str("decision", string(review.Decision)).
		Bool("movedToReview", movedToReview).
		Stringer("actor", actor).
		Msg("Review recorded")
	return review, nil
}

// List returns the reviews of an application, newest first
func (s *ReviewService) List(ctx context.Context, actor auth.Actor, applicationID int64) ([]*models.Review, error) {
	if err := auth.Authorize(actor, auth.OpRecordReview); err != nil {
		return nil, err
	}
	if _, err := s.repos.Applications.GetByID(ctx, applicationID); err != nil {
		return nil, err
	}
	return s.repos.Reviews.ListByApplication(ctx, applicationID)
}
