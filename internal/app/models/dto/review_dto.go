package dto

import (
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/shopspring/decimal"
)

// RecordReviewRequest is a committee member's recommendation
type RecordReviewRequest struct {
	Decision          models.ReviewDecision `json:"decision" binding:"required" example:"recommend_approval"`
	RecommendedAmount NumericInput          `json:"recommendedAmount" example:"10000"`
	Comments          string                `json:"comments" example:"Genuine need"`
}

// ReviewResponse is the API view of a review
type ReviewResponse struct {
	ID                int64                 `json:"id"`
	ApplicationID     int64                 `json:"applicationId"`
	ReviewerID        int64                 `json:"reviewerId"`
	ReviewerName      string                `json:"reviewerName,omitempty"`
	Decision          models.ReviewDecision `json:"decision"`
	RecommendedAmount *decimal.Decimal      `json:"recommendedAmount,omitempty"`
	Comments          string                `json:"comments"`
	ReviewDate        time.Time             `json:"reviewDate"`
}

// NewReviewResponse maps a review model
func NewReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:                r.ID,
		ApplicationID:     r.ApplicationID,
		ReviewerID:        r.ReviewerID,
		ReviewerName:      r.ReviewerName,
		Decision:          r.Decision,
		RecommendedAmount: r.RecommendedAmount,
		Comments:          r.Comments,
		ReviewDate:        r.ReviewDate,
	}
}

// NewReviewResponses maps a slice of reviews
func NewReviewResponses(reviews []*models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, NewReviewResponse(r))
	}
	return out
}
