package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReviewDecision is a committee member's non-binding recommendation
type ReviewDecision string

const (
	DecisionRecommendApproval  ReviewDecision = "recommend_approval"
	DecisionRecommendRejection ReviewDecision = "recommend_rejection"
	DecisionNeedMoreInfo       ReviewDecision = "need_more_info"
)

// IsValid reports whether d is one of the three known decisions
func (d ReviewDecision) IsValid() bool {
	switch d {
	case DecisionRecommendApproval, DecisionRecommendRejection, DecisionNeedMoreInfo:
		return true
	}
	return false
}

// Review is immutable once created
type Review struct {
	ID                int64            `json:"id" db:"id"`
	ApplicationID     int64            `json:"applicationId" db:"application_id"`
	ReviewerID        int64            `json:"reviewerId" db:"reviewer_id"`
	ReviewerName      string           `json:"reviewerName,omitempty" db:"-"`
	Decision          ReviewDecision   `json:"decision" db:"decision"`
	RecommendedAmount *decimal.Decimal `json:"recommendedAmount,omitempty" db:"recommended_amount"`
	Comments          string           `json:"comments" db:"comments"`
	ReviewDate        time.Time        `json:"reviewDate" db:"review_date"`
}
