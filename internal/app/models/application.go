package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the lifecycle state of an application
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
	StatusDisbursed   ApplicationStatus = "disbursed"
	// StatusCompleted is storable and may be set by an administrative override,
	// but no business transition leads to it.
	StatusCompleted ApplicationStatus = "completed"
)

// ApplicationStatuses lists every known status in workflow order
var ApplicationStatuses = []ApplicationStatus{
	StatusPending,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusDisbursed,
	StatusCompleted,
}

// IsValid reports whether s is one of the six known statuses
func (s ApplicationStatus) IsValid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// HoldsApprovedAmount reports whether an application in status s must carry an
// approved amount.
func (s ApplicationStatus) HoldsApprovedAmount() bool {
	return s == StatusApproved || s == StatusDisbursed || s == StatusCompleted
}

// Sibling is a dependant listed on an application to support the need assessment
type Sibling struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	TotalFee    string `json:"totalFee"`
	FeesPaid    string `json:"feesPaid"`
	Outstanding string `json:"outstanding"`
}

// Application is a student's funding request for one academic period
type Application struct {
	ID                int64             `json:"id" db:"id"`
	StudentID         int64             `json:"studentId" db:"student_id"`
	ApplicationNumber string            `json:"applicationNumber" db:"application_number" example:"BOB202500001"`
	AcademicYear      string            `json:"academicYear" db:"academic_year" example:"2025/2026"`
	Semester          Semester          `json:"semester" db:"semester" example:"1"`
	Institution       string            `json:"institution" db:"institution"`
	Course            string            `json:"course" db:"course"`
	LevelOfStudy      string            `json:"levelOfStudy" db:"level_of_study"`
	RequestedAmount   decimal.Decimal   `json:"requestedAmount" db:"requested_amount"`
	ApprovedAmount    *decimal.Decimal  `json:"approvedAmount,omitempty" db:"approved_amount"`
	Purpose           string            `json:"purpose" db:"purpose"`
	Siblings          []Sibling         `json:"siblings" db:"siblings"`
	Status            ApplicationStatus `json:"status" db:"status"`
	RejectionReason   *string           `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CommitteeComments *string           `json:"committeeComments,omitempty" db:"committee_comments"`
	ReviewedBy        *string           `json:"reviewedBy,omitempty" db:"reviewed_by"`
	SubmittedAt       time.Time         `json:"submittedAt" db:"submitted_at"`
	ReviewedAt        *time.Time        `json:"reviewedAt,omitempty" db:"reviewed_at"`
	ApprovedAt        *time.Time        `json:"approvedAt,omitempty" db:"approved_at"`
	DisbursedAt       *time.Time        `json:"disbursedAt,omitempty" db:"disbursed_at"`
	CreatedAt         time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time         `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
}
