package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GrantStatus of a grant record
type GrantStatus string

const (
	GrantActive    GrantStatus = "active"
	GrantCompleted GrantStatus = "completed"
	GrantDefaulted GrantStatus = "defaulted"
	GrantWaived    GrantStatus = "waived"
)

// IsValid reports whether s is a known grant status
func (s GrantStatus) IsValid() bool {
	switch s {
	case GrantActive, GrantCompleted, GrantDefaulted, GrantWaived:
		return true
	}
	return false
}

// Grant is the zero-interest record paired 1:1 with a disbursement. Interest,
// repayment period and installment are always zero; nothing is ever collected
// against it.
type Grant struct {
	ID                    int64           `json:"id" db:"id"`
	ApplicationID         int64           `json:"applicationId" db:"application_id"`
	StudentID             int64           `json:"studentId" db:"student_id"`
	DisbursementID        int64           `json:"disbursementId" db:"disbursement_id"`
	PrincipalAmount       decimal.Decimal `json:"principalAmount" db:"principal_amount"`
	InterestRate          decimal.Decimal `json:"interestRate" db:"interest_rate"`
	RepaymentPeriodMonths int             `json:"repaymentPeriodMonths" db:"repayment_period_months"`
	MonthlyInstallment    decimal.Decimal `json:"monthlyInstallment" db:"monthly_installment"`
	TotalPayable          decimal.Decimal `json:"totalPayable" db:"total_payable"`
	BalanceRemaining      decimal.Decimal `json:"balanceRemaining" db:"balance_remaining"`
	StartDate             time.Time       `json:"startDate" db:"start_date"`
	DueDate               time.Time       `json:"dueDate" db:"due_date"`
	Status                GrantStatus     `json:"status" db:"status"`
	CreatedAt             time.Time       `json:"createdAt" db:"created_at"`
}
