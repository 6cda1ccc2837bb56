package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how disbursed funds were released
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentMpesa        PaymentMethod = "mpesa"
	PaymentCheque       PaymentMethod = "cheque"
	PaymentCash         PaymentMethod = "cash"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentBankTransfer, PaymentMpesa, PaymentCheque, PaymentCash:
		return true
	}
	return false
}

// DisbursementStatus of a recorded release of funds
type DisbursementStatus string

const (
	DisbursementPending   DisbursementStatus = "pending"
	DisbursementProcessed DisbursementStatus = "processed"
	DisbursementFailed    DisbursementStatus = "failed"
)

// Disbursement records funds released for an approved application. It is never
// mutated after creation.
type Disbursement struct {
	ID                int64              `json:"id" db:"id"`
	ApplicationID     int64              `json:"applicationId" db:"application_id"`
	ApplicationNumber string             `json:"applicationNumber,omitempty" db:"-"`
	StudentID         int64              `json:"studentId" db:"student_id"`
	FinanceOfficerID  int64              `json:"financeOfficerId" db:"finance_officer_id"`
	Amount            decimal.Decimal    `json:"amount" db:"amount"`
	DisbursementDate  time.Time          `json:"disbursementDate" db:"disbursement_date"`
	PaymentMethod     PaymentMethod      `json:"paymentMethod" db:"payment_method"`
	BankName          *string            `json:"bankName,omitempty" db:"bank_name"`
	AccountNumber     *string            `json:"accountNumber,omitempty" db:"account_number"`
	ReferenceNumber   string             `json:"referenceNumber" db:"reference_number" example:"BOB-DISB-20250314-3FA9C2"`
	Status            DisbursementStatus `json:"status" db:"status"`
	Notes             *string            `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
}
