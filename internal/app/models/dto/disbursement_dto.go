package dto

import (
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/shopspring/decimal"
)

// DisburseRequest records the release of funds for an approved application
type DisburseRequest struct {
	ApplicationID int64                `json:"applicationId" binding:"required,gt=0" example:"12"`
	Amount        NumericInput         `json:"amount" binding:"required" example:"12000"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required" example:"mpesa"`
	BankName      *string              `json:"bankName" example:"KCB"`
	AccountNumber *string              `json:"accountNumber" example:"1234567890"`
	Notes         *string              `json:"notes"`
}

// DisbursementFilterRequest filters the disbursement history
type DisbursementFilterRequest struct {
	PaymentMethod models.PaymentMethod `form:"paymentMethod"`
	Search        string               `form:"search"`
	Page          int                  `form:"page"`
	PageSize      int                  `form:"pageSize"`
}

// GrantFilterRequest filters the grant records
type GrantFilterRequest struct {
	Status   models.GrantStatus `form:"status"`
	Page     int                `form:"page"`
	PageSize int                `form:"pageSize"`
}

// DisbursementResponse is the API view of a disbursement
type DisbursementResponse struct {
	ID                int64                     `json:"id"`
	ApplicationID     int64                     `json:"applicationId"`
	ApplicationNumber string                    `json:"applicationNumber,omitempty"`
	StudentID         int64                     `json:"studentId"`
	FinanceOfficerID  int64                     `json:"financeOfficerId"`
	Amount            decimal.Decimal           `json:"amount"`
	DisbursementDate  time.Time                 `json:"disbursementDate"`
	PaymentMethod     models.PaymentMethod      `json:"paymentMethod"`
	BankName          *string                   `json:"bankName,omitempty"`
	AccountNumber     *string                   `json:"accountNumber,omitempty"`
	ReferenceNumber   string                    `json:"referenceNumber"`
	Status            models.DisbursementStatus `json:"status"`
	Notes             *string                   `json:"notes,omitempty"`
}

// NewDisbursementResponse maps a disbursement model
func NewDisbursementResponse(d *models.Disbursement) DisbursementResponse {
	return DisbursementResponse{
		ID:                d.ID,
		ApplicationID:     d.ApplicationID,
		ApplicationNumber: d.ApplicationNumber,
		StudentID:         d.StudentID,
		FinanceOfficerID:  d.FinanceOfficerID,
		Amount:            d.Amount,
		DisbursementDate:  d.DisbursementDate,
		PaymentMethod:     d.PaymentMethod,
		BankName:          d.BankName,
		AccountNumber:     d.AccountNumber,
		ReferenceNumber:   d.ReferenceNumber,
		Status:            d.Status,
		Notes:             d.Notes,
	}
}

// NewDisbursementResponses maps a slice of disbursements
func NewDisbursementResponses(items []*models.Disbursement) []DisbursementResponse {
	out := make([]DisbursementResponse, 0, len(items))
	for _, d := range items {
		out = append(out, NewDisbursementResponse(d))
	}
	return out
}

// DisbursementResultResponse is returned to the finance officer for printing
type DisbursementResultResponse struct {
	Disbursement DisbursementResponse `json:"disbursement"`
	Grant        *models.Grant        `json:"grant"`
}
