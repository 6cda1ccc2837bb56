package dto

import (
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/shopspring/decimal"
)

// StatsResponse is the staff dashboard summary
type StatsResponse struct {
	TotalApplications   int64                              `json:"totalApplications"`
	ByStatus            map[models.ApplicationStatus]int64 `json:"byStatus"`
	TotalDisbursed      decimal.Decimal                    `json:"totalDisbursed"`
	DisbursementCount   int64                              `json:"disbursementCount"`
	UnreadNotifications int64                              `json:"unreadNotifications"`
}

// ReportResponse breaks applications down for the committee
type ReportResponse struct {
	BySubCounty     []models.GroupTotal                `json:"bySubCounty"`
	ByStatus        map[models.ApplicationStatus]int64 `json:"byStatus"`
	TopInstitutions []models.GroupTotal                `json:"topInstitutions"`
	TotalDisbursed  decimal.Decimal                    `json:"totalDisbursed"`
}
