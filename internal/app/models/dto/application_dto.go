package dto

import (
	"time"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/shopspring/decimal"
)

// SiblingRequest is one entry of the siblings table on the application form
type SiblingRequest struct {
	Name        string       `json:"name" binding:"required"`
	Institution string       `json:"institution"`
	Year        string       `json:"year"`
	TotalFee    NumericInput `json:"totalFee"`
	FeesPaid    NumericInput `json:"feesPaid"`
	Outstanding NumericInput `json:"outstanding"`
}

// SubmitApplicationRequest is the application form submitted by a student
type SubmitApplicationRequest struct {
	RequestedAmount NumericInput     `json:"requestedAmount" binding:"required" example:"15000"`
	Institution     string           `json:"institution" example:"Kisii University"`
	Course          string           `json:"course" example:"BSc. Nursing"`
	LevelOfStudy    string           `json:"levelOfStudy" example:"university"`
	AcademicYear    string           `json:"academicYear" example:"2025/2026"`
	Semester        models.Semester  `json:"semester" example:"1"`
	Purpose         string           `json:"purpose" example:"Tuition fees balance"`
	Siblings        []SiblingRequest `json:"siblings" binding:"omitempty,dive"`
}

// UpdateStatusRequest is the administrative status override
type UpdateStatusRequest struct {
	Status            models.ApplicationStatus `json:"status" binding:"required" example:"approved"`
	ApprovedAmount    NumericInput             `json:"approvedAmount" example:"12000"`
	RejectionReason   string                   `json:"rejectionReason" example:"Incomplete documents"`
	CommitteeComments string                   `json:"committeeComments" example:"Needy case"`
}

// ApplicationFilterRequest filters the staff application list
type ApplicationFilterRequest struct {
	Status   models.ApplicationStatus `form:"status"`
	Search   string                   `form:"search"`
	Page     int                      `form:"page"`
	PageSize int                      `form:"pageSize"`
}

// ApplicationResponse is the API view of an application
type ApplicationResponse struct {
	ID                int64                    `json:"id"`
	ApplicationNumber string                   `json:"applicationNumber"`
	StudentID         int64                    `json:"studentId"`
	StudentName       string                   `json:"studentName,omitempty"`
	AcademicYear      string                   `json:"academicYear"`
	Semester          models.Semester          `json:"semester"`
	Institution       string                   `json:"institution"`
	Course            string                   `json:"course"`
	LevelOfStudy      string                   `json:"levelOfStudy"`
	RequestedAmount   decimal.Decimal          `json:"requestedAmount"`
	ApprovedAmount    *decimal.Decimal         `json:"approvedAmount,omitempty"`
	Purpose           string                   `json:"purpose"`
	Siblings          []models.Sibling         `json:"siblings"`
	Status            models.ApplicationStatus `json:"status"`
	RejectionReason   *string                  `json:"rejectionReason,omitempty"`
	CommitteeComments *string                  `json:"committeeComments,omitempty"`
	ReviewedBy        *string                  `json:"reviewedBy,omitempty"`
	SubmittedAt       time.Time                `json:"submittedAt"`
	ReviewedAt        *time.Time               `json:"reviewedAt,omitempty"`
	ApprovedAt        *time.Time               `json:"approvedAt,omitempty"`
	DisbursedAt       *time.Time               `json:"disbursedAt,omitempty"`
}

// NewApplicationResponse maps an application model to its API view
func NewApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:                app.ID,
		ApplicationNumber: app.ApplicationNumber,
		StudentID:         app.StudentID,
		AcademicYear:      app.AcademicYear,
		Semester:          app.Semester,
		Institution:       app.Institution,
		Course:            app.Course,
		LevelOfStudy:      app.LevelOfStudy,
		RequestedAmount:   app.RequestedAmount,
		ApprovedAmount:    app.ApprovedAmount,
		Purpose:           app.Purpose,
		Siblings:          app.Siblings,
		Status:            app.Status,
		RejectionReason:   app.RejectionReason,
		CommitteeComments: app.CommitteeComments,
		ReviewedBy:        app.ReviewedBy,
		SubmittedAt:       app.SubmittedAt,
		ReviewedAt:        app.ReviewedAt,
		ApprovedAt:        app.ApprovedAt,
		DisbursedAt:       app.DisbursedAt,
	}
	if resp.Siblings == nil {
		resp.Siblings = []models.Sibling{}
	}
	if app.Student != nil {
		resp.StudentName = app.Student.FullName
	}
	return resp
}

// NewApplicationResponses maps a slice of applications
func NewApplicationResponses(apps []*models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewApplicationResponse(app))
	}
	return out
}

// ApplicationDetailResponse adds the reviews and documents of an application
type ApplicationDetailResponse struct {
	ApplicationResponse
	Reviews   []ReviewResponse   `json:"reviews,omitempty"`
	Documents []DocumentResponse `json:"documents"`
}

// TrackResponse is the public status snapshot of an application
type TrackResponse struct {
	ApplicationNumber string                   `json:"applicationNumber" example:"BOB202500001"`
	Status            models.ApplicationStatus `json:"status" example:"under_review"`
	AcademicYear      string                   `json:"academicYear" example:"2025/2026"`
	SubmittedAt       time.Time                `json:"submittedAt"`
	ApprovedAmount    *decimal.Decimal         `json:"approvedAmount,omitempty"`
}

// NewTrackResponse builds the public snapshot
func NewTrackResponse(app *models.Application) TrackResponse {
	return TrackResponse{
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		AcademicYear:      app.AcademicYear,
		SubmittedAt:       app.SubmittedAt,
		ApprovedAmount:    app.ApprovedAmount,
	}
}
