package dto

import "github.com/bobasi/bursary/internal/app/models"

// StudentFilterRequest filters the staff student list
type StudentFilterRequest struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// StudentDetailResponse is a student profile with every application it owns
type StudentDetailResponse struct {
	Student      *models.Student       `json:"student"`
	Applications []ApplicationResponse `json:"applications"`
}
