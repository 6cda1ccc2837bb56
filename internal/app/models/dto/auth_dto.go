package dto

import (
	"time"

	"github.com/bobasi/bursary/internal/app/models"
)

// RegisterRequest is the self-registration form of a student
type RegisterRequest struct {
	Name            string  `json:"name" binding:"required,min=2,max=100" example:"Jane Moraa"`
	Email           string  `json:"email" binding:"required,email" example:"jane@example.com"`
	Password        string  `json:"password" binding:"required,min=6" example:"secret123"`
	Phone           *string `json:"phone" binding:"omitempty,kephone" example:"0712345678"`
	AdmissionNumber *string `json:"admissionNumber" example:"SCT221-0001/2024"`
	Institution     string  `json:"institution" example:"Kisii University"`
	Course          string  `json:"course" example:"BSc. Nursing"`
	LevelOfStudy    string  `json:"levelOfStudy" example:"university"`
	SubCounty       *string `json:"subCounty" example:"Bobasi"`
	Ward            *string `json:"ward" example:"Masige West"`
}

// LoginRequest carries credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@bobasi.go.ke"`
	Password string `json:"password" binding:"required" example:"Admin@1234"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType" example:"Bearer"`
	ExpiresIn   int          `json:"expiresIn" example:"28800"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest creates a staff account
type CreateUserRequest struct {
	Name     string          `json:"name" binding:"required,min=2,max=100"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	Phone    *string         `json:"phone" binding:"omitempty,kephone"`
	Role     models.RoleType `json:"role" binding:"required,oneof=admin finance_officer review_committee"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// UserFilterRequest filters the account list
type UserFilterRequest struct {
	Role     models.RoleType   `form:"role"`
	Status   models.UserStatus `form:"status"`
	Page     int               `form:"page"`
	PageSize int               `form:"pageSize"`
}

// NewUserResponses maps user models to their public views
func NewUserResponses(users []*models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// UpdateUserStatusRequest activates, deactivates or suspends an account
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,oneof=active inactive suspended"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       *string           `json:"phone,omitempty"`
	Role        models.RoleType   `json:"role"`
	Status      models.UserStatus `json:"status"`
	LastLoginAt *time.Time        `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewUserResponse maps a user model to its public view
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ProfileResponse is the current user with the student profile when present
type ProfileResponse struct {
	User    UserResponse    `json:"user"`
	Student *models.Student `json:"student,omitempty"`
}
