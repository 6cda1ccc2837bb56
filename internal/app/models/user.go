package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Name        string     `json:"name" db:"name" example:"Jane Moraa"`
	Email       string     `json:"email" db:"email" example:"jane@example.com"`
	Password    string     `json:"-" db:"password"`
	Phone       *string    `json:"phone,omitempty" db:"phone" example:"0712345678"`
	Role        RoleType   `json:"role" db:"role" example:"student"`
	Status      UserStatus `json:"status" db:"status" example:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
