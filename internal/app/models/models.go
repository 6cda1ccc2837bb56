package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent         RoleType = "student"
	RoleAdmin           RoleType = "admin"
	RoleFinanceOfficer  RoleType = "finance_officer"
	RoleReviewCommittee RoleType = "review_committee"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleFinanceOfficer, RoleReviewCommittee:
		return true
	}
	return false
}

// IsStaff reports whether r is one of the staff roles
func (r RoleType) IsStaff() bool {
	return r == RoleAdmin || r == RoleFinanceOfficer || r == RoleReviewCommittee
}

// UserStatus is the account state checked on every authenticated request
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// IsValid reports whether s is a known account status
func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusSuspended:
		return true
	}
	return false
}

// Semester of the academic year an application is for
type Semester string

const (
	SemesterOne   Semester = "1"
	SemesterTwo   Semester = "2"
	SemesterThree Semester = "3"
)

// IsValid reports whether s is a known semester
func (s Semester) IsValid() bool {
	return s == SemesterOne || s == SemesterTwo || s == SemesterThree
}
