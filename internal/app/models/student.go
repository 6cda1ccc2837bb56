package models

import "time"

// Student is the profile owned by a student-role user. It owns the student's
// applications, documents and grant records.
type Student struct {
	ID              int64     `json:"id" db:"id" example:"1"`
	UserID          int64     `json:"userId" db:"user_id" example:"5"`
	FullName        string    `json:"fullName" db:"full_name" example:"Jane Moraa"`
	AdmissionNumber *string   `json:"admissionNumber,omitempty" db:"admission_number" example:"SCT221-0001/2024"`
	Institution     string    `json:"institution" db:"institution" example:"Kisii University"`
	Course          string    `json:"course" db:"course" example:"BSc. Nursing"`
	LevelOfStudy    string    `json:"levelOfStudy" db:"level_of_study" example:"university"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	SubCounty       *string   `json:"subCounty,omitempty" db:"sub_county"`
	Ward            *string   `json:"ward,omitempty" db:"ward"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
