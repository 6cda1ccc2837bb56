package models

import "time"

// DocumentStatus of an uploaded supporting document. Only pending is ever set
// by this service.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is the metadata of a file attached to an application
type Document struct {
	ID            int64          `json:"id" db:"id"`
	StudentID     int64          `json:"studentId" db:"student_id"`
	ApplicationID int64          `json:"applicationId" db:"application_id"`
	DocumentType  string         `json:"documentType" db:"document_type" example:"fee_structure"`
	DocumentName  string         `json:"documentName" db:"document_name" example:"fees.pdf"`
	FilePath      string         `json:"filePath" db:"file_path"`
	FileSize      int64          `json:"fileSize" db:"file_size"`
	MimeType      string         `json:"mimeType" db:"mime_type"`
	Status        DocumentStatus `json:"status" db:"status"`
	UploadedAt    time.Time      `json:"uploadedAt" db:"uploaded_at"`
}
