package dto

import (
	"time"

	"github.com/bobasi/bursary/internal/app/models"
)

// UploadDocumentRequest is the form part of a document upload
type UploadDocumentRequest struct {
	DocumentType string `form:"documentType" binding:"required" example:"fee_structure"`
}

// DocumentResponse is the API view of an uploaded document
type DocumentResponse struct {
	ID            int64                 `json:"id"`
	ApplicationID int64                 `json:"applicationId"`
	DocumentType  string                `json:"documentType"`
	DocumentName  string                `json:"documentName"`
	FilePath      string                `json:"filePath"`
	FileSize      int64                 `json:"fileSize"`
	MimeType      string                `json:"mimeType"`
	Status        models.DocumentStatus `json:"status"`
	UploadedAt    time.Time             `json:"uploadedAt"`
}

// NewDocumentResponses maps a slice of documents
func NewDocumentResponses(docs []*models.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentResponse{
			ID:            d.ID,
			ApplicationID: d.ApplicationID,
			DocumentType:  d.DocumentType,
			DocumentName:  d.DocumentName,
			FilePath:      d.FilePath,
			FileSize:      d.FileSize,
			MimeType:      d.MimeType,
			Status:        d.Status,
			UploadedAt:    d.UploadedAt,
		})
	}
	return out
}
