package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bobasi/bursary/internal/app/auth"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/app/repositories"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/bobasi/bursary/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// DocumentUpload is one supporting file sent by a student
type DocumentUpload struct {
	DocumentType string
	Filename     string
	Content      io.Reader
}

// DocumentService stores supporting documents and their metadata
type DocumentService struct {
	repos    *repositories.Repositories
	storage  filestorage.FileStorage
	settings BursarySettings
	now      Clock
	logger   zerolog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(repos *repositories.Repositories, storage filestorage.FileStorage, settings BursarySettings, clock Clock, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		repos:    repos,
		storage:  storage,
		settings: settings,
		now:      clock,
		logger:   logger.With().Str("service", "documents").Logger(),
	}
}

// Upload attaches a document to one of the acting student's applications. The
// stored file is removed again when its metadata cannot be saved.
func (s *DocumentService) Upload(ctx context.Context, actor auth.Actor, applicationID int64, upload DocumentUpload) (*models.Document, error) {
	if err := auth.Authorize(actor, auth.OpUploadDocument); err != nil {
		return nil, err
	}

	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "access denied")
	}

	docType := strings.TrimSpace(upload.DocumentType)
	if docType == "" {
		return nil, apperrors.NewInvalidInputError("document type is required")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(upload.Filename)), ".")
	if !slices.Contains(s.settings.AllowedExtensions, ext) {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("file type not allowed, use one of: %s",
			strings.Join(s.settings.AllowedExtensions, ", ")))
	}

	info, err := s.storage.SaveFile(ctx, filepath.Base(upload.Filename), upload.Content, fmt.Sprintf("applications/%d", app.ID))
	if err != nil {
		if errors.Is(err, filestorage.ErrFileTooLarge) {
			return nil, apperrors.NewInvalidInputError(err.Error())
		}
		return nil, err
	}

	doc := &models.Document{
		StudentID:     student.ID,
		ApplicationID: app.ID,
		DocumentType:  docType,
		DocumentName:  info.Filename,
		FilePath:      info.Path,
		FileSize:      info.FileSize,
		MimeType:      info.MimeType,
		Status:        models.DocumentPending,
		UploadedAt:    s.now(),
	}
	if err := s.repos.Documents.Create(ctx, doc); err != nil {
		if delErr := s.storage.DeleteFile(info.Path); delErr != nil {
			s.logger.Error().Err(delErr).Str("path", info.Path).Msg("Could not remove orphaned upload")
		}
		return nil, err
	}

	s.logger.Info().Int64("applicationID", app.ID).Str("type", docType).Int64("size", doc.FileSize).Msg("Document uploaded")
	return doc, nil
}

// List returns the documents of an application visible to the actor
func (s *DocumentService) List(ctx context.Context, actor auth.Actor, applicationID int64) ([]*models.Document, error) {
	if actor.IsStaff() {
		if err := auth.Authorize(actor, auth.OpViewAnyApplication); err != nil {
			return nil, err
		}
		if _, err := s.repos.Applications.GetByID(ctx, applicationID); err != nil {
			return nil, err
		}
		return s.repos.Documents.ListByApplication(ctx, applicationID)
	}

	if err := auth.Authorize(actor, auth.OpUploadDocument); err != nil {
		return nil, err
	}
	student, err := s.repos.Students.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	app, err := s.repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		return nil, apperrors.NewCustomError(apperrors.ErrUnauthorized, "access denied")
	}
	return s.repos.Documents.ListByApplication(ctx, applicationID)
}
