package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/db"
	"github.com/bobasi/bursary/internal/pkg/dberrors"
	"github.com/bobasi/bursary/internal/pkg/logger"
)

// PgDocumentRepository handles document metadata database operations
type PgDocumentRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new PgDocumentRepository
func NewDocumentRepository(db db.DBTX) *PgDocumentRepository {
	return &PgDocumentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts document metadata
func (r *PgDocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	sql, args, err := r.sb.Insert("documents").
		Columns("student_id", "application_id", "document_type", "document_name", "file_path",
			"file_size", "mime_type", "status", "uploaded_at").
		Values(doc.StudentID, doc.ApplicationID, doc.DocumentType, doc.DocumentName, doc.FilePath,
			doc.FileSize, doc.MimeType, doc.Status, doc.UploadedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create document query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&doc.ID); err != nil {
		logger.Error().Err(err).Int64("applicationID", doc.ApplicationID).Msg("Error creating document")
		return dberrors.Classify(err, "could not save document")
	}
	return nil
}

// ListByApplication returns the documents attached to an application
func (r *PgDocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*models.Document, error) {
	sql, args, err := r.sb.Select("id", "student_id", "application_id", "document_type", "document_name",
		"file_path", "file_size", "mime_type", "status", "uploaded_at").
		From("documents").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("uploaded_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error querying documents")
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	docs := []*models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.StudentID, &d.ApplicationID, &d.DocumentType, &d.DocumentName,
			&d.FilePath, &d.FileSize, &d.MimeType, &d.Status, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
