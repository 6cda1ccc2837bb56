package services

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/bobasi/bursary/internal/app/models"
	"github.com/bobasi/bursary/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfUpload(name string) DocumentUpload {
	return DocumentUpload{
		DocumentType: "fee_structure",
		Filename:     name,
		Content:      bytes.NewReader([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")),
	}
}

func TestDocumentService_UploadAndList(t *testing.T) {
	env := newTestEnv(t)
	app := env.submit(t, "15000")

	doc, err := env.svc.Documents.Upload(env.ctx, env.student, app.ID, pdfUpload("Fees 2025.PDF"))
	require.NoError(t, err)
	assert.Equal(t, models.DocumentPending, doc.Status)
	assert.Equal(t, "fee_structure", doc.DocumentType)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Equal(t, fixedNow, doc.UploadedAt)
	assert.FileExists(t, filepath.Join(env.storageDir, doc.FilePath))

	docs, err := env.svc.Documents.List(env.ctx, env.committee, app.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, doc.ID, docs[0].ID)

	docs, err = env.svc.Documents.List(env.ctx, env.student, app.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	other, _ := env.createStudent(t, "John Nyakundi", "john@example.com")
	_, err = env.svc.Documents.List(env.ctx, other, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestDocumentService_UploadValidation(t *testing.T) {
	env := newTestEnv(t)
	app := env.submit(t, "15000")

	_, err := env.svc.Documents.Upload(env.ctx, env.student, app.ID, pdfUpload("payload.exe"))
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.True(t, strings.HasPrefix(err.Error(), "file type not allowed"))

	blank := pdfUpload("fees.pdf")
	blank.DocumentType = " "
	_, err = env.svc.Documents.Upload(env.ctx, env.student, app.ID, blank)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.svc.Documents.Upload(env.ctx, env.student, 9999, pdfUpload("fees.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	other, _ := env.createStudent(t, "John Nyakundi", "john@example.com")
	_, err = env.svc.Documents.Upload(env.ctx, other, app.ID, pdfUpload("fees.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = env.svc.Documents.Upload(env.ctx, env.admin, app.ID, pdfUpload("fees.pdf"))
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	big := pdfUpload("big.pdf")
	big.Content = bytes.NewReader(bytes.Repeat([]byte("a"), (1<<20)+1))
	_, err = env.svc.Documents.Upload(env.ctx, env.student, app.ID, big)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDocumentService_RemovesFileWhenMetadataFails(t *testing.T) {
	env := newTestEnv(t)
	app := env.submit(t, "15000")
	env.store.SetFault("Documents.Create", errors.New("boom"))

	_, err := env.svc.Documents.Upload(env.ctx, env.student, app.ID, pdfUpload("fees.pdf"))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(env.storageDir, "applications", strconv.FormatInt(app.ID, 10)))
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}
}
