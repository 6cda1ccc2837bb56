package filestorage

import (
	"context"
	"errors"
	"io"
)

// ErrFileTooLarge is returned when an upload exceeds the configured limit
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// FileInfo represents information about a stored file
type FileInfo struct {
	Path     string // Path relative to the storage root
	URL      string // Public URL when a base URL is configured
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // Sniffed MIME type of the content
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores content under subPath with a collision-free name
	SaveFile(ctx context.Context, filename string, content io.Reader, subPath string) (*FileInfo, error)

	// DeleteFile removes a file by the path returned from SaveFile
	DeleteFile(filePath string) error
}
