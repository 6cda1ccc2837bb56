package filestorage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/google/uuid"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The base URL to access the stored files (optional)
	maxBytes int64  // Upload size limit, zero for unlimited
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the required directory path on the server.
// baseURL is optional; if provided, it is prepended to returned file URLs.
func NewLocalStorage(basePath, baseURL string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// SaveFile writes content to subPath under the storage root
func (ls *LocalStorage) SaveFile(ctx context.Context, filename string, content io.Reader, subPath string) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, filepath.FromSlash(subPath))
	}
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	reader := bufio.NewReader(content)
	head, _ := reader.Peek(512)
	mimeType := http.DetectContentType(head)

	var src io.Reader = reader
	if ls.maxBytes > 0 {
		src = io.LimitReader(reader, ls.maxBytes+1)
	}

	written, err := io.Copy(dst, src)
	if err == nil && ls.maxBytes > 0 && written > ls.maxBytes {
		err = ErrFileTooLarge
	}
	if err != nil {
		_ = os.Remove(dstPath)
		if err == ErrFileTooLarge {
			return nil, err
		}
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	relative := path.Join(subPath, uniqueFilename)
	info := &FileInfo{
		Path:     relative,
		Filename: filename,
		FileSize: written,
		MimeType: mimeType,
	}
	if ls.baseURL != "" {
		info.URL = ls.baseURL + "/" + relative
	}

	logger.Info().Str("filename", filename).Str("saved_as", relative).Int64("size", written).Msg("File saved successfully")
	return info, nil
}

// DeleteFile removes a file from the storage filesystem. Missing files are
// not an error.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	physicalPath, err := ls.resolve(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// resolve maps a stored relative path to the filesystem, refusing paths that
// would leave the storage root.
func (ls *LocalStorage) resolve(filePath string) (string, error) {
	cleaned := path.Clean("/" + filepath.ToSlash(filePath))
	if cleaned == "/" {
		return "", fmt.Errorf("invalid file path: %s", filePath)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(strings.TrimPrefix(cleaned, "/"))), nil
}
