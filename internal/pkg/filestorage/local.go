package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/admission/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	maxBytes int64
}

// NewLocalStorage creates a new LocalStorage rooted at basePath.
// maxBytes caps a single file; zero means no cap.
func NewLocalStorage(basePath string, maxBytes int64) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", basePath, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		logger.Error().Err(err).Str("path", abs).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", abs, err)
	}
	logger.Info().Str("path", abs).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: abs, maxBytes: maxBytes}, nil
}

// resolve maps a relative path to an absolute one inside basePath
func (ls *LocalStorage) resolve(relPath string) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) {
		return "", ErrInvalidPath
	}
	full := filepath.Join(ls.basePath, filepath.Clean(relPath))
	if full == ls.basePath || !strings.HasPrefix(full, ls.basePath+string(os.PathSeparator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}

// Save stores content under dir with a uuid file name
func (ls *LocalStorage) Save(content io.Reader, dir, ext string) (string, int64, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := uuid.New().String()
	if ext != "" {
		name += "." + ext
	}
	relPath := filepath.ToSlash(filepath.Join(dir, name))

	dstPath, err := ls.resolve(relPath)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o750); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", 0, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", 0, fmt.Errorf("failed to create destination file: %w", err)
	}

	src := content
	if ls.maxBytes > 0 {
		src = io.LimitReader(content, ls.maxBytes+1)
	}
	written, err := io.Copy(dst, src)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && ls.maxBytes > 0 && written > ls.maxBytes {
		err = fmt.Errorf("file exceeds %d bytes", ls.maxBytes)
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to save uploaded file content")
		_ = os.Remove(dstPath)
		return "", 0, fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("path", relPath).Int64("size", written).Msg("File saved successfully")
	return relPath, written, nil
}

// Open opens a stored file
func (ls *LocalStorage) Open(relPath string) (*os.File, error) {
	full, err := ls.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a stored file. Deleting a missing file succeeds.
func (ls *LocalStorage) Delete(relPath string) error {
	full, err := ls.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", relPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", relPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", relPath).Msg("File deleted successfully")
	return nil
}

// DeleteDir removes a directory tree under the storage root
func (ls *LocalStorage) DeleteDir(relDir string) error {
	full, err := ls.resolve(relDir)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(full); err != nil {
		logger.Error().Err(err).Str("path", relDir).Msg("Failed to delete directory")
		return fmt.Errorf("failed to delete directory: %w", err)
	}
	return nil
}

// StudentDir is the directory holding one application record's documents
func StudentDir(studentID int64) string {
	return fmt.Sprintf("documents/%d", studentID)
}
