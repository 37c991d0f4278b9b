package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/schoolportal/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory where files are stored
	baseURL  string // URL prefix the directory is served under, e.g. "/uploads"

	createFile func(path string) (io.WriteCloser, error)
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		createFile: func(path string) (io.WriteCloser, error) {
			return os.Create(path)
		},
	}, nil
}

// BasePath returns the storage root directory.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveFile copies the upload to basePath under a UUID name keeping the original extension.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(ls.basePath, uniqueFilename)

	dst, err := ls.createFile(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	// A close error may leave a truncated recording; treat it like a failed copy.
	size, err := writeAndClose(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	stored := &StoredFile{
		Filename:     uniqueFilename,
		OriginalName: fileHeader.Filename,
		URL:          ls.baseURL + "/" + uniqueFilename,
		Path:         dstPath,
		Size:         size,
		ContentType:  fileHeader.Header.Get("Content-Type"),
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", uniqueFilename).Int64("size", size).Msg("File saved successfully")
	return stored, nil
}

// writeAndClose copies src into dst and always closes dst, reporting the first error.
func writeAndClose(dst io.WriteCloser, src io.Reader) (int64, error) {
	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	return size, err
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filename string) error {
	physicalPath := ls.FullPath(filename)
	if physicalPath == "" {
		return fmt.Errorf("invalid file name: %q", filename)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// FullPath returns the filesystem path for a stored file name or URL.
// Only the base name is used so callers cannot escape basePath.
func (ls *LocalStorage) FullPath(filename string) string {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == "/" || name == ".." {
		return ""
	}
	return filepath.Join(ls.basePath, name)
}
