package filestorage

import (
	"mime/multipart"
)

// StoredFile describes a file persisted by a FileStorage.
type StoredFile struct {
	Filename     string // generated name on disk
	OriginalName string // name supplied by the client
	URL          string // public path or URL the file is served under
	Path         string // absolute or relative filesystem path
	Size         int64
	ContentType  string
}

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFile stores an uploaded file under a generated name.
	SaveFile(fileHeader *multipart.FileHeader) (*StoredFile, error)

	// DeleteFile removes a stored file by its generated name. Missing files are not an error.
	DeleteFile(filename string) error

	// FullPath returns the filesystem path of a stored file.
	FullPath(filename string) string
}
