package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload is one file submitted in a batch, independent of where it came from
// (multipart form or local folder).
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadFromFileHeader adapts a multipart file to an Upload.
func UploadFromFileHeader(fh *multipart.FileHeader) Upload {
	return Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// UploadFromPath adapts a local file to an Upload.
func UploadFromPath(path string) (Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Upload{}, err
	}
	return Upload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// IsPDF reports whether the upload should go through PDF extraction.
func (u Upload) IsPDF() bool {
	return strings.HasSuffix(strings.ToLower(u.Filename), ".pdf")
}

// ImageStore persists uploads under a directory with collision-free names.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

// Dir returns the upload directory.
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save copies the upload to "<dir>/<uuid>_<basename>" and returns the path.
func (s *ImageStore) Save(u Upload) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", u.Filename, err)
	}
	defer src.Close()

	filePath := filepath.Join(s.dir, uuid.New().String()+"_"+filepath.Base(u.Filename))
	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file %s: %w", u.Filename, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file %s: %w", u.Filename, err)
	}

	return filePath, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *ImageStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
