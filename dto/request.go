package dto

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

var (
	ErrNoFiles         = errors.New("at least one image is required")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
)

// AllowedExtensions lists the upload types the recognizer accepts.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".pdf"}

// RecognizeRequest represents an uploaded batch of ledger sheets
type RecognizeRequest struct {
	Files []*multipart.FileHeader `form:"images"`
}

// Validate checks every file's type and size. maxFileSize <= 0 disables the
// size check.
func (r *RecognizeRequest) Validate(maxFileSize int64) error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	for _, f := range r.Files {
		if !IsAllowedFile(f.Filename) {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, f.Filename)
		}
		if maxFileSize > 0 && f.Size > maxFileSize {
			return fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, f.Filename, f.Size)
		}
	}
	return nil
}

// IsAllowedFile reports whether filename has an accepted extension.
func IsAllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
