package client

import (
	"errors"
	"fmt"
)

var (
	// ErrOCRFailed is returned when the engine could not recognize the image.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrOCRTimeout is returned when recognition did not finish before the
	// caller's deadline.
	ErrOCRTimeout = errors.New("OCR processing timed out")

	// ErrEmptyImage is returned for zero-byte inputs.
	ErrEmptyImage = errors.New("image is empty")
)

// OCRError wraps errors with the operation and input that failed.
type OCRError struct {
	Op      string
	Err     error
	Details string
}

func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

func (e *OCRError) Unwrap() error {
	return e.Err
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return NewOCRError(op, err, details)
}
