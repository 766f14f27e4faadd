package client

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

type TesseractClient struct {
	dataPath  string
	languages []string
	log       zerolog.Logger

	// slots bounds live gosseract engines, including ones still running after
	// their caller gave up. nil means unbounded.
	slots chan struct{}

	// recognize runs the blocking OCR call; replaced in tests.
	recognize func(path string) (string, error)
}

// NewTesseractClient creates a client reading traineddata from dataPath.
// Vietnamese ("vie") is used when no language hint is given.
func NewTesseractClient(dataPath string, languages ...string) *TesseractClient {
	if len(languages) == 0 {
		languages = []string{"vie"}
	}
	tc := &TesseractClient{
		dataPath:  dataPath,
		languages: languages,
		log:       logger.WithComponent("tesseract"),
	}
	tc.recognize = tc.extractText
	return tc
}

// Name identifies the engine in logs.
func (tc *TesseractClient) Name() string { return "tesseract" }

// SetMaxConcurrent caps how many recognitions run at once. A recognition
// holds its slot until gosseract returns, even when the caller timed out, so
// abandoned calls keep counting against the limit. n <= 0 removes the cap.
// Call before the first ExtractText.
func (tc *TesseractClient) SetMaxConcurrent(n int) {
	if n <= 0 {
		tc.slots = nil
		return
	}
	tc.slots = make(chan struct{}, n)
}

// ExtractText recognizes the image at imagePath. gosseract cannot be
// interrupted, so when ctx ends first the call returns immediately and the
// recognition goroutine finishes in the background.
func (tc *TesseractClient) ExtractText(ctx context.Context, imagePath string) (string, error) {
	const op = "ExtractText"

	info, err := os.Stat(imagePath)
	if err != nil {
		return "", NewOCRError(op, err, imagePath)
	}
	if info.Size() == 0 {
		return "", NewOCRError(op, ErrEmptyImage, imagePath)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	slots := tc.slots
	if slots != nil {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			tc.log.Warn().Str("file", imagePath).Msg("No free Tesseract slot before deadline")
			return "", tc.contextError(ctx, op, imagePath)
		}
	}

	go func() {
		if slots != nil {
			defer func() { <-slots }()
		}
		text, err := tc.recognize(imagePath)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", tc.contextError(ctx, op, imagePath)
	case r := <-done:
		if r.err != nil {
			return "", WrapOCRError(op, r.err, imagePath)
		}
		tc.log.Debug().Str("file", imagePath).Int("chars", len(r.text)).Msg("Tesseract recognized image")
		return r.text, nil
	}
}

func (tc *TesseractClient) contextError(ctx context.Context, op, imagePath string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewOCRError(op, ErrOCRTimeout, imagePath)
	}
	return NewOCRError(op, ctx.Err(), imagePath)
}

func (tc *TesseractClient) extractText(filePath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}

	if err := client.SetLanguage(tc.languages...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(filePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}

	return text, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.log.Info().Msg("Tesseract client closed")
}
