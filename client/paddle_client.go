package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

// PaddleClient sends images to a PaddleOCR serving endpoint
// (hub serving "ocr_system") and joins the recognized lines.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewPaddleClient creates a client for the PaddleOCR REST API at apiURL.
func NewPaddleClient(apiURL string) *PaddleClient {
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{},
		log:        logger.WithComponent("paddleocr"),
	}
}

// Name identifies the engine in logs.
func (p *PaddleClient) Name() string { return "paddle" }

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Msg     string `json:"msg"`
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// ExtractText recognizes the image at imagePath. The request is bound to ctx,
// so a deadline aborts the HTTP call.
func (p *PaddleClient) ExtractText(ctx context.Context, imagePath string) (string, error) {
	const op = "ExtractText"

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", NewOCRError(op, err, imagePath)
	}
	if len(data) == 0 {
		return "", NewOCRError(op, ErrEmptyImage, imagePath)
	}

	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", NewOCRError(op, err, "failed to marshal request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", NewOCRError(op, err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", NewOCRError(op, ErrOCRTimeout, imagePath)
		}
		return "", NewOCRError(op, err, "failed to call PaddleOCR API")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", NewOCRError(op, ErrOCRFailed,
			fmt.Sprintf("PaddleOCR API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", NewOCRError(op, err, "failed to decode PaddleOCR response")
	}

	var textBuilder strings.Builder
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			textBuilder.WriteString(line.Text)
			textBuilder.WriteString("\n")
		}
	}

	text := textBuilder.String()
	p.log.Debug().Str("file", imagePath).Int("chars", len(text)).Msg("PaddleOCR recognized image")
	return text, nil
}
