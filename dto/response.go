package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// RecognizeResponse is returned after a batch has been recognized. BatchID
// is the token for the export step.
type RecognizeResponse struct {
	BatchID     string        `json:"batch_id"`
	Records     []Record      `json:"records"`
	Failures    []FileFailure `json:"failures,omitempty"`
	ProcessedAt string        `json:"processed_at"`
}

// NewRecognizeResponse builds the response for a stored result set.
func NewRecognizeResponse(rs *ResultSet) RecognizeResponse {
	return RecognizeResponse{
		BatchID:     rs.ID,
		Records:     rs.Records,
		Failures:    rs.Failures,
		ProcessedAt: rs.CreatedAt.Format(time.RFC3339),
	}
}

// HealthResponse is served by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
