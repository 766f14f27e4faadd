package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
	"github.com/vovansuong/bao-cao-doanh-thu/service"
)

const (
	ServiceName = "Revenue Report OCR"

	msgNoData = "Không có dữ liệu để xuất."
)

type ReportHandler struct {
	reportService *service.ReportService
	maxFileSize   int64
}

func NewReportHandler(reportService *service.ReportService, maxFileSize int64) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		maxFileSize:   maxFileSize,
	}
}

// Health handles GET /health
func (h *ReportHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Service: ServiceName,
	})
}

// Recognize handles the POST /reports/recognize endpoint
func (h *ReportHandler) Recognize(c *gin.Context) {
	log := logger.WithContext(c.Request.Context())

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to parse multipart form", err)
		return
	}

	// browsers send repeated fields as "images[]"
	var files []*multipart.FileHeader
	files = append(files, form.File["images"]...)
	files = append(files, form.File["images[]"]...)

	request := &dto.RecognizeRequest{Files: files}
	if err := request.Validate(h.maxFileSize); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), err)
		return
	}

	log.Info().Int("files", len(files)).Msg("Received recognize request")

	uploads := make([]service.Upload, 0, len(files))
	for _, f := range files {
		uploads = append(uploads, service.UploadFromFileHeader(f))
	}

	rs, err := h.reportService.Recognize(c.Request.Context(), uploads)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "RECOGNITION_FAILED", "Failed to recognize images", err)
		return
	}

	log.Info().
		Str("batch_id", rs.ID).
		Int("records", len(rs.Records)).
		Int("failures", len(rs.Failures)).
		Msg("Recognize request completed")

	c.JSON(http.StatusOK, dto.NewRecognizeResponse(rs))
}

// GetBatch handles GET /reports/:batchId
func (h *ReportHandler) GetBatch(c *gin.Context) {
	rs, err := h.reportService.Batch(c.Param("batchId"))
	if err != nil {
		h.sendBatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

// Export handles GET and POST /reports/:batchId/export
func (h *ReportHandler) Export(c *gin.Context) {
	batchID := c.Param("batchId")

	data, err := h.reportService.Export(batchID)
	if err != nil {
		h.sendBatchError(c, err)
		return
	}

	logger.WithContext(c.Request.Context()).Info().
		Str("batch_id", batchID).
		Int("bytes", len(data)).
		Msg("Report exported")

	c.Header("Content-Disposition", `attachment; filename="`+service.ReportFilename+`"`)
	c.Data(http.StatusOK, service.ReportContentType, data)
}

func (h *ReportHandler) sendBatchError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrBatchNotFound) {
		h.sendError(c, http.StatusNotFound, "NOT_FOUND", msgNoData, nil)
		return
	}
	h.sendError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to load batch", err)
}

// sendError sends a structured error response
func (h *ReportHandler) sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		logger.WithContext(c.Request.Context()).Error().Err(err).Int("status", statusCode).Msg(message)
		_ = c.Error(err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
