package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/service"
)

// echoEngine returns the uploaded bytes as recognized text and fails on
// files containing "broken".
type echoEngine struct{}

func (echoEngine) Name() string { return "echo" }

func (echoEngine) ExtractText(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	if strings.Contains(string(data), "broken") {
		return "", errors.New("engine crashed")
	}
	return string(data), nil
}

func setupRouter(t *testing.T, failFast bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewReportService(
		echoEngine{},
		service.NewPDFProcessor(),
		service.NewImageStore(t.TempDir()),
		service.NewBatchStore(time.Hour, 10),
		service.NewReportExporter(),
		service.ReportOptions{Workers: 2, Timeout: time.Second, FailFast: failFast},
	)
	h := NewReportHandler(svc, 1024)

	router := gin.New()
	router.GET("/health", h.Health)
	reports := router.Group("/api/v1/reports")
	reports.POST("/recognize", h.Recognize)
	reports.GET("/:batchId", h.GetBatch)
	reports.GET("/:batchId/export", h.Export)
	reports.POST("/:batchId/export", h.Export)
	return router
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/recognize", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func recognize(t *testing.T, router *gin.Engine, files ...formFile) (*httptest.ResponseRecorder, dto.RecognizeResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, files...))

	var resp dto.RecognizeResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"Revenue Report OCR"}`, w.Body.String())
}

func TestRecognize(t *testing.T) {
	router := setupRouter(t, false)

	w, resp := recognize(t, router,
		formFile{"images", "a.png", "Ngày 12.05.2024\nGRAB 120.000đ"},
		formFile{"images[]", "b.jpg", "MOMO 30,000"},
	)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, resp.BatchID)
	assert.NotEmpty(t, resp.ProcessedAt)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, dto.Record{Ngay: "12.05.2024", GRAB: "120.000"}, resp.Records[0])
	assert.Equal(t, dto.Record{MOMO: "30,000"}, resp.Records[1])
	assert.Empty(t, resp.Failures)
}

func TestRecognizeValidation(t *testing.T) {
	router := setupRouter(t, false)

	tests := []struct {
		name  string
		files []formFile
	}{
		{"no files", nil},
		{"wrong field", []formFile{{"file", "a.png", "x"}}},
		{"unsupported type", []formFile{{"images", "notes.txt", "x"}}},
		{"too large", []formFile{{"images", "big.png", strings.Repeat("x", 2048)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := recognize(t, router, tt.files...)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeError(t, w).Error)
		})
	}
}

func TestRecognizeNotMultipart(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/recognize", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecognizeContinuePolicy(t *testing.T) {
	router := setupRouter(t, false)

	w, resp := recognize(t, router,
		formFile{"images", "a.png", "Be 1.000"},
		formFile{"images", "b.png", "broken"},
	)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, resp.Records, 2)
	assert.True(t, resp.Records[1].IsEmpty())
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, "b.png", resp.Failures[0].Filename)
}

func TestRecognizeFailFastPolicy(t *testing.T) {
	router := setupRouter(t, true)

	w, _ := recognize(t, router,
		formFile{"images", "a.png", "Be 1.000"},
		formFile{"images", "b.png", "broken"},
	)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "RECOGNITION_FAILED", resp.Error)
	assert.Contains(t, resp.Message, "b.png")
}

func TestGetBatch(t *testing.T) {
	router := setupRouter(t, false)
	_, created := recognize(t, router, formFile{"images", "a.png", "Ca 500.000đ"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+created.BatchID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var rs dto.ResultSet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rs))
	assert.Equal(t, created.BatchID, rs.ID)
	assert.Equal(t, "500.000", rs.Records[0].Ca)
}

func TestGetBatchNotFound(t *testing.T) {
	router := setupRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/unknown", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	router := setupRouter(t, false)
	_, created := recognize(t, router,
		formFile{"images", "a.png", "Ngày 1.1.2024 NOW 1 Be 2 GRAB 3 MOMO 4 Ca 5"},
	)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(method, "/api/v1/reports/"+created.BatchID+"/export", nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, service.ReportContentType, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), "BaoCao.xlsx")

			f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
			require.NoError(t, err)
			defer f.Close()

			rows, err := f.GetRows(service.ReportSheetName)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, []string{"1.1.2024", "1", "2", "3", "4", "5"}, rows[1])
		})
	}
}

func TestExportNotFound(t *testing.T) {
	router := setupRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/unknown/export", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Không có dữ liệu để xuất.", resp.Message)
}
