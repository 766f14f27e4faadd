package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
	"github.com/vovansuong/bao-cao-doanh-thu/utils/ledger"
)

// OCREngine recognizes the text of one image file.
type OCREngine interface {
	Name() string
	ExtractText(ctx context.Context, imagePath string) (string, error)
}

type ReportOptions struct {
	// Workers bounds how many images are OCR'd at once.
	Workers int
	// Timeout applies to each image separately; 0 disables it.
	Timeout time.Duration
	// FailFast aborts the batch on the first failed image. Otherwise the
	// image gets an empty record and a FileFailure entry.
	FailFast bool
	// KeepUploads leaves saved uploads on disk after recognition.
	KeepUploads bool
}

type ReportService struct {
	engine       OCREngine
	pdfProcessor PDFProcessor
	store        *ImageStore
	batches      *BatchStore
	exporter     *ReportExporter
	builder      *ledger.Builder
	opts         ReportOptions
	log          zerolog.Logger
}

func NewReportService(
	engine OCREngine,
	pdfProcessor PDFProcessor,
	store *ImageStore,
	batches *BatchStore,
	exporter *ReportExporter,
	opts ReportOptions,
) *ReportService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &ReportService{
		engine:       engine,
		pdfProcessor: pdfProcessor,
		store:        store,
		batches:      batches,
		exporter:     exporter,
		builder:      ledger.DefaultBuilder(),
		opts:         opts,
		log:          logger.WithComponent("report-service"),
	}
}

type uploadJob struct {
	index  int
	upload Upload
}

type uploadOutcome struct {
	record  dto.Record
	err     error
	skipped bool
}

// Recognize OCRs every upload and stores the resulting batch. Records keep
// the upload order whatever order the workers finish in. Zero-byte uploads
// are skipped.
func (s *ReportService) Recognize(ctx context.Context, uploads []Upload) (*dto.ResultSet, error) {
	outcomes := make([]uploadOutcome, len(uploads))
	jobs := make(chan uploadJob, len(uploads))

	for i, u := range uploads {
		if u.Size == 0 {
			s.log.Warn().Str("file", u.Filename).Msg("Skipping empty upload")
			outcomes[i].skipped = true
			continue
		}
		jobs <- uploadJob{index: i, upload: u}
	}
	close(jobs)

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		failOnce sync.Once
		firstErr error
	)

	workers := min(s.opts.Workers, max(len(uploads), 1))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				if err := batchCtx.Err(); err != nil {
					outcomes[job.index] = uploadOutcome{err: err}
					continue
				}

				s.log.Debug().
					Int("worker", workerID).
					Str("file", job.upload.Filename).
					Int("index", job.index).
					Msg("Worker processing upload")

				record, err := s.processUpload(batchCtx, job.upload)
				outcomes[job.index] = uploadOutcome{record: record, err: err}

				if err != nil {
					s.log.Warn().Err(err).Str("file", job.upload.Filename).Msg("Upload processing failed")
					if s.opts.FailFast {
						failOnce.Do(func() {
							firstErr = fmt.Errorf("failed to process file %s: %w", job.upload.Filename, err)
							cancel()
						})
					}
				}
			}
		}(w)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rs := &dto.ResultSet{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Records:   make([]dto.Record, 0, len(uploads)),
	}
	for i, o := range outcomes {
		if o.skipped {
			continue
		}
		if o.err != nil {
			rs.Failures = append(rs.Failures, dto.FileFailure{
				Index:    len(rs.Records),
				Filename: uploads[i].Filename,
				Error:    o.err.Error(),
			})
		}
		rs.Records = append(rs.Records, o.record)
	}

	if err := s.batches.Put(rs); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("batch_id", rs.ID).
		Int("records", len(rs.Records)).
		Int("failures", len(rs.Failures)).
		Int("stored_batches", s.batches.Count()).
		Msg("Batch recognized")

	return rs, nil
}

func (s *ReportService) processUpload(ctx context.Context, u Upload) (dto.Record, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	path, err := s.store.Save(u)
	if err != nil {
		return dto.Record{}, err
	}
	if !s.opts.KeepUploads {
		defer s.store.Remove(path)
	}

	var text string
	if u.IsPDF() {
		text, err = s.recognizePDF(ctx, path)
	} else {
		text, err = s.engine.ExtractText(ctx, path)
	}
	if err != nil {
		return dto.Record{}, err
	}

	s.log.Debug().Str("file", u.Filename).Str("engine", s.engine.Name()).Str("text", text).Msg("Extracted text")

	record := s.builder.Build(text)
	if record.IsEmpty() {
		s.log.Warn().Str("file", u.Filename).Msg("No ledger fields found")
	} else if missing := ledger.MissingFields(record); len(missing) > 0 {
		s.log.Debug().Str("file", u.Filename).Strs("missing", missing).Msg("Some ledger fields not found")
	}
	return record, nil
}

// recognizePDF prefers the embedded text layer and falls back to OCR of the
// page images for scanned documents.
func (s *ReportService) recognizePDF(ctx context.Context, path string) (string, error) {
	text, err := s.pdfProcessor.ExtractText(path)
	if err != nil {
		s.log.Warn().Err(err).Str("file", path).Msg("PDF text extraction failed")
	}
	if len(strings.TrimSpace(text)) >= minPDFTextLength {
		return text, nil
	}

	pages, err := s.pdfProcessor.ExtractPageImages(path, s.store.Dir())
	if err != nil {
		return "", fmt.Errorf("failed to extract images from PDF: %w", err)
	}
	defer removeAll(pages)

	if len(pages) == 0 {
		return "", fmt.Errorf("no images found in PDF")
	}

	var combined strings.Builder
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		pageText, err := s.engine.ExtractText(ctx, page)
		if err != nil {
			return "", fmt.Errorf("OCR failed for page %d: %w", i+1, err)
		}

		combined.WriteString(pageText)
		combined.WriteString("\n")
	}

	return combined.String(), nil
}

// Batch returns a stored result set.
func (s *ReportService) Batch(batchID string) (*dto.ResultSet, error) {
	return s.batches.Get(batchID)
}

// Export renders a stored batch as a spreadsheet. The batch stays in the store.
func (s *ReportService) Export(batchID string) ([]byte, error) {
	rs, err := s.batches.Get(batchID)
	if err != nil {
		return nil, err
	}

	data, err := s.exporter.Export(rs.Records)
	if err != nil {
		return nil, fmt.Errorf("failed to export batch %s: %w", batchID, err)
	}
	return data, nil
}
