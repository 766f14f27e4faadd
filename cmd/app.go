package cmd

import (
	"fmt"
	"strings"

	"github.com/vovansuong/bao-cao-doanh-thu/client"
	"github.com/vovansuong/bao-cao-doanh-thu/config"
	"github.com/vovansuong/bao-cao-doanh-thu/service"
)

// newEngine builds the OCR engine selected by OCR_ENGINE. The returned func
// releases the engine.
func newEngine(cfg *config.Config) (service.OCREngine, func(), error) {
	switch cfg.OCREngine {
	case config.EngineTesseract:
		// "vie+eng" selects several traineddata files
		languages := strings.Split(cfg.OCRLanguage, "+")
		tc := client.NewTesseractClient(cfg.TesseractDataPath, languages...)
		tc.SetMaxConcurrent(cfg.OCRWorkers)
		return tc, tc.Close, nil
	case config.EnginePaddle:
		return client.NewPaddleClient(cfg.PaddleAPIURL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported OCR engine %q", cfg.OCREngine)
	}
}

func newReportService(cfg *config.Config, engine service.OCREngine) *service.ReportService {
	return service.NewReportService(
		engine,
		service.NewPDFProcessor(),
		service.NewImageStore(cfg.UploadDir),
		service.NewBatchStore(cfg.BatchTTL, cfg.MaxBatches),
		service.NewReportExporter(),
		service.ReportOptions{
			Workers:     cfg.OCRWorkers,
			Timeout:     cfg.OCRTimeout,
			FailFast:    cfg.FailurePolicy == config.PolicyFailFast,
			KeepUploads: cfg.KeepUploads,
		},
	)
}
