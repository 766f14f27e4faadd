package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/vovansuong/bao-cao-doanh-thu/config"
	"github.com/vovansuong/bao-cao-doanh-thu/handler"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
	"github.com/vovansuong/bao-cao-doanh-thu/middleware"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API on SERVER_PORT.

Endpoints:
  GET  /health
  POST /api/v1/reports/recognize          multipart field "images"
  GET  /api/v1/reports/:batchId
  GET  /api/v1/reports/:batchId/export    downloads BaoCao.xlsx`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")
	cfg := appConfig

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.ServerPort = port
	}

	engine, closeEngine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	reportHandler := handler.NewReportHandler(newReportService(cfg, engine), cfg.MaxFileSize)
	router := newRouter(cfg, reportHandler)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.ServerPort).
			Str("engine", engine.Name()).
			Int("workers", cfg.OCRWorkers).
			Str("failure_policy", cfg.FailurePolicy).
			Msg("Starting Revenue Report OCR service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

func newRouter(cfg *config.Config, h *handler.ReportHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())

	router.MaxMultipartMemory = cfg.MaxMultipartMemory

	router.GET("/health", h.Health)

	api := router.Group("/api/v1")
	{
		reports := api.Group("/reports")
		{
			reports.POST("/recognize", h.Recognize)
			reports.GET("/:batchId", h.GetBatch)
			reports.GET("/:batchId/export", h.Export)
			reports.POST("/:batchId/export", h.Export)
		}
	}

	return router
}
