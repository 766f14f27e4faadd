package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovansuong/bao-cao-doanh-thu/config"
	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
	"github.com/vovansuong/bao-cao-doanh-thu/service"
	"github.com/vovansuong/bao-cao-doanh-thu/utils/ledger"
)

var extractCmd = &cobra.Command{
	Use:   "extract [folder]",
	Short: "OCR every sheet in a folder and write the spreadsheet",
	Long: `Process all images (.png, .jpg, .jpeg) and PDFs in a folder in file name
order, extract one record per file and write them to an xlsx workbook.

Files that fail OCR get an empty row unless BATCH_FAILURE_POLICY=fail_fast.`,
	Example: `  # Write BaoCao.xlsx in the current directory
  bao-cao extract ./anh-chup

  # Custom output path and more workers
  OCR_WORKERS=8 bao-cao extract ./anh-chup -o thang5.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", service.ReportFilename, "Output xlsx path")
	extractCmd.Flags().Bool("fail-fast", false, "Abort on the first file that fails (overrides BATCH_FAILURE_POLICY)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")
	cfg := *appConfig

	outputPath, _ := cmd.Flags().GetString("output")
	if failFast, _ := cmd.Flags().GetBool("fail-fast"); failFast {
		cfg.FailurePolicy = config.PolicyFailFast
	}

	// the CLI reads files in place, copies are temporary
	cfg.KeepUploads = false
	tmpDir, err := os.MkdirTemp("", "bao-cao-*")
	if err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	cfg.UploadDir = tmpDir

	uploads, err := collectUploads(args[0])
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return fmt.Errorf("no images found in %s", args[0])
	}

	log.Info().
		Str("folder", args[0]).
		Int("files", len(uploads)).
		Str("output", outputPath).
		Msg("Starting extraction")

	engine, closeEngine, err := newEngine(&cfg)
	if err != nil {
		return err
	}
	defer closeEngine()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := newReportService(&cfg, engine)
	rs, err := svc.Recognize(ctx, uploads)
	if err != nil {
		return err
	}

	data, err := svc.Export(rs.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	printSummary(cmd.OutOrStdout(), uploads, rs)
	fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %d rows to %s\n", len(rs.Records), outputPath)

	log.Info().
		Str("output", outputPath).
		Int("records", len(rs.Records)).
		Int("failures", len(rs.Failures)).
		Msg("Extraction completed")
	return nil
}

// collectUploads lists the supported files directly inside folder, sorted by
// name.
func collectUploads(folder string) ([]service.Upload, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !dto.IsAllowedFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	uploads := make([]service.Upload, 0, len(names))
	for _, name := range names {
		u, err := service.UploadFromPath(filepath.Join(folder, name))
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// printSummary writes one line per upload. Empty uploads are skipped by the
// service and have no record in rs.
func printSummary(w io.Writer, uploads []service.Upload, rs *dto.ResultSet) {
	failed := make(map[int]string, len(rs.Failures))
	for _, f := range rs.Failures {
		failed[f.Index] = f.Error
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s\tStatus\n", strings.Join(ledger.Headers(), "\t"))

	next := 0
	for _, u := range uploads {
		if u.Size == 0 {
			fmt.Fprintf(tw, "%s\t%s\tskipped (empty)\n", u.Filename, strings.Repeat("\t", len(ledger.Schema)-1))
			continue
		}
		if next >= len(rs.Records) {
			break
		}
		row := next
		record := rs.Records[row]
		next++

		status := "ok"
		if msg, ok := failed[row]; ok {
			status = "error: " + msg
		} else if record.IsEmpty() {
			status = "no fields found"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Filename, strings.Join(ledger.Row(record), "\t"), status)
	}
	tw.Flush()
}
