package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vovansuong/bao-cao-doanh-thu/dto"
	"github.com/vovansuong/bao-cao-doanh-thu/utils/ledger"
)

const (
	ReportSheetName   = "BaoCao"
	ReportFilename    = "BaoCao.xlsx"
	ReportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportExporter renders records as a single-sheet workbook.
type ReportExporter struct {
	sheetName string
}

func NewReportExporter() *ReportExporter {
	return &ReportExporter{sheetName: ReportSheetName}
}

// Export writes the schema header in row 1 and one row per record, in input
// order. Cells are written as text so separators survive untouched. An empty
// slice produces a header-only sheet.
func (e *ReportExporter) Export(records []dto.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), e.sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeRow(f, 1, ledger.Headers()); err != nil {
		return nil, err
	}

	for i, record := range records {
		if err := e.writeRow(f, i+2, ledger.Row(record)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *ReportExporter) writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}

	if err := f.SetSheetRow(e.sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
