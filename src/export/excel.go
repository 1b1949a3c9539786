package export

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/quantumsuite/marketfetch/src/merge"
	"github.com/quantumsuite/marketfetch/src/models"
)

// WriteWorkbook exports a whole batch to one Excel workbook, one sheet per
// successfully merged instrument. Derivative sheets get the wide call/put
// view alongside the canonical table.
func WriteWorkbook(path string, batch models.BatchResult, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	wroteAny := false
	for _, symbol := range batch.Order {
		outcome := batch.Outcomes[symbol]
		if outcome.Failed() {
			continue
		}

		sheet := sheetName(string(symbol))
		if !wroteAny {
			// Reuse the default sheet for the first instrument.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("WriteWorkbook: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("WriteWorkbook: %w", err)
			}
		}
		wroteAny = true

		if err := writeSheet(f, sheet, outcome.Result, opts); err != nil {
			return fmt.Errorf("WriteWorkbook: sheet %s: %w", sheet, err)
		}
	}

	if !wroteAny {
		return fmt.Errorf("WriteWorkbook: no successful instruments to export")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("WriteWorkbook: failed to save %s: %w", path, err)
	}

	log.Infof("exported workbook %s", path)
	return nil
}

func writeSheet(f *excelize.File, sheet string, result *models.MergeResult, opts Options) error {
	headers := columns(result.HasStrikeKey)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range result.Rows {
		for c, v := range opts.renderRow(row, result.HasStrikeKey) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if result.HasStrikeKey {
		if err := writeCallPutView(f, sheet, result, opts, len(headers)+2); err != nil {
			return err
		}
	}

	return nil
}

// writeCallPutView lays the outer-joined call/put table to the right of the
// canonical one, in the exchanges' familiar report shape.
func writeCallPutView(f *excelize.File, sheet string, result *models.MergeResult, opts Options, startCol int) error {
	headers := []string{"Date", "Strike Price", "Call LTP", "Call OI", "Put LTP", "Put OI"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(startCol+i, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range merge.PivotCallPut(result) {
		cells := []string{
			row.Date.Format("2006-01-02"),
			opts.cell(row.StrikePrice),
			opts.cell(row.CallLTP),
			opts.cell(row.CallOI),
			opts.cell(row.PutLTP),
			opts.cell(row.PutOI),
		}
		for c, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(startCol+c, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	return nil
}

// sheetName trims a symbol to Excel's 31-character sheet name limit.
func sheetName(symbol string) string {
	if len(symbol) > 31 {
		return symbol[:31]
	}
	return symbol
}
