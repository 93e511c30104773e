// =============================================================================
// Text Info Extractor - XLSX Writer
// =============================================================================
//
// This module renders an ordered list of records as an XLSX workbook.
//
// WORKBOOK LAYOUT:
//   | A    | B        | C      | D    | E    | F    |
//   |------|----------|--------|------|------|------|
//   | 姓名 | 身份证号 | 手机号 | 名称 | 价格 | 备注 |
//   | ...  | ...      | ...    | ...  | ...  | ...  |
//
//   - One worksheet, named by ExportOptions.SheetName
//   - Header row first, then one row per record in store order
//   - Every column has the same display width
//   - Every cell is written as text so IDs and phone numbers keep their digits
//   - With RowNumbers set, a hidden 序号 column G numbers every record so a
//     record with no values still occupies its row when the file is read back
//   - A value longer than a cell can hold is an error, never truncated
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// IndexHeader is the header of the optional row number column.
const IndexHeader = "序号"

// ErrCellTooLong is returned for a value longer than excelize.TotalCellChars.
var ErrCellTooLong = errors.New("value exceeds the spreadsheet cell limit")

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// ExportOptions controls the generated workbook.
type ExportOptions struct {
	// SheetName is the worksheet title.
	// Default: "信息提取结果"
	SheetName string

	// ColumnWidth is the display width of every column.
	// Default: 20
	ColumnWidth float64

	// WrapNotes wraps the notes column so multi-line notes stay readable.
	// Default: true
	WrapNotes bool

	// RowNumbers appends the hidden 序号 column. Accumulation workbooks set
	// it; one-off exports leave it off.
	RowNumbers bool
}

// DefaultExportOptions returns the default export options.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		SheetName:   "信息提取结果",
		ColumnWidth: 20,
		WrapNotes:   true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// Export renders records into XLSX bytes.
//
// PARAMETERS:
//   - records: The records, in output order.
//   - options: Layout options.
//
// RETURNS:
//   - The workbook bytes.
//   - An error if the workbook cannot be built or serialized.
func Export(records []types.Record, options ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, records, options); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders records as XLSX into w.
func Write(w io.Writer, records []types.Record, options ExportOptions) error {
	f, err := build(records, options)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// WriteFile renders records into the file at path, creating parent
// directories as needed. The file is written to a temporary name first and
// renamed into place.
func WriteFile(path string, records []types.Record, options ExportOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, records, options); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	return nil
}

// CheckRecord reports ErrCellTooLong when any field of r would not fit in a
// single cell.
func CheckRecord(r types.Record) error {
	for _, f := range types.Fields {
		if n := utf8.RuneCountInString(r.Get(f)); n > excelize.TotalCellChars {
			return fmt.Errorf("%w: %s has %d characters, limit %d", ErrCellTooLong, f, n, excelize.TotalCellChars)
		}
	}
	return nil
}

// build creates the in-memory workbook.
func build(records []types.Record, options ExportOptions) (*excelize.File, error) {
	if options.SheetName == "" {
		options.SheetName = DefaultExportOptions().SheetName
	}
	if options.ColumnWidth <= 0 {
		options.ColumnWidth = DefaultExportOptions().ColumnWidth
	}

	f := excelize.NewFile()

	// A new file starts with "Sheet1"; rename it rather than adding a second sheet.
	if err := f.SetSheetName(f.GetSheetName(0), options.SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	sheet := options.SheetName

	headers := types.Headers()
	if options.RowNumbers {
		headers = append(headers, IndexHeader)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for r, record := range records {
		if err := CheckRecord(record); err != nil {
			f.Close()
			return nil, fmt.Errorf("row %d: %w", r+2, err)
		}
		values := record.Values()
		if options.RowNumbers {
			values = append(values, fmt.Sprint(r+1))
		}
		for c, value := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", lastCol, options.ColumnWidth); err != nil {
		f.Close()
		return nil, fmt.Errorf("set column width: %w", err)
	}

	if options.RowNumbers {
		if err := f.SetColVisible(sheet, lastCol, false); err != nil {
			f.Close()
			return nil, fmt.Errorf("hide row numbers: %w", err)
		}
	}

	if err := styleSheet(f, sheet, len(records), options); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// styleSheet bolds the header row and wraps the notes column.
func styleSheet(f *excelize.File, sheet string, rows int, options ExportOptions) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(types.Fields))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	if !options.WrapNotes || rows == 0 {
		return nil
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create notes style: %w", err)
	}
	top, _ := excelize.CoordinatesToCellName(len(types.Fields), 2)
	bottom, _ := excelize.CoordinatesToCellName(len(types.Fields), rows+1)
	if err := f.SetCellStyle(sheet, top, bottom, wrapStyle); err != nil {
		return fmt.Errorf("apply notes style: %w", err)
	}
	return nil
}
