// =============================================================================
// Text Info Extractor - XLSX Workbook Parser
// =============================================================================
//
// This module reads records back from a workbook produced by xlsxwriter, so
// a workbook on disk can act as the accumulation store between CLI runs.
//
// EXPECTED LAYOUT:
//   The header row names the columns. Columns are located by header text,
//   so they may appear in any order. Both display headers ("姓名") and
//   field keys ("name") are accepted.
//
//   | 姓名   | 身份证号           | 手机号      | 名称     | 价格 | 备注 |
//   |--------|--------------------|-------------|----------|------|------|
//   | 杜翠英 | 412724196809296542 | 15896756230 | 美的空调 | 8999 |      |
//
//   - Unknown columns are ignored, apart from counting towards a row's content
//   - Rows with every cell blank are skipped. Accumulation workbooks carry a
//     hidden 序号 column, so a record whose fields are all empty is kept
//   - A workbook without any known header is rejected
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// ErrNoHeader is returned when the header row names no known field.
var ErrNoHeader = errors.New("workbook has no recognised header row")

// =============================================================================
// PARSE OPTIONS
// =============================================================================

// ParseOptions locates the records inside a workbook.
type ParseOptions struct {
	// SheetName selects the worksheet. Empty means the first sheet.
	SheetName string

	// HeaderRow is the 0-based row holding the column headers.
	// Default: 0 (Row 1). Data starts on the next row.
	HeaderRow int
}

// DefaultParseOptions returns the default parse options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{HeaderRow: 0}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the records stored in the workbook at path.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - The records in row order.
//   - An error if the file cannot be opened or has no usable header.
func Parse(path string) ([]types.Record, error) {
	return ParseWithOptions(path, DefaultParseOptions())
}

// ParseWithOptions reads a workbook using custom options.
func ParseWithOptions(path string, options ParseOptions) ([]types.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, options)
}

// ParseReader reads a workbook from r.
func ParseReader(r io.Reader, options ParseOptions) ([]types.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseFile(f, options)
}

// parseFile extracts the records from an open workbook.
func parseFile(f *excelize.File, options ParseOptions) ([]types.Record, error) {
	sheetName := options.SheetName
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if options.HeaderRow >= len(rows) {
		return nil, ErrNoHeader
	}

	columns := mapColumns(rows[options.HeaderRow])
	if len(columns) == 0 {
		return nil, ErrNoHeader
	}

	var records []types.Record
	for i := options.HeaderRow + 1; i < len(rows); i++ {
		row := rows[i]

		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		records = append(records, parseRow(row, columns))
	}

	return records, nil
}

// mapColumns resolves each header cell to a field. The first column that
// names a field wins.
func mapColumns(header []string) map[types.Field]int {
	columns := make(map[types.Field]int)
	for i, cell := range header {
		f, ok := types.FieldForHeader(strings.TrimSpace(cell))
		if !ok {
			continue
		}
		if _, seen := columns[f]; !seen {
			columns[f] = i
		}
	}
	return columns
}

// parseRow builds a record from a single row.
func parseRow(row []string, columns map[types.Field]int) types.Record {
	var record types.Record

	// Helper function to safely get a cell value.
	getCell := func(index int) string {
		if index < len(row) {
			return row[index]
		}
		return ""
	}

	for f, col := range columns {
		value := getCell(col)
		if f != types.FieldNotes {
			value = strings.TrimSpace(value)
		}
		record.Set(f, value)
	}
	return record
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
