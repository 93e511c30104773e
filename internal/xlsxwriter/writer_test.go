package xlsxwriter

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

var sample = []types.Record{
	{
		Name:        "杜翠英",
		IDNumber:    "412724196809296542",
		PhoneNumber: "15896756230",
		ItemName:    "美的空调",
		Price:       "8999",
		Notes:       "品牌：美的\n类别：空调",
	},
	{Name: "张三", Price: "面议"},
}

func TestExport_Layout(t *testing.T) {
	data, err := Export(sample, DefaultExportOptions())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"信息提取结果"}, f.GetSheetList())

	rows, err := f.GetRows("信息提取结果")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"姓名", "身份证号", "手机号", "名称", "价格", "备注"}, rows[0])
	assert.Equal(t, sample[0].Values(), rows[1])
	assert.Equal(t, "张三", rows[2][0])
	assert.Equal(t, "面议", rows[2][4])

	for _, col := range []string{"A", "C", "F"} {
		width, err := f.GetColWidth("信息提取结果", col)
		require.NoError(t, err)
		assert.Equal(t, float64(20), width)
	}

	// IDs are stored as text, not numbers.
	cellType, err := f.GetCellType("信息提取结果", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, cellType)
}

func TestExport_EmptyStoreHasHeaderOnly(t *testing.T) {
	data, err := Export(nil, ExportOptions{SheetName: "结果", ColumnWidth: 12})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("结果")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	width, err := f.GetColWidth("结果", "D")
	require.NoError(t, err)
	assert.Equal(t, float64(12), width)
}

func TestExport_InvalidSheetName(t *testing.T) {
	_, err := Export(sample, ExportOptions{SheetName: "bad/name"})
	assert.Error(t, err)
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	require.NoError(t, WriteFile(path, sample, DefaultExportOptions()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue("信息提取结果", "A2")
	require.NoError(t, err)
	assert.Equal(t, "杜翠英", value)
}

func TestExport_RowNumbersColumn(t *testing.T) {
	opts := DefaultExportOptions()
	opts.RowNumbers = true
	data, err := Export([]types.Record{{Name: "甲"}, {}}, opts)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("信息提取结果")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, IndexHeader, rows[0][6])
	assert.Equal(t, "2", rows[2][6])

	visible, err := f.GetColVisible("信息提取结果", "G")
	require.NoError(t, err)
	assert.False(t, visible)
}

func TestExport_RejectsValueLongerThanCell(t *testing.T) {
	long := types.Record{Notes: strings.Repeat("a", excelize.TotalCellChars+1)}
	assert.ErrorIs(t, CheckRecord(long), ErrCellTooLong)

	_, err := Export([]types.Record{long}, DefaultExportOptions())
	assert.ErrorIs(t, err, ErrCellTooLong)

	fits := types.Record{Notes: strings.Repeat("备", excelize.TotalCellChars)}
	assert.NoError(t, CheckRecord(fits))
}
