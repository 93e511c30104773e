package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/logging"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
)

func newConverter() *Converter {
	return New(extractor.New(extractor.FullLabels()), nil, logging.Discard())
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_ExtractsAndCounts(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a.txt", "\xEF\xBB\xBF姓名：杜翠英\n手机号：15896756230\n\n价格：面议\n品牌：美的")

	result := newConverter().Run(context.Background(), path)

	require.True(t, result.Success)
	require.NoError(t, result.Error)
	assert.Equal(t, "杜翠英", result.Record.Name)
	assert.Equal(t, "15896756230", result.Record.PhoneNumber)
	assert.Equal(t, "面议", result.Record.Price)
	assert.Equal(t, "品牌：美的", result.Record.Notes)
	assert.Equal(t, 4, result.Stats.Lines)
	assert.Equal(t, 3, result.Stats.FieldsExtracted)

	require.Len(t, result.Problems, 1)
	assert.Equal(t, "price_numeric", result.Problems[0].Rule)
	assert.Equal(t, "a.txt", result.Problems[0].Source)
}

func TestRun_EmptyInput(t *testing.T) {
	path := writeInput(t, t.TempDir(), "blank.txt", " \n\t\n")

	result := newConverter().Run(context.Background(), path)

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, extractor.ErrEmptyInput)
}

func TestRun_MissingFile(t *testing.T) {
	result := newConverter().Run(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, os.ErrNotExist)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := newConverter().Run(ctx, "ignored.txt")
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestConvertText(t *testing.T) {
	result := newConverter().ConvertText("名称：美的空调", "inline")
	require.True(t, result.Success)
	assert.Equal(t, "美的空调", result.Record.ItemName)
	assert.Empty(t, result.Problems)
}

func TestConvertText_RejectsValueLongerThanCell(t *testing.T) {
	result := newConverter().ConvertText("姓名：甲\n"+strings.Repeat("x", 40000), "huge.txt")
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, xlsxwriter.ErrCellTooLong)
}

func TestRunBatch_KeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, writeInput(t, dir, fmt.Sprintf("%02d.txt", i), fmt.Sprintf("姓名：用户%02d", i)))
	}

	results := newConverter().RunBatch(context.Background(), paths, 3, false)

	require.Len(t, results, len(paths))
	for i, r := range results {
		require.True(t, r.Success, r.Error)
		assert.Equal(t, paths[i], r.FilePath)
		assert.Equal(t, fmt.Sprintf("用户%02d", i), r.Record.Name)
	}
}

func TestRunBatch_ContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeInput(t, dir, "a.txt", "姓名：甲"),
		writeInput(t, dir, "b.txt", ""),
		writeInput(t, dir, "c.txt", "姓名：丙"),
	}

	results := newConverter().RunBatch(context.Background(), paths, 1, false)

	assert.True(t, results[0].Success)
	assert.True(t, errors.Is(results[1].Error, extractor.ErrEmptyInput))
	assert.True(t, results[2].Success)
}

func TestRunBatch_StopOnError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeInput(t, dir, "a.txt", ""),
		writeInput(t, dir, "b.txt", "姓名：乙"),
	}

	// With one worker, b.txt starts only after a.txt has failed.
	results := newConverter().RunBatch(context.Background(), paths, 1, true)

	assert.ErrorIs(t, results[0].Error, extractor.ErrEmptyInput)
	assert.ErrorIs(t, results[1].Error, context.Canceled)
}
