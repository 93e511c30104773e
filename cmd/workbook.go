// =============================================================================
// Text Info Extractor - Workbook Commands
// =============================================================================
//
// These commands keep an accumulation workbook on disk. Each invocation loads
// the workbook into a record store, applies one operation and writes the
// whole store back.
//
// COMMAND USAGE:
//   extractor append [file|-] [--workbook path]
//   extractor delete --index N [--workbook path]
//   extractor clear [--workbook path]
//
// A missing workbook is treated as an empty store. Saved workbooks carry a
// hidden 序号 column so every appended record keeps its row and index.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/text-info-extractor/internal/store"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxparser"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
	"github.com/ginjaninja78/text-info-extractor/pkg/utils"
)

// workbookPath is the accumulation workbook. Empty means export.download_name.
var workbookPath string

// deleteIndex is the 0-based row to remove.
var deleteIndex int

var appendCmd = &cobra.Command{
	Use:   "append [file|-]",
	Short: "Extract one record and append it to the workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		result, err := extractText(text, inputSource(args))
		if err != nil {
			return err
		}
		if err := xlsxwriter.CheckRecord(result.Record); err != nil {
			return err
		}

		st, path, err := loadWorkbook()
		if err != nil {
			return err
		}
		index := st.Append(result.Record)
		if err := saveWorkbook(path, st); err != nil {
			return err
		}

		logger.Info("record appended", "workbook", path, "index", index, "problems", len(result.Problems))
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "信息已成功添加到表格！ (第 %d 条，共 %d 条)\n", index+1, st.Len())
		for _, problem := range result.Problems {
			fmt.Fprintf(out, "  ! %s\n", problem.Error())
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove one record from the workbook by its 0-based index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, path, err := loadWorkbook()
		if err != nil {
			return err
		}
		removed, err := st.Delete(deleteIndex)
		if err != nil {
			return err
		}
		if err := saveWorkbook(path, st); err != nil {
			return err
		}

		logger.Info("record deleted", "workbook", path, "index", deleteIndex, "name", removed.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "已删除第 %d 条，剩余 %d 条\n", deleteIndex, st.Len())
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every record from the workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveWorkbookPath()
		if err := saveWorkbook(path, store.New()); err != nil {
			return err
		}
		logger.Info("workbook cleared", "workbook", path)
		fmt.Fprintln(cmd.OutOrStdout(), "所有数据已清空")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{appendCmd, deleteCmd, clearCmd} {
		c.Flags().StringVarP(&workbookPath, "workbook", "w", "", "Accumulation workbook (default: export.download_name)")
		rootCmd.AddCommand(c)
	}

	deleteCmd.Flags().IntVarP(&deleteIndex, "index", "i", -1, "0-based index of the record to delete")
	deleteCmd.MarkFlagRequired("index")
}

func resolveWorkbookPath() string {
	if workbookPath != "" {
		return workbookPath
	}
	return appConfig.Export.DownloadName
}

// loadWorkbook reads the workbook into a store.
func loadWorkbook() (*store.Store, string, error) {
	path := resolveWorkbookPath()
	if !utils.FileExists(path) {
		return store.New(), path, nil
	}
	records, err := readWorkbook(path)
	if err != nil {
		return nil, path, err
	}
	return store.New(records...), path, nil
}

func readWorkbook(path string) ([]types.Record, error) {
	records, err := xlsxparser.ParseWithOptions(path, xlsxparser.ParseOptions{
		SheetName: exportOptions().SheetName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load workbook %s: %w", path, err)
	}
	return records, nil
}

// saveWorkbook writes the store with the hidden 序号 column so records
// without any value keep their row.
func saveWorkbook(path string, st *store.Store) error {
	opts := exportOptions()
	opts.RowNumbers = true
	if err := xlsxwriter.WriteFile(path, st.Records(), opts); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}
