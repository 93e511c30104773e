// =============================================================================
// Text Info Extractor - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts a directory of
// text files into one workbook. Each file holds one record.
//
// COMMAND USAGE:
//   extractor process [flags]
//
// FLAGS:
//   --dry-run : Extract and validate without writing or archiving anything
//   --file    : Process only this file instead of scanning input_dir
//   --pattern : Glob used to discover input files (default "*.txt")
//
// PROCESSING PIPELINE:
//   1. Discover input files in the input directory
//   2. Convert each file concurrently (bounded by max_concurrency)
//   3. Export the successful records, in file-name order, to one workbook
//   4. Archive the converted inputs and prune old archives
//   5. Write the error log and the processing summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/text-info-extractor/internal/converter"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
	"github.com/ginjaninja78/text-info-extractor/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

// filePath is a single file to process instead of the input directory.
var filePath string

// inputPattern selects the files discovered in the input directory.
var inputPattern string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract every text file in the input directory into one workbook",
	Long: `The process command scans the input directory for text files, extracts one
record from each and exports all records to a single XLSX workbook in the
output directory.

Files are converted concurrently. A file that cannot be read, or that holds
only whitespace, is reported and left in the input directory; with
continue_on_error disabled the first such failure stops the batch.

On success:
  - The workbook is written to the output directory
  - Converted inputs are moved to the input archive
  - A summary report is written next to the workbook`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Extract and validate without writing or archiving anything",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)

	processCmd.Flags().StringVar(
		&inputPattern,
		"pattern",
		"*.txt",
		"Glob used to discover files in the input directory",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch pipeline.
func runProcess(ctx context.Context) error {
	summary := utils.ProcessingSummary{StartTime: time.Now()}

	fm := utils.NewFileManager(appConfig.InputDir, appConfig.OutputDir, appConfig.InputArchiveDir)
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	ex, err := appConfig.Extractor()
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	var inputFiles []string
	if filePath != "" {
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = fm.DiscoverInputFiles(inputPattern)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		logger.Info("no input files found", "dir", appConfig.InputDir, "pattern", inputPattern)
		return nil
	}
	summary.TotalFiles = len(inputFiles)
	logger.Info("processing files", "count", len(inputFiles), "concurrency", appConfig.MaxConcurrency)

	// =========================================================================
	// STEP 2: CONVERT FILES CONCURRENTLY
	// =========================================================================

	v, err := appConfig.Validator()
	if err != nil {
		return err
	}
	conv := converter.New(ex, v, logger)
	results := conv.RunBatch(ctx, inputFiles, appConfig.MaxConcurrency, !appConfig.ShouldContinueOnError())

	var (
		records   []types.Record
		converted []converter.Result
		errorLog  []utils.ErrorLogEntry
	)
	for _, result := range results {
		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorLog = append(errorLog, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     filepath.Base(result.FilePath),
				ErrorType:    "conversion",
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.FilePath), result.Error)
			continue
		}

		summary.SuccessfulFiles++
		records = append(records, result.Record)
		converted = append(converted, result)
		for _, problem := range result.Problems {
			summary.ValidationErrors++
			errorLog = append(errorLog, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     filepath.Base(result.FilePath),
				ErrorType:    "validation/" + problem.Severity,
				ErrorMessage: problem.Message,
				FieldName:    problem.Field.Header(),
				FieldValue:   problem.Value,
			})
		}
		fmt.Printf("  ✓ %s (%d fields)\n", filepath.Base(result.FilePath), result.Stats.FieldsExtracted)
	}

	if summary.FailedFiles > 0 && !appConfig.ShouldContinueOnError() {
		logger.Error("batch stopped on first failure", "failed", summary.FailedFiles)
	}

	if dryRun {
		fmt.Printf("\nDry run: %d record(s) extracted, %d failure(s), %d validation finding(s)\n",
			len(records), summary.FailedFiles, summary.ValidationErrors)
		return nil
	}

	// =========================================================================
	// STEP 3: EXPORT
	// =========================================================================

	if len(records) > 0 {
		outputPath := filepath.Join(appConfig.OutputDir,
			utils.GenerateOutputFileName(appConfig.OutputFileFormat, nil))
		if err := xlsxwriter.WriteFile(outputPath, records, exportOptions()); err != nil {
			return fmt.Errorf("failed to export workbook: %w", err)
		}
		summary.OutputFile = outputPath
		summary.RecordsExported = len(records)
		logger.Info("workbook written", "path", outputPath, "records", len(records))
	}

	// =========================================================================
	// STEP 4: ARCHIVE
	// =========================================================================

	for _, result := range converted {
		info := utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			Lines:       result.Stats.Lines,
			Fields:      result.Stats.FieldsExtracted,
			ProcessTime: result.Stats.ProcessingTime,
		}
		archivePath, err := fm.ArchiveInputFile(result.FilePath)
		if err != nil {
			logger.Warn("failed to archive input", "file", result.FilePath, "error", err)
		}
		info.ArchivePath = archivePath
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)
	}

	if appConfig.ArchiveRetentionDays > 0 {
		maxAge := time.Duration(appConfig.ArchiveRetentionDays) * 24 * time.Hour
		removed, err := utils.CleanOldArchives(appConfig.InputArchiveDir, maxAge)
		if err != nil {
			logger.Warn("failed to clean archives", "error", err)
		} else if removed > 0 {
			logger.Info("old archives removed", "count", removed)
		}
	}

	// =========================================================================
	// STEP 5: LOGS AND SUMMARY
	// =========================================================================

	if path, err := utils.WriteErrorLog(errorLog, appConfig.OutputDir); err != nil {
		logger.Warn("failed to write error log", "error", err)
	} else if path != "" {
		fmt.Printf("\nErrors have been logged to %s\n", path)
	}

	summary.EndTime = time.Now()
	summaryPath, err := utils.WriteSummaryLog(summary, appConfig.OutputDir)
	if err != nil {
		logger.Warn("failed to write summary", "error", err)
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
	if summary.OutputFile != "" {
		fmt.Printf("Workbook:        %s\n", summary.OutputFile)
	}
	if summaryPath != "" {
		fmt.Printf("Summary:         %s\n", summaryPath)
	}

	if summary.FailedFiles > 0 && !appConfig.ShouldContinueOnError() {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}

// exportOptions maps the export config onto the writer options.
func exportOptions() xlsxwriter.ExportOptions {
	opts := xlsxwriter.DefaultExportOptions()
	if appConfig.Export.SheetName != "" {
		opts.SheetName = appConfig.Export.SheetName
	}
	if appConfig.Export.ColumnWidth > 0 {
		opts.ColumnWidth = appConfig.Export.ColumnWidth
	}
	return opts
}
