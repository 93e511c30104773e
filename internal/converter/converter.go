// =============================================================================
// Text Info Extractor - Converter Module
// =============================================================================
//
// This module converts text files into records. It orchestrates the pipeline
// for a single file and runs many files concurrently for batch processing.
//
// CONVERSION PIPELINE:
//   1. Read the input file (a leading UTF-8 BOM is dropped)
//   2. Reject blank input
//   3. Extract the record
//   4. Validate the record
//
// CONCURRENCY:
//   The extractor and validator are stateless, so one Converter serves every
//   goroutine. RunBatch bounds the number of files in flight and returns
//   results in input order regardless of completion order.
//
// =============================================================================

package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/validation"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Record is the extracted record. It is only meaningful when Success is true.
	Record types.Record

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Problems are the validation findings for Record. They never make a
	// conversion fail on their own.
	Problems []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Lines is the number of non-empty input lines.
	Lines int

	// FieldsExtracted counts the non-empty fields other than notes.
	FieldsExtracted int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter turns text files into validated records.
type Converter struct {
	extractor *extractor.Extractor
	validator *validation.Validator
	logger    *slog.Logger
}

// New creates a Converter. A nil validator uses the default rules and a
// nil logger uses slog.Default().
func New(ex *extractor.Extractor, v *validation.Validator, logger *slog.Logger) *Converter {
	if v == nil {
		v = validation.NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{extractor: ex, validator: v, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the conversion pipeline for one file.
func (c *Converter) Run(ctx context.Context, path string) Result {
	startTime := time.Now()
	result := Result{FilePath: path}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	c.logger.Debug("processing file", "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}

	result = c.convert(string(bytes.TrimPrefix(data, utf8BOM)), filepath.Base(path))
	result.FilePath = path
	result.Stats.ProcessingTime = time.Since(startTime)

	if result.Success {
		c.logger.Debug("extracted record",
			"file", path,
			"lines", result.Stats.Lines,
			"fields", result.Stats.FieldsExtracted,
			"problems", len(result.Problems))
	}
	return result
}

// ConvertText runs the pipeline on text that is already in memory. source
// labels validation findings.
func (c *Converter) ConvertText(text, source string) Result {
	startTime := time.Now()
	result := c.convert(text, source)
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}

func (c *Converter) convert(text, source string) Result {
	var result Result

	if err := extractor.CheckInput(text); err != nil {
		result.Error = err
		return result
	}

	x := c.extractor.Analyze(text)
	if err := xlsxwriter.CheckRecord(x.Record); err != nil {
		result.Error = err
		return result
	}
	result.Record = x.Record
	result.Stats.Lines = len(x.Lines)
	result.Stats.FieldsExtracted = countFields(x.Record)
	result.Problems = c.validator.ValidateRecord(x.Record, source)
	result.Success = true
	return result
}

// RunBatch converts paths with at most limit files in flight. Results keep
// the order of paths. With stopOnError set, the first failure cancels the
// files not yet started; those results carry the context error.
func (c *Converter) RunBatch(ctx context.Context, paths []string, limit int, stopOnError bool) []Result {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range paths {
		g.Go(func() error {
			results[i] = c.Run(gctx, path)
			if results[i].Error != nil {
				c.logger.Warn("conversion failed", "file", path, "error", results[i].Error)
				if stopOnError {
					return results[i].Error
				}
			}
			return nil
		})
	}

	// Failures are already recorded per file.
	_ = g.Wait()

	return results
}

// countFields counts the non-empty fields other than notes.
func countFields(r types.Record) int {
	n := 0
	for _, f := range types.Fields {
		if f != types.FieldNotes && r.Get(f) != "" {
			n++
		}
	}
	return n
}
