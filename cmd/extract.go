// =============================================================================
// Text Info Extractor - Extract Command
// =============================================================================
//
// COMMAND USAGE:
//   extractor extract [file|-] [--format yaml|json]
//
// Reads one block of text from a file (or stdin when the argument is "-" or
// missing), extracts a single record and prints it. Nothing is stored.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/text-info-extractor/internal/converter"
	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// outputFormat selects how the record is printed.
var outputFormat string

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract one record from a text file or stdin and print it",
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
		for _, problem := range result.Problems {
			logger.Warn("validation finding", "rule", problem.Rule, "field", problem.Field, "message", problem.Message)
		}

		return printRecord(cmd.OutOrStdout(), result.Record, outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(
		&outputFormat,
		"format",
		"f",
		"yaml",
		"Output format: yaml or json",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// readInput returns the text of the file named by args[0], or of stdin when
// there is no argument or it is "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// inputSource names the input in validation findings.
func inputSource(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "stdin"
	}
	return filepath.Base(args[0])
}

// extractText converts text with the configured labels and validator.
// Blank text is reported as a warning and not extracted.
func extractText(text, source string) (converter.Result, error) {
	if err := extractor.CheckInput(text); err != nil {
		logger.Warn("请输入需要提取的文本内容")
		return converter.Result{}, err
	}

	ex, err := appConfig.Extractor()
	if err != nil {
		return converter.Result{}, err
	}
	v, err := appConfig.Validator()
	if err != nil {
		return converter.Result{}, err
	}
	result := converter.New(ex, v, logger).ConvertText(text, source)
	return result, result.Error
}

// printRecord writes record to w as YAML or JSON.
func printRecord(w io.Writer, record types.Record, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(record)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
