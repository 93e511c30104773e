// =============================================================================
// Text Info Extractor - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   extractor validate [--config config.yaml] [--workbook path]
//
// Loads the configuration, resolves the label profile and prints the
// effective label lists. With --workbook, every record in the workbook is
// also checked and the findings are listed; any error-level finding makes
// the command fail.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/text-info-extractor/internal/validation"
)

// validateWorkbook is the workbook to check, if any.
var validateWorkbook string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, and optionally the records of a workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := appConfig.Extractor()
		if err != nil {
			return fmt.Errorf("invalid label configuration: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration OK (%s)\n", cfgFile)
		fmt.Fprintf(out, "Profile: %s\n\n", displayProfile(appConfig.Labels.Profile))

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(ex.Labels()); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}

		if validateWorkbook == "" {
			return nil
		}
		return validateRecords(cmd, validateWorkbook)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateWorkbook, "workbook", "w", "", "Also check every record in this workbook")
}

// validateRecords checks each row of the workbook at path.
func validateRecords(cmd *cobra.Command, path string) error {
	records, err := readWorkbook(path)
	if err != nil {
		return err
	}
	v, err := appConfig.Validator()
	if err != nil {
		return err
	}

	sources := make([]string, len(records))
	for i := range records {
		sources[i] = fmt.Sprintf("row %d", i+2)
	}
	result := v.ValidateAll(records, sources)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWorkbook %s: %d record(s), %d error(s), %d warning(s)\n",
		path, result.RecordsValidated, result.ErrorCount, result.WarningCount)
	fmt.Fprintln(out, validation.FormatErrors(result.Errors))

	if !result.IsValid {
		return fmt.Errorf("workbook %s has %d validation error(s)", path, result.ErrorCount)
	}
	return nil
}

func displayProfile(profile string) string {
	if profile == "" {
		return "full"
	}
	return profile
}
