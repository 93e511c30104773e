// =============================================================================
// Text Info Extractor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (extractor)
//   ├── extractCmd  (extractor extract)
//   ├── appendCmd   (extractor append)
//   ├── deleteCmd   (extractor delete)
//   ├── clearCmd    (extractor clear)
//   ├── processCmd  (extractor process)
//   ├── serveCmd    (extractor serve)
//   ├── validateCmd (extractor validate)
//   └── versionCmd  (extractor version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/text-info-extractor/internal/config"
	"github.com/ginjaninja78/text-info-extractor/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig and logger are populated before any subcommand runs.
var (
	appConfig *config.MainConfig
	logger    *slog.Logger
	logCloser io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "extractor",
	Short: "Text Info Extractor - pull labelled fields out of free text into a spreadsheet",
	Long: `Text Info Extractor reads loosely structured, line-delimited text such as

  姓名：杜翠英
  身份证号码：412724196809296542
  手机号：15896756230
  名称：美的空调
  价格：8999元

and extracts name, ID number, phone number, item name and price. Every line
that no field claims is kept as notes. Records accumulate in an XLSX workbook.

Example Usage:
  extractor extract order.txt                  # Print the extracted record
  extractor append order.txt -w 结果.xlsx      # Append it to a workbook
  extractor process                            # Convert every *.txt in input_dir
  extractor serve                              # Run the HTTP API`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initRuntime loads the configuration and builds the logger.
func initRuntime() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, closer, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFile, verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	appConfig, logger, logCloser = cfg, l, closer
	logger.Debug("configuration loaded", "config", cfgFile, "profile", cfg.Labels.Profile)
	return nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// --config flag: A missing file means "use defaults".
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
