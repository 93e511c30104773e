// =============================================================================
// Text Info Extractor - Main Entry Point
// =============================================================================
//
// USAGE:
//   extractor extract   - Print the record extracted from one text
//   extractor append    - Append an extracted record to a workbook
//   extractor delete    - Remove a record from a workbook
//   extractor clear     - Empty a workbook
//   extractor process   - Convert every text file in the input directory
//   extractor serve     - Run the HTTP API
//   extractor validate  - Check the configuration
//   extractor version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Extraction, storage, export and the HTTP API
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/text-info-extractor/cmd"
)

func main() {
	cmd.Execute()
}
