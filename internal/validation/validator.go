// =============================================================================
// Text Info Extractor - Validation Engine
// =============================================================================
//
// This module checks extracted records. The batch converter validates every
// record it produces, `append` reports the findings for the record it adds,
// and `validate --workbook` checks every row of a workbook, which people may
// have edited by hand. Findings are reported; records are never rejected.
//
// RULES:
//   - id_number     : 18 digits, or 17 digits followed by X/x   (error)
//   - phone_number  : exactly 11 digits                         (error)
//   - price         : a number; raw text is flagged             (warning)
//   - required      : configurable fields that must be present  (warning)
//   - empty record  : no field besides notes was found          (warning)
//
// ERROR HANDLING:
//   - Problems are collected, not returned one at a time
//   - Validation never modifies a record
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

var (
	idNumberRule = regexp.MustCompile(`^[0-9]{17}[0-9Xx]$`)
	phoneRule    = regexp.MustCompile(`^[0-9]{11}$`)
	priceRule    = regexp.MustCompile(`^[0-9]+\.?[0-9]*$`)
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Field is the record field that failed validation.
	Field types.Field

	// Value is the offending value.
	Value string

	// Rule is the name of the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string

	// Source identifies where the record came from (file name, row).
	Source string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	source := e.Source
	if source == "" {
		source = "record"
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		source,
		e.Field,
		e.Message,
		e.Value,
	)
}

// IsFatal reports whether the problem is an error rather than a warning.
func (e *ValidationError) IsFatal() bool {
	return e.Severity == SeverityError
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult summarises the validation of many records.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all problems, warnings included.
	Errors []*ValidationError

	ErrorCount       int
	WarningCount     int
	RecordsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// RequiredFields must be non-empty; a missing one is a warning.
	RequiredFields []types.Field

	// TreatWarningsAsErrors promotes every warning to an error.
	TreatWarningsAsErrors bool
}

// Validator performs validation on records.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a Validator with default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(ValidationOptions{})
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// ValidateAll validates records in order. Sources, when given, label each
// record in the messages and must be as long as records.
func (v *Validator) ValidateAll(records []types.Record, sources []string) *ValidationResult {
	result := &ValidationResult{IsValid: true}
	for i, r := range records {
		source := fmt.Sprintf("record %d", i+1)
		if i < len(sources) && sources[i] != "" {
			source = sources[i]
		}
		for _, e := range v.ValidateRecord(r, source) {
			result.Errors = append(result.Errors, e)
			if e.IsFatal() {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
			}
		}
		result.RecordsValidated++
	}
	return result
}

// ValidateRecord checks one record. source is copied into every problem.
func (v *Validator) ValidateRecord(record types.Record, source string) []*ValidationError {
	var errs []*ValidationError
	add := func(severity string, f types.Field, rule, message string) {
		if severity == SeverityWarning && v.options.TreatWarningsAsErrors {
			severity = SeverityError
		}
		errs = append(errs, &ValidationError{
			Severity: severity,
			Field:    f,
			Value:    record.Get(f),
			Rule:     rule,
			Message:  message,
			Source:   source,
		})
	}

	if record.IDNumber != "" && !idNumberRule.MatchString(record.IDNumber) {
		add(SeverityError, types.FieldIDNumber, "id_format", "must be 18 digits, or 17 digits followed by X")
	}
	if record.PhoneNumber != "" && !phoneRule.MatchString(record.PhoneNumber) {
		add(SeverityError, types.FieldPhoneNumber, "phone_format", "must be exactly 11 digits")
	}
	if record.Price != "" && !priceRule.MatchString(record.Price) {
		add(SeverityWarning, types.FieldPrice, "price_numeric", "no number found, raw text kept")
	}

	for _, f := range v.options.RequiredFields {
		if strings.TrimSpace(record.Get(f)) == "" {
			add(SeverityWarning, f, "required", "required field is empty")
		}
	}

	if (record == types.Record{Notes: record.Notes}) {
		add(SeverityWarning, types.FieldNotes, "nothing_extracted", "no labelled field was recognised")
	}

	return errs
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
