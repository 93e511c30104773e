// =============================================================================
// Text Info Extractor - Field Extractor
// =============================================================================
//
// This module turns a block of loosely structured, line-delimited text into a
// types.Record.
//
// EXTRACTION PIPELINE:
//   1. Normalize: split on newlines, trim each line, drop empty lines
//   2. Match fields in fixed order: name, id_number, phone_number,
//      item_name, price
//   3. If no price label starts a line, run the price fallback chain over
//      the raw text
//   4. Join every line no field consumed into notes
//
// A line is consumed by at most one field. Matchers stop at the first
// satisfying line. The Extractor holds no mutable state and is safe for
// concurrent use.
//
// =============================================================================

package extractor

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

// ErrEmptyInput is returned by CheckInput for blank text.
var ErrEmptyInput = errors.New("input text is empty")

var (
	// idNumberPattern matches 18 digits, or 17 digits followed by X or x.
	idNumberPattern = regexp.MustCompile(`[0-9]{17}[0-9Xx]`)

	// phonePattern matches a run of 11 digits.
	phonePattern = regexp.MustCompile(`[0-9]{11}`)

	// numberPattern matches digits with an optional single decimal point.
	numberPattern = regexp.MustCompile(`[0-9]+\.?[0-9]*`)
)

// =============================================================================
// EXTRACTOR
// =============================================================================

// Extractor extracts records using a fixed LabelSet.
type Extractor struct {
	labels LabelSet

	// fallback holds one compiled pattern per PriceFallback label, capturing
	// the rest of the line after the label.
	fallback []*regexp.Regexp
}

// New creates an Extractor for the given labels.
func New(labels LabelSet) *Extractor {
	e := &Extractor{labels: labels.Merge(LabelSet{})}
	for _, l := range e.labels.PriceFallback {
		e.fallback = append(e.fallback, regexp.MustCompile(regexp.QuoteMeta(l)+`([^\n]+)`))
	}
	return e
}

var defaultExtractor = New(FullLabels())

// Extract runs the full label profile over text.
func Extract(text string) types.Record {
	return defaultExtractor.Extract(text)
}

// Labels returns a copy of the labels this extractor matches.
func (e *Extractor) Labels() LabelSet {
	return e.labels.Merge(LabelSet{})
}

// CheckInput reports ErrEmptyInput when text holds nothing but whitespace.
// Callers use it to warn the user before extracting.
func CheckInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}

// Extract returns the record for text. It never fails: text without any
// recognised label yields a record whose only non-empty field is Notes.
func (e *Extractor) Extract(text string) types.Record {
	return e.Analyze(text).Record
}

// =============================================================================
// ANALYSIS
// =============================================================================

// Extraction is the detailed result of one extraction: the record plus the
// attribution of every normalized line.
type Extraction struct {
	Record types.Record

	// Lines are the normalized input lines.
	Lines []string

	// Owners[i] is the field that consumed Lines[i], or types.FieldNotes
	// when no field did.
	Owners []types.Field
}

// Consumed returns the index of the line the field consumed, or -1.
func (x *Extraction) Consumed(f types.Field) int {
	if f == types.FieldNotes {
		return -1
	}
	for i, owner := range x.Owners {
		if owner == f {
			return i
		}
	}
	return -1
}

// Analyze extracts text and reports which line went to which field.
func (e *Extractor) Analyze(text string) *Extraction {
	raw := strings.TrimSpace(text)
	lines := NormalizeLines(raw)

	x := &Extraction{
		Lines:  lines,
		Owners: make([]types.Field, len(lines)),
	}
	for i := range x.Owners {
		x.Owners[i] = types.FieldNotes
	}

	x.Record.Name = e.matchVerbatim(x, types.FieldName, e.labels.Name)
	x.Record.IDNumber = e.matchPattern(x, types.FieldIDNumber, e.labels.IDNumber, idNumberPattern)
	x.Record.PhoneNumber = e.matchPattern(x, types.FieldPhoneNumber, e.labels.PhoneNumber, phonePattern)
	x.Record.ItemName = e.matchVerbatim(x, types.FieldItemName, e.labels.ItemName)

	price, found := e.matchPrice(x)
	if !found {
		price = e.fallbackPrice(raw)
	}
	x.Record.Price = price

	x.Record.Notes = x.notes()
	return x
}

// NormalizeLines splits text on newlines, trims every line and drops the
// lines that end up empty.
func NormalizeLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// =============================================================================
// MATCHERS
// =============================================================================

// findLine returns the index of the first unconsumed line starting with
// label, or -1.
func (x *Extraction) findLine(label string) int {
	for i, line := range x.Lines {
		if x.Owners[i] == types.FieldNotes && strings.HasPrefix(line, label) {
			return i
		}
	}
	return -1
}

// matchVerbatim takes the remainder after the first matching label. The
// line is consumed as soon as the label matches, even if the remainder is
// empty.
func (e *Extractor) matchVerbatim(x *Extraction, f types.Field, labels []string) string {
	for _, label := range labels {
		i := x.findLine(label)
		if i < 0 {
			continue
		}
		x.Owners[i] = f
		return strings.TrimSpace(strings.TrimPrefix(x.Lines[i], label))
	}
	return ""
}

// matchPattern takes the first pattern match on the first line starting
// with a label. A label whose line holds no match consumes nothing, and the
// next label is tried.
func (e *Extractor) matchPattern(x *Extraction, f types.Field, labels []string, pattern *regexp.Regexp) string {
	for _, label := range labels {
		i := x.findLine(label)
		if i < 0 {
			continue
		}
		value := pattern.FindString(x.Lines[i])
		if value == "" {
			continue
		}
		x.Owners[i] = f
		return value
	}
	return ""
}

// matchPrice handles the primary price labels. found reports whether any
// label line existed; such a line is always consumed, and its raw remainder
// stands in for the price when it holds no number.
func (e *Extractor) matchPrice(x *Extraction) (price string, found bool) {
	for _, label := range e.labels.Price {
		i := x.findLine(label)
		if i < 0 {
			continue
		}
		x.Owners[i] = types.FieldPrice
		rest := strings.TrimSpace(strings.TrimPrefix(x.Lines[i], label))
		if n := numberPattern.FindString(rest); n != "" {
			return n, true
		}
		return rest, true
	}
	return "", false
}

// fallbackPrice searches raw text for the fallback labels in order. The
// first label present decides the outcome, and a value without a number
// leaves the price empty. No line is consumed.
func (e *Extractor) fallbackPrice(raw string) string {
	for _, re := range e.fallback {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		return numberPattern.FindString(strings.TrimSpace(m[1]))
	}
	return ""
}

// notes joins the unconsumed lines in their original order.
func (x *Extraction) notes() string {
	var rest []string
	for i, line := range x.Lines {
		if x.Owners[i] == types.FieldNotes {
			rest = append(rest, line)
		}
	}
	return strings.Join(rest, "\n")
}
