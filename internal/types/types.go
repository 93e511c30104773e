// =============================================================================
// Text Info Extractor - Shared Types
// =============================================================================
//
// This package contains the record type shared by every module to avoid
// import cycles. Types defined here are used by:
//   - extractor
//   - validation
//   - store
//   - xlsxwriter / xlsxparser
//   - server
//
// =============================================================================

package types

// =============================================================================
// FIELD IDENTIFIERS
// =============================================================================

// Field identifies one column of a Record.
type Field string

const (
	FieldName        Field = "name"
	FieldIDNumber    Field = "id_number"
	FieldPhoneNumber Field = "phone_number"
	FieldItemName    Field = "item_name"
	FieldPrice       Field = "price"
	FieldNotes       Field = "notes"
)

// Fields lists every field in declaration order. This is also the column
// order of every export.
var Fields = []Field{
	FieldName,
	FieldIDNumber,
	FieldPhoneNumber,
	FieldItemName,
	FieldPrice,
	FieldNotes,
}

// headers maps each field to the column header used in exported workbooks.
var headers = map[Field]string{
	FieldName:        "姓名",
	FieldIDNumber:    "身份证号",
	FieldPhoneNumber: "手机号",
	FieldItemName:    "名称",
	FieldPrice:       "价格",
	FieldNotes:       "备注",
}

// Header returns the export column header for the field.
func (f Field) Header() string {
	return headers[f]
}

// Headers returns the export header row in column order.
func Headers() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = f.Header()
	}
	return out
}

// FieldForHeader resolves an export column header back to its field.
// Both the display header and the field key are accepted.
func FieldForHeader(header string) (Field, bool) {
	for _, f := range Fields {
		if headers[f] == header || string(f) == header {
			return f, true
		}
	}
	return "", false
}

// =============================================================================
// RECORD
// =============================================================================

// Record is the result of extracting one block of free text.
// A zero value field means nothing was found for it.
type Record struct {
	// Name is the person name following "姓名：".
	Name string `json:"name" yaml:"name"`

	// IDNumber is an 18 character national ID: 18 digits, or 17 digits
	// followed by X or x.
	IDNumber string `json:"id_number" yaml:"id_number"`

	// PhoneNumber is exactly 11 digits.
	PhoneNumber string `json:"phone_number" yaml:"phone_number"`

	// ItemName is the free text following "名称：".
	ItemName string `json:"item_name" yaml:"item_name"`

	// Price is a numeric string with units stripped, or the raw text after
	// "价格：" when no number could be found there.
	Price string `json:"price" yaml:"price"`

	// Notes holds every line no other field consumed, newline separated.
	Notes string `json:"notes" yaml:"notes"`
}

// Get returns the value of a single field.
func (r Record) Get(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldIDNumber:
		return r.IDNumber
	case FieldPhoneNumber:
		return r.PhoneNumber
	case FieldItemName:
		return r.ItemName
	case FieldPrice:
		return r.Price
	case FieldNotes:
		return r.Notes
	}
	return ""
}

// Set assigns a single field. Unknown fields are ignored.
func (r *Record) Set(f Field, value string) {
	switch f {
	case FieldName:
		r.Name = value
	case FieldIDNumber:
		r.IDNumber = value
	case FieldPhoneNumber:
		r.PhoneNumber = value
	case FieldItemName:
		r.ItemName = value
	case FieldPrice:
		r.Price = value
	case FieldNotes:
		r.Notes = value
	}
}

// Values returns the field values in column order.
func (r Record) Values() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = r.Get(f)
	}
	return out
}

// IsEmpty reports whether no field carries a value.
func (r Record) IsEmpty() bool {
	return r == Record{}
}
