package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
)

func rules(errs []*ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Rule)
	}
	return out
}

func TestValidateRecord_ExtractedRecordIsClean(t *testing.T) {
	r := extractor.Extract("姓名：杜翠英\n身份证号码：412724196809296542\n手机号：15896756230\n价格：8999元")
	assert.Empty(t, NewValidator().ValidateRecord(r, ""))
}

func TestValidateRecord_BadFormats(t *testing.T) {
	errs := NewValidator().ValidateRecord(types.Record{
		Name:        "张三",
		IDNumber:    "12345",
		PhoneNumber: "138-0000",
		Price:       "面议",
	}, "")

	assert.Equal(t, []string{"id_format", "phone_format", "price_numeric"}, rules(errs))
	assert.True(t, errs[0].IsFatal())
	assert.True(t, errs[1].IsFatal())
	assert.False(t, errs[2].IsFatal())
	assert.Contains(t, errs[0].Error(), "[ERROR] record, Field 'id_number'")
}

func TestValidateRecord_NothingExtracted(t *testing.T) {
	errs := NewValidator().ValidateRecord(types.Record{Notes: "随便写点什么"}, "")
	assert.Equal(t, []string{"nothing_extracted"}, rules(errs))
}

func TestValidator_Options(t *testing.T) {
	v := NewValidatorWithOptions(ValidationOptions{
		RequiredFields:        []types.Field{types.FieldName, types.FieldPhoneNumber},
		TreatWarningsAsErrors: true,
	})
	errs := v.ValidateRecord(types.Record{Name: "张三", Price: "面议"}, "a.txt")

	assert.Equal(t, []string{"price_numeric", "required"}, rules(errs))
	for _, e := range errs {
		assert.True(t, e.IsFatal())
		assert.Equal(t, "a.txt", e.Source)
	}
}

func TestValidateAll_Counts(t *testing.T) {
	v := NewValidator()
	result := v.ValidateAll([]types.Record{
		{Name: "ok"},
		{Name: "bad", PhoneNumber: "1"},
		{Name: "raw", Price: "面议"},
	}, []string{"one.txt", "", "three.txt"})

	assert.False(t, result.IsValid)
	assert.Equal(t, 3, result.RecordsValidated)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.WarningCount)
	assert.Equal(t, "record 2", result.Errors[0].Source)
	assert.Equal(t, "three.txt", result.Errors[1].Source)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No validation errors.", FormatErrors(nil))

	out := FormatErrors(NewValidator().ValidateRecord(types.Record{PhoneNumber: "1"}, "row 2"))
	assert.Contains(t, out, "1 problem(s)")
	assert.Contains(t, out, "1. [ERROR] row 2, Field 'phone_number'")
}
