package types

import (
	"encoding/json"
	"testing"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseFieldType(t *testing.T) {
	for _, ft := range FieldTypes {
		got, err := ParseFieldType(string(ft))
		require.NoError(t, err)
		assert.Equal(t, ft, got)
	}

	got, err := ParseFieldType("datetime")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeDateTime, got)

	_, err = ParseFieldType("Colour")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrUnknownFieldType))
}

func TestDecodeFieldKindVariants(t *testing.T) {
	tests := []struct {
		name string
		json string
		want FieldKind
	}{
		{"text", `{"type":"Text","is_required":true}`, TextKind{IsRequired: true}},
		{"integer", `{"type":"Integer","is_required":false,"range_start":1,"range_end":null}`,
			IntegerKind{RangeStart: ptr(int64(1))}},
		{"decimal", `{"type":"Decimal","is_required":false,"scientific_notation":true,"number_precision":4}`,
			DecimalKind{ScientificNotation: true, NumberPrecision: ptr(int64(4))}},
		{"progress", `{"type":"Progress","total_steps":10}`, ProgressKind{TotalSteps: 10}},
		{"interval", `{"type":"Interval","is_required":true}`, IntervalKind{IsRequired: true}},
		{"weblink", `{"type":"WebLink","is_required":false}`, WebLinkKind{}},
		{"email", `{"type":"Email","is_required":true}`, EmailKind{IsRequired: true}},
		{"checkbox", `{"type":"Checkbox"}`, CheckboxKind{}},
		{"enumeration", `{"type":"Enumeration","is_required":true,"values":{"1":"low","2":"high"},"default":1}`,
			EnumerationKind{IsRequired: true, Values: map[int64]string{1: "low", 2: "high"}, Default: 1}},
		{"image", `{"type":"Image","is_required":false}`, ImageKind{}},
		{"file", `{"type":"File","is_required":true}`, FileKind{IsRequired: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := DecodeFieldKind([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDecodeMoneyKindAcceptsNumbersAndStrings(t *testing.T) {
	kind, err := DecodeFieldKind([]byte(`{"type":"Money","is_required":true,"range_start":"10.50","range_end":99.99}`))
	require.NoError(t, err)

	money, ok := kind.(MoneyKind)
	require.True(t, ok)
	require.NotNil(t, money.RangeStart)
	require.NotNil(t, money.RangeEnd)
	assert.True(t, money.RangeStart.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, money.RangeEnd.Equal(decimal.RequireFromString("99.99")))
}

func TestDecodeDateTimeKindKeepsRawBounds(t *testing.T) {
	kind, err := DecodeFieldKind([]byte(`{"type":"DateTime","is_required":false,"range_start":"2024-01-01","range_end":null,"date_time_format":"%Y-%m-%d"}`))
	require.NoError(t, err)

	dt, ok := kind.(DateTimeKind)
	require.True(t, ok)
	require.NotNil(t, dt.RangeStart)
	assert.Equal(t, "2024-01-01", dt.RangeStart.Raw)
	assert.False(t, dt.RangeStart.IsHydrated())
	assert.Nil(t, dt.RangeEnd)
	assert.Equal(t, "%Y-%m-%d", dt.DateTimeFormat)
}

func TestDecodeFieldKindErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		code errors.Code
	}{
		{"not json", `{"type":`, ErrFieldKindMalformed},
		{"not an object", `"Text"`, ErrFieldKindMalformed},
		{"missing tag", `{"is_required":true}`, ErrFieldKindMalformed},
		{"numeric tag", `{"type":3}`, ErrFieldKindMalformed},
		{"unknown tag", `{"type":"Colour"}`, ErrUnknownFieldType},
		{"lowercase tag", `{"type":"text"}`, ErrUnknownFieldType},
		{"wrong member type", `{"type":"Progress","total_steps":"ten"}`, ErrFieldKindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFieldKind([]byte(tt.json))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestFieldKindMarshalInjectsTypeTag(t *testing.T) {
	kinds := []FieldKind{
		TextKind{}, IntegerKind{}, DecimalKind{}, MoneyKind{}, ProgressKind{TotalSteps: 1},
		DateTimeKind{}, IntervalKind{}, WebLinkKind{}, EmailKind{}, CheckboxKind{},
		EnumerationKind{Values: map[int64]string{}}, ImageKind{}, FileKind{},
	}
	require.Len(t, kinds, len(FieldTypes))

	for _, kind := range kinds {
		data, err := json.Marshal(kind)
		require.NoError(t, err)
		assert.Equal(t, string(kind.Type()), gjson.GetBytes(data, "type").String(), string(data))

		decoded, err := DecodeFieldKind(data)
		require.NoError(t, err)
		assert.Equal(t, kind.Type(), decoded.Type())
	}
}

func TestFieldJSON(t *testing.T) {
	input := `{
		"table_id": 7,
		"user_id": 1,
		"field_id": 3,
		"name": "Due",
		"field_kind": {"type": "DateTime", "is_required": true, "range_start": null, "range_end": "2030-12-31T00:00:00Z", "date_time_format": "%F"},
		"updated_at": "2024-03-01T12:00:00Z"
	}`

	var field Field
	require.NoError(t, json.Unmarshal([]byte(input), &field))
	assert.Equal(t, ID(7), field.TableID)
	assert.Equal(t, ID(3), field.FieldID)
	assert.Equal(t, "Due", field.Name)
	require.NotNil(t, field.UpdatedAt)

	kind, ok := field.FieldKind.(DateTimeKind)
	require.True(t, ok)
	assert.True(t, kind.IsRequired)
	assert.Nil(t, kind.RangeStart)
	assert.Equal(t, "2030-12-31T00:00:00Z", kind.RangeEnd.Raw)

	data, err := json.Marshal(field)
	require.NoError(t, err)
	assert.Equal(t, "DateTime", gjson.GetBytes(data, "field_kind.type").String())
	assert.Equal(t, "2030-12-31T00:00:00Z", gjson.GetBytes(data, "field_kind.range_end").String())
	assert.Equal(t, int64(3), gjson.GetBytes(data, "field_id").Int())
}

func TestFieldUnmarshalRejectsMissingKind(t *testing.T) {
	var field Field
	err := json.Unmarshal([]byte(`{"field_id":1,"name":"x"}`), &field)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrFieldKindMalformed))
}

func TestIsRequired(t *testing.T) {
	assert.True(t, IsRequired(TextKind{IsRequired: true}))
	assert.False(t, IsRequired(TextKind{}))
	assert.True(t, IsRequired(CheckboxKind{}))
	assert.True(t, IsRequired(ProgressKind{}))
	assert.False(t, IsRequired(DateTimeKind{}))
	assert.False(t, IsRequired(nil))
}

func ptr[T any](v T) *T {
	return &v
}
