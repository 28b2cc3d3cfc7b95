package types

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FieldType is the tag of a FieldKind variant as it appears on the wire.
type FieldType string

const (
	FieldTypeText        FieldType = "Text"
	FieldTypeInteger     FieldType = "Integer"
	FieldTypeDecimal     FieldType = "Decimal"
	FieldTypeMoney       FieldType = "Money"
	FieldTypeProgress    FieldType = "Progress"
	FieldTypeDateTime    FieldType = "DateTime"
	FieldTypeInterval    FieldType = "Interval"
	FieldTypeWebLink     FieldType = "WebLink"
	FieldTypeEmail       FieldType = "Email"
	FieldTypeCheckbox    FieldType = "Checkbox"
	FieldTypeEnumeration FieldType = "Enumeration"
	FieldTypeImage       FieldType = "Image"
	FieldTypeFile        FieldType = "File"
)

// FieldTypes lists every field type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeInteger,
	FieldTypeDecimal,
	FieldTypeMoney,
	FieldTypeProgress,
	FieldTypeDateTime,
	FieldTypeInterval,
	FieldTypeWebLink,
	FieldTypeEmail,
	FieldTypeCheckbox,
	FieldTypeEnumeration,
	FieldTypeImage,
	FieldTypeFile,
}

// ParseFieldType returns the FieldType named by s. Matching is exact first,
// then case-insensitive.
func ParseFieldType(s string) (FieldType, error) {
	for _, t := range FieldTypes {
		if string(t) == s {
			return t, nil
		}
	}
	for _, t := range FieldTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", errors.Newf(ErrUnknownFieldType, "unknown field type %q", s).AddContext("type", s)
}

// Field is a typed column of a table.
type Field struct {
	TableID   ID
	UserID    ID
	FieldID   ID
	Name      string
	FieldKind FieldKind
	UpdatedAt *time.Time
}

type fieldJSON struct {
	TableID   ID              `json:"table_id"`
	UserID    ID              `json:"user_id"`
	FieldID   ID              `json:"field_id"`
	Name      string          `json:"name"`
	FieldKind json.RawMessage `json:"field_kind"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

func (f Field) MarshalJSON() ([]byte, error) {
	var kind json.RawMessage = []byte("null")
	if f.FieldKind != nil {
		data, err := json.Marshal(f.FieldKind)
		if err != nil {
			return nil, err
		}
		kind = data
	}
	return json.Marshal(fieldJSON{
		TableID:   f.TableID,
		UserID:    f.UserID,
		FieldID:   f.FieldID,
		Name:      f.Name,
		FieldKind: kind,
		UpdatedAt: f.UpdatedAt,
	})
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var wire fieldJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	kind, err := DecodeFieldKind(wire.FieldKind)
	if err != nil {
		return err
	}
	*f = Field{
		TableID:   wire.TableID,
		UserID:    wire.UserID,
		FieldID:   wire.FieldID,
		Name:      wire.Name,
		FieldKind: kind,
		UpdatedAt: wire.UpdatedAt,
	}
	return nil
}

// FieldKind is the closed set of field variants. Each variant carries the
// constraints of its kind and encodes as a JSON object tagged with "type".
type FieldKind interface {
	Type() FieldType
	fieldKind()
}

type TextKind struct {
	IsRequired bool `json:"is_required"`
}

type IntegerKind struct {
	IsRequired bool   `json:"is_required"`
	RangeStart *int64 `json:"range_start"`
	RangeEnd   *int64 `json:"range_end"`
}

type DecimalKind struct {
	IsRequired         bool     `json:"is_required"`
	RangeStart         *float64 `json:"range_start"`
	RangeEnd           *float64 `json:"range_end"`
	ScientificNotation bool     `json:"scientific_notation"`
	NumberPrecision    *int64   `json:"number_precision"`
	NumberScale        *int64   `json:"number_scale"`
}

// MoneyKind bounds decode straight from JSON numbers or strings. They are
// not part of hydration.
type MoneyKind struct {
	IsRequired bool             `json:"is_required"`
	RangeStart *decimal.Decimal `json:"range_start"`
	RangeEnd   *decimal.Decimal `json:"range_end"`
}

type ProgressKind struct {
	TotalSteps int64 `json:"total_steps"`
}

// DateTimeKind bounds arrive as text; Hydrate parses them.
type DateTimeKind struct {
	IsRequired     bool       `json:"is_required"`
	RangeStart     *DateBound `json:"range_start"`
	RangeEnd       *DateBound `json:"range_end"`
	DateTimeFormat string     `json:"date_time_format"`
}

type IntervalKind struct {
	IsRequired bool `json:"is_required"`
}

type WebLinkKind struct {
	IsRequired bool `json:"is_required"`
}

type EmailKind struct {
	IsRequired bool `json:"is_required"`
}

type CheckboxKind struct{}

// EnumerationKind maps stored integers to display labels.
type EnumerationKind struct {
	IsRequired bool             `json:"is_required"`
	Values     map[int64]string `json:"values"`
	Default    int64            `json:"default"`
}

type ImageKind struct {
	IsRequired bool `json:"is_required"`
}

type FileKind struct {
	IsRequired bool `json:"is_required"`
}

func (TextKind) Type() FieldType        { return FieldTypeText }
func (IntegerKind) Type() FieldType     { return FieldTypeInteger }
func (DecimalKind) Type() FieldType     { return FieldTypeDecimal }
func (MoneyKind) Type() FieldType       { return FieldTypeMoney }
func (ProgressKind) Type() FieldType    { return FieldTypeProgress }
func (DateTimeKind) Type() FieldType    { return FieldTypeDateTime }
func (IntervalKind) Type() FieldType    { return FieldTypeInterval }
func (WebLinkKind) Type() FieldType     { return FieldTypeWebLink }
func (EmailKind) Type() FieldType       { return FieldTypeEmail }
func (CheckboxKind) Type() FieldType    { return FieldTypeCheckbox }
func (EnumerationKind) Type() FieldType { return FieldTypeEnumeration }
func (ImageKind) Type() FieldType       { return FieldTypeImage }
func (FileKind) Type() FieldType        { return FieldTypeFile }

func (TextKind) fieldKind()        {}
func (IntegerKind) fieldKind()     {}
func (DecimalKind) fieldKind()     {}
func (MoneyKind) fieldKind()       {}
func (ProgressKind) fieldKind()    {}
func (DateTimeKind) fieldKind()    {}
func (IntervalKind) fieldKind()    {}
func (WebLinkKind) fieldKind()     {}
func (EmailKind) fieldKind()       {}
func (CheckboxKind) fieldKind()    {}
func (EnumerationKind) fieldKind() {}
func (ImageKind) fieldKind()       {}
func (FileKind) fieldKind()        {}

func (k TextKind) MarshalJSON() ([]byte, error) {
	type plain TextKind
	return tagKind(k.Type(), plain(k))
}

func (k IntegerKind) MarshalJSON() ([]byte, error) {
	type plain IntegerKind
	return tagKind(k.Type(), plain(k))
}

func (k DecimalKind) MarshalJSON() ([]byte, error) {
	type plain DecimalKind
	return tagKind(k.Type(), plain(k))
}

func (k MoneyKind) MarshalJSON() ([]byte, error) {
	type plain MoneyKind
	return tagKind(k.Type(), plain(k))
}

func (k ProgressKind) MarshalJSON() ([]byte, error) {
	type plain ProgressKind
	return tagKind(k.Type(), plain(k))
}

func (k DateTimeKind) MarshalJSON() ([]byte, error) {
	type plain DateTimeKind
	return tagKind(k.Type(), plain(k))
}

func (k IntervalKind) MarshalJSON() ([]byte, error) {
	type plain IntervalKind
	return tagKind(k.Type(), plain(k))
}

func (k WebLinkKind) MarshalJSON() ([]byte, error) {
	type plain WebLinkKind
	return tagKind(k.Type(), plain(k))
}

func (k EmailKind) MarshalJSON() ([]byte, error) {
	type plain EmailKind
	return tagKind(k.Type(), plain(k))
}

func (k CheckboxKind) MarshalJSON() ([]byte, error) {
	type plain CheckboxKind
	return tagKind(k.Type(), plain(k))
}

func (k EnumerationKind) MarshalJSON() ([]byte, error) {
	type plain EnumerationKind
	return tagKind(k.Type(), plain(k))
}

func (k ImageKind) MarshalJSON() ([]byte, error) {
	type plain ImageKind
	return tagKind(k.Type(), plain(k))
}

func (k FileKind) MarshalJSON() ([]byte, error) {
	type plain FileKind
	return tagKind(k.Type(), plain(k))
}

// tagKind encodes v and injects the "type" tag.
func tagKind(t FieldType, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "type", string(t))
}

// DecodeFieldKind decodes a tagged field kind object into its variant.
func DecodeFieldKind(data []byte) (FieldKind, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return nil, errors.New(ErrFieldKindMalformed, "field kind must be a JSON object")
	}

	tag := gjson.GetBytes(data, "type")
	if !tag.Exists() {
		return nil, errors.New(ErrFieldKindMalformed, "field kind has no type tag")
	}
	if tag.Type != gjson.String {
		return nil, errors.Newf(ErrFieldKindMalformed, "field kind type tag must be a string, got %s", tag.Raw)
	}

	switch FieldType(tag.Str) {
	case FieldTypeText:
		return decodeKind[TextKind](data)
	case FieldTypeInteger:
		return decodeKind[IntegerKind](data)
	case FieldTypeDecimal:
		return decodeKind[DecimalKind](data)
	case FieldTypeMoney:
		return decodeKind[MoneyKind](data)
	case FieldTypeProgress:
		return decodeKind[ProgressKind](data)
	case FieldTypeDateTime:
		return decodeKind[DateTimeKind](data)
	case FieldTypeInterval:
		return decodeKind[IntervalKind](data)
	case FieldTypeWebLink:
		return decodeKind[WebLinkKind](data)
	case FieldTypeEmail:
		return decodeKind[EmailKind](data)
	case FieldTypeCheckbox:
		return CheckboxKind{}, nil
	case FieldTypeEnumeration:
		return decodeKind[EnumerationKind](data)
	case FieldTypeImage:
		return decodeKind[ImageKind](data)
	case FieldTypeFile:
		return decodeKind[FileKind](data)
	}

	return nil, errors.Newf(ErrUnknownFieldType, "unknown field type %q", tag.Str).AddContext("type", tag.Str)
}

func decodeKind[K FieldKind](data []byte) (FieldKind, error) {
	var kind K
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, errors.Wrap(ErrFieldKindMalformed, err, "failed to decode field kind")
	}
	return kind, nil
}

// IsRequired reports whether the kind forbids empty cells. Progress and
// Checkbox always hold a value.
func IsRequired(kind FieldKind) bool {
	switch k := kind.(type) {
	case TextKind:
		return k.IsRequired
	case IntegerKind:
		return k.IsRequired
	case DecimalKind:
		return k.IsRequired
	case MoneyKind:
		return k.IsRequired
	case ProgressKind:
		return true
	case DateTimeKind:
		return k.IsRequired
	case IntervalKind:
		return k.IsRequired
	case WebLinkKind:
		return k.IsRequired
	case EmailKind:
		return k.IsRequired
	case CheckboxKind:
		return true
	case EnumerationKind:
		return k.IsRequired
	case ImageKind:
		return k.IsRequired
	case FileKind:
		return k.IsRequired
	}
	return false
}
