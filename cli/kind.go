package cli

import (
	"strconv"
	"strings"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// kindOptions holds the flags that shape a field kind. Only flags the user
// actually set are applied, so an update keeps every other constraint.
type kindOptions struct {
	fieldType  string
	required   bool
	min        string
	max        string
	format     string
	steps      int64
	scientific bool
	precision  int64
	scale      int64
	values     string
	defaultKey int64
}

func (o *kindOptions) register(flags *pflag.FlagSet) {
	flags.StringVar(&o.fieldType, "type", "", "field type: "+strings.Join(fieldTypeNames(), ", "))
	flags.BoolVar(&o.required, "required", false, "entries must set this field")
	flags.StringVar(&o.min, "min", "", "range start (Integer, Decimal, Money, DateTime)")
	flags.StringVar(&o.max, "max", "", "range end (Integer, Decimal, Money, DateTime)")
	flags.StringVar(&o.format, "format-string", "", "strftime display format (DateTime)")
	flags.Int64Var(&o.steps, "steps", 100, "total steps (Progress)")
	flags.BoolVar(&o.scientific, "scientific", false, "display in scientific notation (Decimal)")
	flags.Int64Var(&o.precision, "precision", 0, "number precision (Decimal)")
	flags.Int64Var(&o.scale, "scale", 0, "number scale (Decimal)")
	flags.StringVar(&o.values, "values", "", "enumeration values as key=label pairs, for example 1=low,2=high")
	flags.Int64Var(&o.defaultKey, "default", 0, "default enumeration key")
}

func fieldTypeNames() []string {
	names := make([]string, 0, len(types.FieldTypes))
	for _, t := range types.FieldTypes {
		names = append(names, string(t))
	}
	return names
}

// newKind returns the kind a fresh field of type t starts from.
func newKind(t types.FieldType) types.FieldKind {
	switch t {
	case types.FieldTypeText:
		return types.TextKind{}
	case types.FieldTypeInteger:
		return types.IntegerKind{}
	case types.FieldTypeDecimal:
		return types.DecimalKind{}
	case types.FieldTypeMoney:
		return types.MoneyKind{}
	case types.FieldTypeProgress:
		return types.ProgressKind{TotalSteps: 100}
	case types.FieldTypeDateTime:
		return types.DateTimeKind{}
	case types.FieldTypeInterval:
		return types.IntervalKind{}
	case types.FieldTypeWebLink:
		return types.WebLinkKind{}
	case types.FieldTypeEmail:
		return types.EmailKind{}
	case types.FieldTypeCheckbox:
		return types.CheckboxKind{}
	case types.FieldTypeEnumeration:
		return types.EnumerationKind{Values: map[int64]string{}}
	case types.FieldTypeImage:
		return types.ImageKind{}
	case types.FieldTypeFile:
		return types.FileKind{}
	}
	return nil
}

// buildKind applies the changed kind flags on top of base. A --type that
// differs from base starts over from an empty kind of that type; with no
// base the type is mandatory.
func buildKind(base types.FieldKind, flags *pflag.FlagSet, o *kindOptions) (types.FieldKind, error) {
	kind := base
	if flags.Changed("type") {
		t, err := types.ParseFieldType(o.fieldType)
		if err != nil {
			return nil, err
		}
		if kind == nil || kind.Type() != t {
			kind = newKind(t)
		}
	}
	if kind == nil {
		return nil, errors.New(ErrKindFlagInvalid, "--type is required")
	}

	changed := flags.Changed
	var err error

	switch k := kind.(type) {
	case types.TextKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	case types.IntegerKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		if k.RangeStart, err = boundFlag(changed("min"), "min", o.min, k.RangeStart, parseInt64); err != nil {
			return nil, err
		}
		if k.RangeEnd, err = boundFlag(changed("max"), "max", o.max, k.RangeEnd, parseInt64); err != nil {
			return nil, err
		}
		kind = k
	case types.DecimalKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		setIf(changed("scientific"), &k.ScientificNotation, o.scientific)
		if k.RangeStart, err = boundFlag(changed("min"), "min", o.min, k.RangeStart, parseFloat64); err != nil {
			return nil, err
		}
		if k.RangeEnd, err = boundFlag(changed("max"), "max", o.max, k.RangeEnd, parseFloat64); err != nil {
			return nil, err
		}
		if changed("precision") {
			k.NumberPrecision = &o.precision
		}
		if changed("scale") {
			k.NumberScale = &o.scale
		}
		kind = k
	case types.MoneyKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		if k.RangeStart, err = boundFlag(changed("min"), "min", o.min, k.RangeStart, decimal.NewFromString); err != nil {
			return nil, err
		}
		if k.RangeEnd, err = boundFlag(changed("max"), "max", o.max, k.RangeEnd, decimal.NewFromString); err != nil {
			return nil, err
		}
		kind = k
	case types.ProgressKind:
		if changed("steps") {
			k.TotalSteps = o.steps
		}
		kind = k
	case types.DateTimeKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		setIf(changed("format-string"), &k.DateTimeFormat, o.format)
		if k.RangeStart, err = boundFlag(changed("min"), "min", o.min, k.RangeStart, parseDateBound); err != nil {
			return nil, err
		}
		if k.RangeEnd, err = boundFlag(changed("max"), "max", o.max, k.RangeEnd, parseDateBound); err != nil {
			return nil, err
		}
		kind = k
	case types.IntervalKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	case types.WebLinkKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	case types.EmailKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	case types.EnumerationKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		if changed("values") {
			values, err := parseEnumValues(o.values)
			if err != nil {
				return nil, err
			}
			k.Values = values
		}
		setIf(changed("default"), &k.Default, o.defaultKey)
		kind = k
	case types.ImageKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	case types.FileKind:
		setIf(changed("required"), &k.IsRequired, o.required)
		kind = k
	}

	return kind, nil
}

func setIf[T any](ok bool, dst *T, v T) {
	if ok {
		*dst = v
	}
}

// boundFlag parses a range flag. An empty value clears the bound; an
// unchanged flag keeps the current one.
func boundFlag[T any](changed bool, name, raw string, current *T, parse func(string) (T, error)) (*T, error) {
	if !changed {
		return current, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := parse(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrKindFlagInvalid, err, "invalid --%s %q", name, raw).AddContext("flag", name)
	}
	return &v, nil
}

func parseInt64(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func parseFloat64(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func parseDateBound(raw string) (types.DateBound, error) {
	t, err := types.ParseDateTime(raw)
	if err != nil {
		return types.DateBound{}, err
	}
	return *types.NewDateBound(t), nil
}

// parseEnumValues reads "1=low,2=high" into an enumeration value map.
func parseEnumValues(raw string) (map[int64]string, error) {
	values := make(map[int64]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, label, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, errors.Newf(ErrKindFlagInvalid, "invalid enumeration value %q (want key=label)", pair)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrKindFlagInvalid, err, "invalid enumeration key %q", key)
		}
		values[n] = strings.TrimSpace(label)
	}
	return values, nil
}
