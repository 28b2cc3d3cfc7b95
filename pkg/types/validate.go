package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// CheckCell reports whether cell has the shape the kind allows. A nil or
// null cell is always accepted; whether it may be empty is IsRequired's call.
func CheckCell(kind FieldKind, cell Cell) error {
	if cell == nil {
		return nil
	}
	if _, ok := cell.(NullCell); ok {
		return nil
	}

	switch k := kind.(type) {
	case TextKind, WebLinkKind, EmailKind:
		if _, ok := cell.(StringCell); ok {
			return nil
		}
	case IntegerKind, ProgressKind:
		if n, ok := cell.(NumberCell); ok && isIntegral(n) {
			return nil
		}
	case DecimalKind, MoneyKind:
		if _, ok := cell.(NumberCell); ok {
			return nil
		}
	case DateTimeKind:
		switch c := cell.(type) {
		case DateTimeCell:
			return nil
		case StringCell:
			if _, err := ParseDateTime(string(c)); err != nil {
				return errors.Wrap(ErrCellMismatch, err, "DateTime cell is not a date")
			}
			return nil
		}
	case CheckboxKind:
		if _, ok := cell.(BoolCell); ok {
			return nil
		}
	case EnumerationKind:
		if n, ok := cell.(NumberCell); ok && isIntegral(n) {
			if _, known := k.Values[int64(n)]; !known {
				return errors.Newf(ErrCellMismatch, "%d is not an enumeration value", int64(n))
			}
			return nil
		}
	case IntervalKind, ImageKind, FileKind:
		// no value representation yet
	}

	return errors.Newf(ErrCellMismatch, "%s field cannot hold %s", kindName(kind), describeCell(cell))
}

// ParseCell converts user input into the cell variant of kind. Empty input
// is a null cell, except for text-like kinds where it is the empty string.
func ParseCell(kind FieldKind, input string) (Cell, error) {
	text := strings.TrimSpace(input)

	switch kind.(type) {
	case TextKind, WebLinkKind, EmailKind:
		return StringCell(input), nil
	}

	if text == "" {
		return NullCell{}, nil
	}

	switch k := kind.(type) {
	case IntegerKind, ProgressKind:
		n, err := parseInteger(text)
		if err != nil {
			return nil, errors.Wrapf(ErrCellMismatch, err, "%q is not an integer", input)
		}
		return NumberCell(n), nil
	case DecimalKind:
		f, err := cast.ToFloat64E(text)
		if err != nil {
			return nil, errors.Wrapf(ErrCellMismatch, err, "%q is not a number", input)
		}
		return NumberCell(f), nil
	case MoneyKind:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, errors.Wrapf(ErrCellMismatch, err, "%q is not an amount", input)
		}
		return NumberCell(d.InexactFloat64()), nil
	case DateTimeKind:
		t, err := ParseDateTime(text)
		if err != nil {
			return nil, err
		}
		return DateTimeCell(t), nil
	case CheckboxKind:
		b, err := cast.ToBoolE(text)
		if err != nil {
			return nil, errors.Wrapf(ErrCellMismatch, err, "%q is not a boolean", input)
		}
		return BoolCell(b), nil
	case EnumerationKind:
		if n, err := parseInteger(text); err == nil {
			if _, ok := k.Values[n]; ok {
				return NumberCell(n), nil
			}
		}
		for value, label := range k.Values {
			if strings.EqualFold(label, text) {
				return NumberCell(value), nil
			}
		}
		return nil, errors.Newf(ErrCellMismatch, "%q is not an enumeration value", input)
	}

	return nil, errors.Newf(ErrCellMismatch, "%s field cannot hold a value", kindName(kind))
}

// parseInteger reads base 10 text only: "010" is ten and prefixed forms
// such as "0x1F" are rejected.
func parseInteger(text string) (int64, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() || !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%s is not a 64-bit integer", text)
	}
	return d.IntPart(), nil
}

func isIntegral(n NumberCell) bool {
	f := float64(n)
	return !math.IsInf(f, 0) && f == math.Trunc(f)
}

func kindName(kind FieldKind) string {
	if kind == nil {
		return "untyped"
	}
	return string(kind.Type())
}

func describeCell(cell Cell) string {
	switch c := cell.(type) {
	case StringCell:
		return fmt.Sprintf("text %q", string(c))
	case NumberCell:
		return fmt.Sprintf("number %v", float64(c))
	case BoolCell:
		return fmt.Sprintf("boolean %t", bool(c))
	case DateTimeCell:
		return "date " + FormatDateTime(c.Time())
	}
	return fmt.Sprintf("%T", cell)
}
