package types

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/tidwall/gjson"
)

// Cell is a single value stored for one field of one entry. The variants
// follow the JSON primitive they travel as, plus DateTimeCell for hydrated
// dates:
//
//	StringCell    Text, WebLink, Email (and DateTime before hydration)
//	NumberCell    Integer, Decimal, Money, Progress, Enumeration
//	BoolCell      Checkbox
//	DateTimeCell  DateTime
//	NullCell      Interval, Image, File, or an empty value of any kind
type Cell interface {
	cell()
}

type StringCell string

type NumberCell float64

type BoolCell bool

type DateTimeCell time.Time

type NullCell struct{}

func (StringCell) cell()   {}
func (NumberCell) cell()   {}
func (BoolCell) cell()     {}
func (DateTimeCell) cell() {}
func (NullCell) cell()     {}

func (c DateTimeCell) Time() time.Time {
	return time.Time(c)
}

func (c DateTimeCell) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatDateTime(time.Time(c)))
}

func (NullCell) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// DecodeCell maps one JSON primitive to its cell variant.
func DecodeCell(data []byte) (Cell, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Newf(ErrCellMalformed, "invalid JSON cell %q", string(data))
	}

	value := gjson.ParseBytes(data)
	switch value.Type {
	case gjson.String:
		return StringCell(value.Str), nil
	case gjson.Number:
		return NumberCell(value.Num), nil
	case gjson.True, gjson.False:
		return BoolCell(value.Bool()), nil
	case gjson.Null:
		return NullCell{}, nil
	}

	return nil, errors.Newf(ErrCellMalformed, "cell must be a JSON primitive, got %s", value.Raw)
}

// Cells maps field ids to the values of one entry.
type Cells map[ID]Cell

func (c *Cells) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(ErrCellMalformed, err, "cells must be a JSON object")
	}

	cells := make(Cells, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return errors.Wrapf(ErrCellKeyInvalid, err, "cell key %q is not a field id", key).AddContext("key", key)
		}
		cell, err := DecodeCell(value)
		if err != nil {
			return errors.AsError(err).AddContext("field_id", key)
		}
		cells[ID(id)] = cell
	}

	*c = cells
	return nil
}

// Clone returns a shallow copy. Cell values are immutable, so the copy is
// independent of c.
func (c Cells) Clone() Cells {
	if c == nil {
		return nil
	}
	out := make(Cells, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Entry is one row of a table.
type Entry struct {
	EntryID ID    `json:"entry_id"`
	Cells   Cells `json:"cells"`
}
