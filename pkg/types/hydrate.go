package types

import (
	"strconv"

	"github.com/Remi1095/chronicle/pkg/errors"
)

// Hydrate converts the text-encoded values of DateTime fields into dates:
// the range bounds of each DateTime kind and the cell stored under each
// DateTime field in every entry. Other kinds are left alone, Money bounds
// included.
//
// The input is not modified. The result has its own field and entry slices
// and its own cell maps. Values that are already dates are kept, so hydrating
// a hydrated table returns an equal table. Absent and null cells stay as they
// are. A string that does not parse as a date is an error.
func Hydrate(table DataTable) (DataTable, error) {
	out := DataTable{
		Table:   table.Table,
		Fields:  make([]Field, len(table.Fields)),
		Entries: make([]Entry, len(table.Entries)),
	}
	copy(out.Fields, table.Fields)
	for i, entry := range table.Entries {
		out.Entries[i] = Entry{EntryID: entry.EntryID, Cells: entry.Cells.Clone()}
	}

	for i, field := range out.Fields {
		kind, ok := field.FieldKind.(DateTimeKind)
		if !ok {
			continue
		}

		hydrated, err := hydrateDateTimeKind(kind)
		if err != nil {
			return DataTable{}, errors.AsError(err).AddContext("field_id", formatID(field.FieldID))
		}
		out.Fields[i].FieldKind = hydrated

		for j := range out.Entries {
			cells := out.Entries[j].Cells
			value, present := cells[field.FieldID]
			if !present {
				continue
			}
			cell, err := hydrateDateTimeCell(value)
			if err != nil {
				return DataTable{}, errors.AsError(err).
					AddContext("field_id", formatID(field.FieldID)).
					AddContext("entry_id", formatID(out.Entries[j].EntryID))
			}
			cells[field.FieldID] = cell
		}
	}

	return out, nil
}

func hydrateDateTimeKind(kind DateTimeKind) (DateTimeKind, error) {
	if kind.RangeStart != nil {
		start, err := kind.RangeStart.hydrate()
		if err != nil {
			return DateTimeKind{}, err
		}
		kind.RangeStart = start
	}
	if kind.RangeEnd != nil {
		end, err := kind.RangeEnd.hydrate()
		if err != nil {
			return DateTimeKind{}, err
		}
		kind.RangeEnd = end
	}
	return kind, nil
}

func hydrateDateTimeCell(cell Cell) (Cell, error) {
	text, ok := cell.(StringCell)
	if !ok {
		return cell, nil
	}
	t, err := ParseDateTime(string(text))
	if err != nil {
		return nil, err
	}
	return DateTimeCell(t), nil
}

func formatID(id ID) string {
	return strconv.FormatInt(int64(id), 10)
}
