package memory

import (
	"strconv"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
)

// prepareCells validates incoming cells against the fields of the table and
// returns the cells to store. Unknown field ids are dropped. Every rejected
// cell is reported under its field id.
func (d *tableData) prepareCells(cells types.Cells) (types.Cells, error) {
	stored := make(types.Cells, len(cells))
	var rejected *ValidationError

	for _, field := range d.fields {
		cell, present := cells[field.FieldID]
		if !present {
			continue
		}

		converted, err := storeCell(field.FieldKind, cell)
		if err != nil {
			if rejected == nil {
				rejected = &ValidationError{Fields: make(map[string]string)}
			}
			rejected.Fields[formatID(field.FieldID)] = errors.AsError(err).Message
			continue
		}
		stored[field.FieldID] = converted
	}

	if rejected != nil {
		return nil, rejected
	}
	return stored, nil
}

// storeCell checks cell against kind and converts DateTime text to a date.
func storeCell(kind types.FieldKind, cell types.Cell) (types.Cell, error) {
	if cell == nil {
		return types.NullCell{}, nil
	}
	if err := types.CheckCell(kind, cell); err != nil {
		return nil, err
	}

	if _, ok := kind.(types.DateTimeKind); ok {
		if text, ok := cell.(types.StringCell); ok {
			t, err := types.ParseDateTime(string(text))
			if err != nil {
				return nil, err
			}
			return types.DateTimeCell(t), nil
		}
	}
	return cell, nil
}

func formatID(id types.ID) string {
	return strconv.FormatInt(int64(id), 10)
}
