package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wireDataTable = `{
	"table": {"table_id": 5, "user_id": 1, "name": "Tasks", "description": "", "created_at": "2024-01-01T00:00:00Z"},
	"fields": [
		{"table_id": 5, "user_id": 1, "field_id": 10, "name": "Due", "field_kind": {"type": "DateTime", "is_required": false, "range_start": "2024-01-01", "range_end": null, "date_time_format": "%Y-%m-%d"}},
		{"table_id": 5, "user_id": 1, "field_id": 11, "name": "Title", "field_kind": {"type": "Text", "is_required": true}},
		{"table_id": 5, "user_id": 1, "field_id": 12, "name": "Budget", "field_kind": {"type": "Money", "is_required": false, "range_start": "0", "range_end": "100"}}
	],
	"entries": [
		{"entry_id": 1, "cells": {"10": "2024-06-15T00:00:00Z", "11": "2024-06-15T00:00:00Z", "12": 5}},
		{"entry_id": 2, "cells": {"10": "2023-01-01T00:00:00Z", "11": "old"}},
		{"entry_id": 3, "cells": {"10": null}},
		{"entry_id": 4, "cells": {}}
	]
}`

func decodeWireTable(t *testing.T) DataTable {
	t.Helper()
	var table DataTable
	require.NoError(t, json.Unmarshal([]byte(wireDataTable), &table))
	return table
}

func TestHydrateDateTimeFields(t *testing.T) {
	table := decodeWireTable(t)

	hydrated, err := Hydrate(table)
	require.NoError(t, err)

	field, ok := hydrated.Field(10)
	require.True(t, ok)
	kind, ok := field.FieldKind.(DateTimeKind)
	require.True(t, ok)
	require.NotNil(t, kind.RangeStart)
	assert.True(t, kind.RangeStart.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, kind.RangeEnd)
	assert.Equal(t, "%Y-%m-%d", kind.DateTimeFormat)

	first, ok := hydrated.Entries[0].Cells[10].(DateTimeCell)
	require.True(t, ok)
	assert.True(t, first.Time().Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))

	second, ok := hydrated.Entries[1].Cells[10].(DateTimeCell)
	require.True(t, ok)
	assert.True(t, second.Time().Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, NullCell{}, hydrated.Entries[2].Cells[10])
	_, present := hydrated.Entries[3].Cells[10]
	assert.False(t, present)
}

func TestHydrateLeavesOtherKindsAlone(t *testing.T) {
	table := decodeWireTable(t)

	hydrated, err := Hydrate(table)
	require.NoError(t, err)

	// A date-looking string in a Text field stays text.
	assert.Equal(t, StringCell("2024-06-15T00:00:00Z"), hydrated.Entries[0].Cells[11])
	assert.Equal(t, NumberCell(5), hydrated.Entries[0].Cells[12])
	assert.Equal(t, table.Fields[1], hydrated.Fields[1])

	money, ok := hydrated.Fields[2].FieldKind.(MoneyKind)
	require.True(t, ok)
	assert.True(t, money.RangeEnd.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, table.Table, hydrated.Table)
}

func TestHydrateDoesNotModifyInput(t *testing.T) {
	table := decodeWireTable(t)

	_, err := Hydrate(table)
	require.NoError(t, err)

	assert.Equal(t, StringCell("2024-06-15T00:00:00Z"), table.Entries[0].Cells[10])
	kind := table.Fields[0].FieldKind.(DateTimeKind)
	assert.False(t, kind.RangeStart.IsHydrated())
	assert.Equal(t, "2024-01-01", kind.RangeStart.Raw)
}

func TestHydrateTwiceIsStable(t *testing.T) {
	once, err := Hydrate(decodeWireTable(t))
	require.NoError(t, err)

	twice, err := Hydrate(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestHydrateHydratedBoundWithoutText(t *testing.T) {
	start := time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC)
	table := DataTable{
		Fields: []Field{{FieldID: 1, FieldKind: DateTimeKind{RangeStart: NewDateBound(start)}}},
	}

	hydrated, err := Hydrate(table)
	require.NoError(t, err)

	kind := hydrated.Fields[0].FieldKind.(DateTimeKind)
	assert.True(t, kind.RangeStart.Time.Equal(start))
}

func TestHydrateEmptyTable(t *testing.T) {
	hydrated, err := Hydrate(DataTable{Table: Table{TableID: -1}})
	require.NoError(t, err)
	assert.Equal(t, ID(-1), hydrated.Table.TableID)
	assert.Empty(t, hydrated.Fields)
	assert.Empty(t, hydrated.Entries)
}

func TestHydrateMalformedDates(t *testing.T) {
	t.Run("cell", func(t *testing.T) {
		table := decodeWireTable(t)
		table.Entries[1].Cells[10] = StringCell("not a date")

		_, err := Hydrate(table)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, ErrInvalidDate))
		assert.Equal(t, "10", errors.GetContext(err)["field_id"])
		assert.Equal(t, "2", errors.GetContext(err)["entry_id"])
	})

	t.Run("bound", func(t *testing.T) {
		table := DataTable{
			Fields: []Field{{FieldID: 4, FieldKind: DateTimeKind{RangeEnd: RawDateBound("eventually")}}},
		}

		_, err := Hydrate(table)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, ErrInvalidDate))
		assert.Equal(t, "4", errors.GetContext(err)["field_id"])
	})
}
