package memory

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(zerolog.Nop())
}

func requireValidation(t *testing.T, err error, key, message string) {
	t.Helper()
	require.Error(t, err)

	var validation *ValidationError
	require.True(t, stderrors.As(err, &validation), "got %T: %v", err, err)
	assert.Equal(t, message, validation.Fields[key], "fields: %v", validation.Fields)
	assert.True(t, errors.HasCode(err, ErrValidationFailed))
}

func int64Ptr(v int64) *int64 { return &v }

func TestTables(t *testing.T) {
	store := newTestStore(t)

	tasks, err := store.CreateTable("Tasks", "")
	require.NoError(t, err)
	assert.Equal(t, types.ID(1), tasks.TableID)
	assert.Equal(t, DevUserID, tasks.UserID)
	assert.False(t, tasks.CreatedAt.IsZero())
	assert.Nil(t, tasks.UpdatedAt)

	notes, err := store.CreateTable("  Notes ", "")
	require.NoError(t, err)
	assert.Equal(t, "Notes", notes.Name)

	_, err = store.CreateTable("Tasks", "again")
	requireValidation(t, err, "name", MsgTableNameConflict)

	_, err = store.CreateTable(" ", "")
	requireValidation(t, err, "name", MsgNameRequired)

	updated, err := store.UpdateTable(tasks.TableID, "Tasks", "renamed in place")
	require.NoError(t, err)
	assert.Equal(t, "renamed in place", updated.Description)
	require.NotNil(t, updated.UpdatedAt)

	_, err = store.UpdateTable(tasks.TableID, "Notes", "")
	requireValidation(t, err, "name", MsgTableNameConflict)

	assert.Equal(t, []types.Table{updated, notes}, store.ListTables())

	require.NoError(t, store.DeleteTable(tasks.TableID))
	assert.Equal(t, []types.Table{notes}, store.ListTables())

	err = store.DeleteTable(tasks.TableID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.HasCode(err, ErrTableNotFound))
}

func TestFieldNamesAreUniquePerTable(t *testing.T) {
	store := newTestStore(t)
	first, err := store.CreateTable("First", "")
	require.NoError(t, err)
	second, err := store.CreateTable("Second", "")
	require.NoError(t, err)

	_, err = store.CreateField(first.TableID, "Title", types.TextKind{})
	require.NoError(t, err)

	_, err = store.CreateField(first.TableID, "Title", types.EmailKind{})
	requireValidation(t, err, "name", MsgFieldNameConflict)

	_, err = store.CreateField(second.TableID, "Title", types.TextKind{})
	require.NoError(t, err)

	_, err = store.CreateField(99, "Title", types.TextKind{})
	assert.True(t, IsNotFound(err))
}

func TestFieldKindValidation(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Kinds", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		kind    types.FieldKind
		key     string
		message string
	}{
		{"integer range", types.IntegerKind{RangeStart: int64Ptr(5), RangeEnd: int64Ptr(1)}, "range", MsgInvalidRange},
		{"decimal range", types.DecimalKind{RangeStart: ptrFloat(2.5), RangeEnd: ptrFloat(-1)}, "range", MsgInvalidRange},
		{"money range", types.MoneyKind{RangeStart: ptrDecimal("10.00"), RangeEnd: ptrDecimal("9.99")}, "range", MsgInvalidRange},
		{"date range", types.DateTimeKind{RangeStart: types.RawDateBound("2024-02-01"), RangeEnd: types.RawDateBound("2024-01-01")}, "range", MsgInvalidRange},
		{"date bound", types.DateTimeKind{RangeStart: types.RawDateBound("soon")}, "range", MsgInvalidDate},
		{"enumeration default", types.EnumerationKind{Values: map[int64]string{1: "a"}, Default: 2}, "default", MsgInvalidDefault},
		{"missing kind", nil, "field_kind", MsgKindRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.CreateField(table.TableID, tt.name, tt.kind)
			requireValidation(t, err, tt.key, tt.message)
		})
	}

	fields, err := store.ListFields(table.TableID)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestFieldKindNormalization(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Kinds", "")
	require.NoError(t, err)

	decimalField, err := store.CreateField(table.TableID, "Amount", types.DecimalKind{
		NumberPrecision: int64Ptr(0),
		NumberScale:     int64Ptr(-3),
	})
	require.NoError(t, err)
	kind := decimalField.FieldKind.(types.DecimalKind)
	assert.Equal(t, int64(1), *kind.NumberPrecision)
	assert.Equal(t, int64(0), *kind.NumberScale)

	progress, err := store.CreateField(table.TableID, "Done", types.ProgressKind{TotalSteps: -4})
	require.NoError(t, err)
	assert.Equal(t, types.ProgressKind{TotalSteps: 1}, progress.FieldKind)

	due, err := store.CreateField(table.TableID, "Due", types.DateTimeKind{
		RangeStart: types.RawDateBound("2024-01-01"),
	})
	require.NoError(t, err)
	dateKind := due.FieldKind.(types.DateTimeKind)
	assert.True(t, dateKind.RangeStart.IsHydrated())
	assert.Empty(t, dateKind.RangeStart.Raw)
	assert.True(t, dateKind.RangeStart.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	values := map[int64]string{1: "low"}
	enum, err := store.CreateField(table.TableID, "Level", types.EnumerationKind{Values: values, Default: 1})
	require.NoError(t, err)
	values[2] = "high"
	assert.Len(t, enum.FieldKind.(types.EnumerationKind).Values, 1)
}

func TestEntries(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Tasks", "")
	require.NoError(t, err)
	title, err := store.CreateField(table.TableID, "Title", types.TextKind{})
	require.NoError(t, err)
	due, err := store.CreateField(table.TableID, "Due", types.DateTimeKind{})
	require.NoError(t, err)

	entry, err := store.CreateEntry(table.TableID, types.Cells{
		title.FieldID: types.StringCell("write tests"),
		due.FieldID:   types.StringCell("2024-06-15T00:00:00Z"),
		999:           types.StringCell("dropped"),
	})
	require.NoError(t, err)
	assert.Len(t, entry.Cells, 2)
	assert.NotContains(t, entry.Cells, types.ID(999))

	stored, ok := entry.Cells[due.FieldID].(types.DateTimeCell)
	require.True(t, ok, "DateTime text is stored as a date")
	assert.True(t, stored.Time().Equal(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))

	_, err = store.CreateEntry(table.TableID, types.Cells{
		title.FieldID: types.NumberCell(3),
		due.FieldID:   types.StringCell("whenever"),
	})
	require.Error(t, err)
	var validation *ValidationError
	require.True(t, stderrors.As(err, &validation))
	assert.Contains(t, validation.Fields, formatID(title.FieldID))
	assert.Contains(t, validation.Fields, formatID(due.FieldID))

	updated, err := store.UpdateEntry(table.TableID, entry.EntryID, types.Cells{title.FieldID: types.NullCell{}})
	require.NoError(t, err)
	assert.Equal(t, types.Cells{title.FieldID: types.NullCell{}}, updated.Cells)

	_, err = store.UpdateEntry(table.TableID, 42, types.Cells{})
	assert.True(t, errors.HasCode(err, ErrEntryNotFound))

	data, err := store.GetDataTable(table.TableID)
	require.NoError(t, err)
	require.Len(t, data.Entries, 1)
	assert.Len(t, data.Fields, 2)

	require.NoError(t, store.DeleteEntry(table.TableID, entry.EntryID))
	err = store.DeleteEntry(table.TableID, entry.EntryID)
	assert.True(t, IsNotFound(err))
}

func TestReturnedValuesAreCopies(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Tasks", "")
	require.NoError(t, err)
	title, err := store.CreateField(table.TableID, "Title", types.TextKind{})
	require.NoError(t, err)
	entry, err := store.CreateEntry(table.TableID, types.Cells{title.FieldID: types.StringCell("a")})
	require.NoError(t, err)

	entry.Cells[title.FieldID] = types.StringCell("mutated")
	data, err := store.GetDataTable(table.TableID)
	require.NoError(t, err)
	data.Entries[0].Cells[title.FieldID] = types.StringCell("mutated again")

	again, err := store.GetDataTable(table.TableID)
	require.NoError(t, err)
	assert.Equal(t, types.StringCell("a"), again.Entries[0].Cells[title.FieldID])
}

func TestDeleteFieldRemovesCells(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Tasks", "")
	require.NoError(t, err)
	title, err := store.CreateField(table.TableID, "Title", types.TextKind{})
	require.NoError(t, err)
	done, err := store.CreateField(table.TableID, "Done", types.CheckboxKind{})
	require.NoError(t, err)
	_, err = store.CreateEntry(table.TableID, types.Cells{
		title.FieldID: types.StringCell("a"),
		done.FieldID:  types.BoolCell(true),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteField(table.TableID, title.FieldID))

	data, err := store.GetDataTable(table.TableID)
	require.NoError(t, err)
	assert.Equal(t, []types.Field{done}, data.Fields)
	assert.Equal(t, types.Cells{done.FieldID: types.BoolCell(true)}, data.Entries[0].Cells)

	err = store.DeleteField(table.TableID, title.FieldID)
	assert.True(t, errors.HasCode(err, ErrFieldNotFound))
}

func TestUpdateFieldDropsIncompatibleCells(t *testing.T) {
	store := newTestStore(t)
	table, err := store.CreateTable("Tasks", "")
	require.NoError(t, err)
	field, err := store.CreateField(table.TableID, "When", types.TextKind{})
	require.NoError(t, err)

	dated, err := store.CreateEntry(table.TableID, types.Cells{field.FieldID: types.StringCell("2024-01-01")})
	require.NoError(t, err)
	free, err := store.CreateEntry(table.TableID, types.Cells{field.FieldID: types.StringCell("next week")})
	require.NoError(t, err)

	updated, err := store.UpdateField(table.TableID, field.FieldID, "Due", types.DateTimeKind{})
	require.NoError(t, err)
	assert.Equal(t, "Due", updated.Name)
	require.NotNil(t, updated.UpdatedAt)

	data, err := store.GetDataTable(table.TableID)
	require.NoError(t, err)
	require.Len(t, data.Entries, 2)
	assert.Equal(t, dated.EntryID, data.Entries[0].EntryID)
	assert.IsType(t, types.DateTimeCell{}, data.Entries[0].Cells[field.FieldID])
	assert.Equal(t, free.EntryID, data.Entries[1].EntryID)
	assert.NotContains(t, data.Entries[1].Cells, field.FieldID)

	other, err := store.CreateField(table.TableID, "Other", types.TextKind{})
	require.NoError(t, err)
	_, err = store.UpdateField(table.TableID, other.FieldID, "Due", types.TextKind{})
	requireValidation(t, err, "name", MsgFieldNameConflict)
}

func ptrFloat(v float64) *float64 { return &v }

func ptrDecimal(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
