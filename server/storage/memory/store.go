package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Remi1095/chronicle/pkg/errors"
	"github.com/Remi1095/chronicle/pkg/types"
	"github.com/rs/zerolog"
)

// DevUserID owns every table of the store.
const DevUserID types.ID = 1

// Store keeps tables, fields and entries in memory. It is safe for
// concurrent use. Values handed out are copies.
type Store struct {
	mu     sync.RWMutex
	tables map[types.ID]*tableData
	logger zerolog.Logger
	now    func() time.Time

	nextTableID types.ID
	nextFieldID types.ID
	nextEntryID types.ID
}

type tableData struct {
	table   types.Table
	fields  []types.Field
	entries []types.Entry
}

// NewStore creates an empty store
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		tables: make(map[types.ID]*tableData),
		logger: logger.With().Str("component", "memory-store").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ListTables returns the tables of the development user ordered by id.
func (s *Store) ListTables() []types.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables := make([]types.Table, 0, len(s.tables))
	for _, data := range s.tables {
		if data.table.UserID == DevUserID {
			tables = append(tables, data.table)
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].TableID < tables[j].TableID })
	return tables
}

func (s *Store) CreateTable(name, description string) (types.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := s.checkTableName(name, 0); err != nil {
		return types.Table{}, err
	}

	s.nextTableID++
	table := types.Table{
		TableID:     s.nextTableID,
		UserID:      DevUserID,
		Name:        name,
		Description: description,
		CreatedAt:   s.now(),
	}
	s.tables[table.TableID] = &tableData{table: table}

	s.logger.Debug().Int64("table_id", int64(table.TableID)).Str("name", name).Msg("Table created")
	return table, nil
}

func (s *Store) UpdateTable(tableID types.ID, name, description string) (types.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.Table{}, err
	}

	name = strings.TrimSpace(name)
	if err := s.checkTableName(name, tableID); err != nil {
		return types.Table{}, err
	}

	updatedAt := s.now()
	data.table.Name = name
	data.table.Description = description
	data.table.UpdatedAt = &updatedAt

	return data.table, nil
}

// DeleteTable removes a table with its fields and entries.
func (s *Store) DeleteTable(tableID types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.table(tableID); err != nil {
		return err
	}
	delete(s.tables, tableID)

	s.logger.Debug().Int64("table_id", int64(tableID)).Msg("Table deleted")
	return nil
}

func (s *Store) ListFields(tableID types.ID) ([]types.Field, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.table(tableID)
	if err != nil {
		return nil, err
	}
	return append([]types.Field{}, data.fields...), nil
}

func (s *Store) CreateField(tableID types.ID, name string, kind types.FieldKind) (types.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.Field{}, err
	}

	name = strings.TrimSpace(name)
	if err := data.checkFieldName(name, 0); err != nil {
		return types.Field{}, err
	}

	kind, err = normalizeKind(kind)
	if err != nil {
		return types.Field{}, err
	}

	s.nextFieldID++
	field := types.Field{
		TableID:   tableID,
		UserID:    data.table.UserID,
		FieldID:   s.nextFieldID,
		Name:      name,
		FieldKind: kind,
	}
	data.fields = append(data.fields, field)

	s.logger.Debug().
		Int64("table_id", int64(tableID)).
		Int64("field_id", int64(field.FieldID)).
		Str("type", string(kind.Type())).
		Msg("Field created")
	return field, nil
}

// UpdateField replaces the name and kind of a field. Stored cells the new
// kind cannot hold are removed.
func (s *Store) UpdateField(tableID, fieldID types.ID, name string, kind types.FieldKind) (types.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.Field{}, err
	}

	index, err := data.field(fieldID)
	if err != nil {
		return types.Field{}, err
	}

	name = strings.TrimSpace(name)
	if err := data.checkFieldName(name, fieldID); err != nil {
		return types.Field{}, err
	}

	kind, err = normalizeKind(kind)
	if err != nil {
		return types.Field{}, err
	}

	updatedAt := s.now()
	field := &data.fields[index]
	field.Name = name
	field.FieldKind = kind
	field.UpdatedAt = &updatedAt

	for i := range data.entries {
		cells := data.entries[i].Cells
		cell, present := cells[fieldID]
		if !present {
			continue
		}
		converted, err := storeCell(kind, cell)
		if err != nil {
			delete(cells, fieldID)
			continue
		}
		cells[fieldID] = converted
	}

	return *field, nil
}

// DeleteField removes a field and every cell stored under it.
func (s *Store) DeleteField(tableID, fieldID types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return err
	}

	index, err := data.field(fieldID)
	if err != nil {
		return err
	}

	data.fields = append(data.fields[:index], data.fields[index+1:]...)
	for _, entry := range data.entries {
		delete(entry.Cells, fieldID)
	}

	return nil
}

// GetDataTable returns a table with all of its fields and entries.
func (s *Store) GetDataTable(tableID types.ID) (types.DataTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.DataTable{}, err
	}

	entries := make([]types.Entry, len(data.entries))
	for i, entry := range data.entries {
		entries[i] = types.Entry{EntryID: entry.EntryID, Cells: entry.Cells.Clone()}
	}

	return types.DataTable{
		Table:   data.table,
		Fields:  append([]types.Field{}, data.fields...),
		Entries: entries,
	}, nil
}

// CreateEntry stores a new entry. Cells keyed by ids that are not fields of
// the table are dropped.
func (s *Store) CreateEntry(tableID types.ID, cells types.Cells) (types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.Entry{}, err
	}

	stored, err := data.prepareCells(cells)
	if err != nil {
		return types.Entry{}, err
	}

	s.nextEntryID++
	entry := types.Entry{EntryID: s.nextEntryID, Cells: stored}
	data.entries = append(data.entries, entry)

	return types.Entry{EntryID: entry.EntryID, Cells: stored.Clone()}, nil
}

// UpdateEntry replaces the cells of an entry.
func (s *Store) UpdateEntry(tableID, entryID types.ID, cells types.Cells) (types.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return types.Entry{}, err
	}

	index, err := data.entry(entryID)
	if err != nil {
		return types.Entry{}, err
	}

	stored, err := data.prepareCells(cells)
	if err != nil {
		return types.Entry{}, err
	}
	data.entries[index].Cells = stored

	return types.Entry{EntryID: entryID, Cells: stored.Clone()}, nil
}

func (s *Store) DeleteEntry(tableID, entryID types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.table(tableID)
	if err != nil {
		return err
	}

	index, err := data.entry(entryID)
	if err != nil {
		return err
	}
	data.entries = append(data.entries[:index], data.entries[index+1:]...)

	return nil
}

func (s *Store) table(tableID types.ID) (*tableData, error) {
	data, ok := s.tables[tableID]
	if !ok || data.table.UserID != DevUserID {
		return nil, errors.New(ErrTableNotFound, "Table not found").AddContext("table_id", formatID(tableID))
	}
	return data, nil
}

// checkTableName rejects an empty name or one already used by another
// table of the user. self is the table being renamed, or 0.
func (s *Store) checkTableName(name string, self types.ID) error {
	if name == "" {
		return invalid("name", MsgNameRequired)
	}
	for id, data := range s.tables {
		if id != self && data.table.UserID == DevUserID && data.table.Name == name {
			return invalid("name", MsgTableNameConflict)
		}
	}
	return nil
}

func (d *tableData) checkFieldName(name string, self types.ID) error {
	if name == "" {
		return invalid("name", MsgNameRequired)
	}
	for _, field := range d.fields {
		if field.FieldID != self && field.Name == name {
			return invalid("name", MsgFieldNameConflict)
		}
	}
	return nil
}

func (d *tableData) field(fieldID types.ID) (int, error) {
	for i, field := range d.fields {
		if field.FieldID == fieldID {
			return i, nil
		}
	}
	return 0, errors.New(ErrFieldNotFound, "Field not found").
		AddContext("table_id", formatID(d.table.TableID)).
		AddContext("field_id", formatID(fieldID))
}

func (d *tableData) entry(entryID types.ID) (int, error) {
	for i, entry := range d.entries {
		if entry.EntryID == entryID {
			return i, nil
		}
	}
	return 0, errors.New(ErrEntryNotFound, "Entry not found").
		AddContext("table_id", formatID(d.table.TableID)).
		AddContext("entry_id", formatID(entryID))
}
