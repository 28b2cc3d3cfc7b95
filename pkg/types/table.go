package types

import "time"

// ID identifies tables, fields, entries and users.
type ID int64

// Table is a named collection of fields and entries owned by a user.
type Table struct {
	TableID     ID         `json:"table_id"`
	UserID      ID         `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// DataTable is a table together with all of its fields and entries.
type DataTable struct {
	Table   Table   `json:"table"`
	Fields  []Field `json:"fields"`
	Entries []Entry `json:"entries"`
}

// Field returns the field with the given id.
func (d DataTable) Field(id ID) (Field, bool) {
	for _, f := range d.Fields {
		if f.FieldID == id {
			return f, true
		}
	}
	return Field{}, false
}
