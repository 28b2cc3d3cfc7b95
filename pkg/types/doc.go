// Package types defines the data model shared by the chronicle client and the
// development backend: tables, typed fields, entries and their cells.
//
// A field's kind is a closed set of variants (see FieldKind). The kind of a
// field fixes the shape of every cell stored under it, and DateTime values,
// which JSON cannot represent natively, travel as text until Hydrate turns
// them into time.Time.
package types
