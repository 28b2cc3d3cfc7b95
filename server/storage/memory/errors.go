package memory

import (
	"sort"
	"strings"

	"github.com/Remi1095/chronicle/pkg/errors"
)

// Error codes for memory storage package
var (
	// Lookup errors
	ErrTableNotFound = errors.MustNewCode("memory.table_not_found")
	ErrFieldNotFound = errors.MustNewCode("memory.field_not_found")
	ErrEntryNotFound = errors.MustNewCode("memory.entry_not_found")

	// Validation errors
	ErrValidationFailed = errors.MustNewCode("memory.validation_failed")
)

// Messages reported under the "name", "range" and "default" keys.
const (
	MsgTableNameConflict = "Table name already used"
	MsgFieldNameConflict = "Field name already used for this table"
	MsgNameRequired      = "Name is required"
	MsgInvalidRange      = "Range start bound is greater than end bound"
	MsgInvalidDefault    = "Default value does not map to a value"
	MsgInvalidDate       = "Invalid date"
	MsgKindRequired      = "Field kind is required"
)

// ValidationError reports rejected input, one message per offending key.
// The dev server sends Fields as the body of a 422 response.
type ValidationError struct {
	Fields map[string]string
}

func invalid(key, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{key: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key + ": " + e.Fields[key]
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Transform() *errors.Error {
	err := errors.New(ErrValidationFailed, e.Error())
	for key, message := range e.Fields {
		err.AddContext(key, message)
	}
	return err
}

// IsNotFound reports whether err names a missing table, field or entry.
func IsNotFound(err error) bool {
	return errors.HasCode(err, ErrTableNotFound) ||
		errors.HasCode(err, ErrFieldNotFound) ||
		errors.HasCode(err, ErrEntryNotFound)
}
