package types

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for the types package
var (
	// Field kind codec errors
	ErrUnknownFieldType   = errors.MustNewCode("types.unknown_field_type")
	ErrFieldKindMalformed = errors.MustNewCode("types.field_kind_malformed")

	// Cell errors
	ErrCellMalformed  = errors.MustNewCode("types.cell_malformed")
	ErrCellMismatch   = errors.MustNewCode("types.cell_mismatch")
	ErrCellKeyInvalid = errors.MustNewCode("types.cell_key_invalid")

	// Date handling
	ErrInvalidDate = errors.MustNewCode("types.invalid_date")
)
