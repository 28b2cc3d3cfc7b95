package cli

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for the command line
var (
	ErrInvalidArgument = errors.MustNewCode("cli.invalid_argument")
	ErrInvalidFormat   = errors.MustNewCode("cli.invalid_format")
	ErrUnknownField    = errors.MustNewCode("cli.unknown_field")
	ErrKindFlagInvalid = errors.MustNewCode("cli.kind_flag_invalid")
	ErrOutputFailed    = errors.MustNewCode("cli.output_failed")
)
