package config

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for client config package
var (
	// File operation errors
	ErrConfigFileReadFailed    = errors.MustNewCode("client_config.file_read_failed")
	ErrConfigFileParseFailed   = errors.MustNewCode("client_config.file_parse_failed")
	ErrConfigFileWriteFailed   = errors.MustNewCode("client_config.file_write_failed")
	ErrConfigFileMarshalFailed = errors.MustNewCode("client_config.file_marshal_failed")

	// Validation errors
	ErrServerAddressEmpty = errors.MustNewCode("client_config.server_address_empty")
	ErrServerPortInvalid  = errors.MustNewCode("client_config.server_port_invalid")
	ErrServerURLInvalid   = errors.MustNewCode("client_config.server_url_invalid")
	ErrTimeoutInvalid     = errors.MustNewCode("client_config.timeout_invalid")
	ErrSSLModeInvalid     = errors.MustNewCode("client_config.ssl_mode_invalid")
	ErrLogLevelInvalid    = errors.MustNewCode("client_config.log_level_invalid")
	ErrLogFormatInvalid   = errors.MustNewCode("client_config.log_format_invalid")
)
