package http

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for the dev server
var (
	ErrListenFailed   = errors.MustNewCode("server_http.listen_failed")
	ErrShutdownFailed = errors.MustNewCode("server_http.shutdown_failed")
)
