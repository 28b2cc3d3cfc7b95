package http

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for client http package
var (
	// Request errors
	ErrEncodeFailed       = errors.MustNewCode("client_http.encode_failed")
	ErrRequestBuildFailed = errors.MustNewCode("client_http.request_build_failed")

	// Response errors
	ErrDecodeFailed = errors.MustNewCode("client_http.decode_failed")
)
