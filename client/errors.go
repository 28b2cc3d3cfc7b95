package client

import "github.com/Remi1095/chronicle/pkg/errors"

// Error codes for client package
var (
	// Setup errors
	ErrClientCreationFailed = errors.MustNewCode("client.creation_failed")

	// Request errors
	ErrFieldKindMissing = errors.MustNewCode("client.field_kind_missing")

	// Response errors
	ErrHydrationFailed = errors.MustNewCode("client.hydration_failed")
)
