package service

import "errors"

// Common service errors
var (
	// ErrUnknownKind is returned when a request names an entity kind the
	// gateway does not serve
	ErrUnknownKind = errors.New("unknown entity kind")

	// ErrNoAssociationType is returned when the CRM's vocabulary between two
	// object types is empty and no override is configured
	ErrNoAssociationType = errors.New("no association type available")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
