package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target URL")

	// Fetch errors
	ErrFetchFailed = errors.New("fetch failed")

	// Scan result errors
	ErrScanResultNotFound = errors.New("scan result not found")
	ErrUnknownCategory    = errors.New("unknown finding category")

	// Repository errors
	ErrRepositoryOperation   = errors.New("repository operation failed")
	ErrSerializationFailed   = errors.New("serialization failed")
	ErrDeserializationFailed = errors.New("deserialization failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
