package domain

import "errors"

var (
	// ErrInvalidArgument indicates a format or resolution outside the closed enumerations.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates an unknown asset or job identifier.
	ErrNotFound = errors.New("resource not found")
	// ErrAccessDenied indicates the requester may not operate on the asset.
	ErrAccessDenied = errors.New("access denied")
	// ErrSourceUnavailable indicates the input file was missing at execution time.
	ErrSourceUnavailable = errors.New("source file unavailable")
	// ErrEncodeFailed indicates the encode process failed or produced no usable output.
	ErrEncodeFailed = errors.New("encode failed")
	// ErrStoreUnavailable indicates a transient persistence failure.
	ErrStoreUnavailable = errors.New("job store unavailable")
	// ErrDuplicateJob indicates an equivalent non-error job already exists.
	ErrDuplicateJob = errors.New("equivalent job already exists")
)
