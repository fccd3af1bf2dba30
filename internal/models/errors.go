package models

import "errors"

// Sentinel errors shared across the tracker. Wrap with fmt.Errorf("...: %w")
// and match with errors.Is.
var (
	// ErrInvalidArgument marks structurally invalid input: negative limits,
	// unknown enum values, duplicate ids, bad date ranges.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState marks a derived computation that is undefined for the
	// current data, e.g. average velocity with no completed iterations.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound marks a lookup by name or id with no match.
	ErrNotFound = errors.New("not found")
)
