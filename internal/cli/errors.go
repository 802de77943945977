package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrInvalidInterval indicates an interval flag that is not "X" or "X-Y" seconds.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrInvalidValue indicates a flag value outside its allowed set or range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrConflictingFlags indicates flags that cannot be combined.
	ErrConflictingFlags = errors.New("conflicting flags")

	// ErrNotAuthorized indicates a command needing a token was run before authorize.
	ErrNotAuthorized = errors.New("not authorized, run hhapply authorize")

	// ErrFileNotFound indicates a message list file does not exist.
	ErrFileNotFound = errors.New("file not found")
)
