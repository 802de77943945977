package ops

import "errors"

var (
	// ErrNoResume indicates the account has no resume to act with.
	ErrNoResume = errors.New("no resume found")

	// ErrConflictingFilters indicates mutually exclusive reply filters.
	ErrConflictingFilters = errors.New("only-invitations and only-interviews are mutually exclusive")

	// ErrBadIndex indicates a resume number out of range.
	ErrBadIndex = errors.New("invalid resume number")

	// ErrNotConfirmed indicates a 2xx write whose body is not the
	// acknowledgement hh.ru sends on success.
	ErrNotConfirmed = errors.New("action not confirmed by server")

	// ErrNoChat indicates an operation needs an LLM that is not configured.
	ErrNoChat = errors.New("llm not configured")
)
