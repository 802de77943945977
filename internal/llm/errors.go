package llm

import "errors"

var (
	// ErrUnknownProvider indicates a provider name with no registered factory.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrEmptyAPIKey indicates that the API key was not provided.
	ErrEmptyAPIKey = errors.New("API key is required")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("no response from model")

	// ErrNotConfigured indicates an LLM feature was requested without a
	// provider in the configuration.
	ErrNotConfigured = errors.New("llm provider not configured")
)
