package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-hhapply/internal/apierr"
	"github.com/alnah/go-hhapply/internal/cli"
	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/interrupt"
	"github.com/alnah/go-hhapply/internal/interval"
	"github.com/alnah/go-hhapply/internal/journal"
	"github.com/alnah/go-hhapply/internal/llm"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/store"
	"github.com/alnah/go-hhapply/internal/template"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitAuth       = 5
	ExitLimit      = 6
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels ctx, a second one within the window exits.
	handler, ctx := interrupt.NewHandler(context.Background())

	env := cli.DefaultEnv()
	rootCmd := cli.NewRootCmd(env, fmt.Sprintf("%s (commit: %s)", version, commit))

	err := rootCmd.ExecuteContext(ctx)
	handler.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// The daily application limit ends apply-similar early.
	if errors.Is(err, apierr.ErrLimitExceeded) {
		return ExitLimit
	}

	// Setup errors (ExitSetup = 3): missing credentials or configuration.
	if errors.Is(err, config.ErrInvalid) || errors.Is(err, llm.ErrNotConfigured) ||
		errors.Is(err, llm.ErrUnknownProvider) || errors.Is(err, llm.ErrEmptyAPIKey) ||
		errors.Is(err, ops.ErrNoChat) || errors.Is(err, ops.ErrNoResume) ||
		errors.Is(err, store.ErrCorrupt) {
		return ExitSetup
	}

	// Auth errors (ExitAuth = 5).
	if errors.Is(err, cli.ErrNotAuthorized) || errors.Is(err, apierr.ErrForbidden) ||
		errors.Is(err, hh.ErrNoRefreshToken) || errors.Is(err, hh.ErrNoAuthCode) ||
		errors.Is(err, apierr.ErrAuthFailed) {
		return ExitAuth
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrInvalidInterval) || errors.Is(err, cli.ErrInvalidValue) ||
		errors.Is(err, cli.ErrConflictingFlags) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, interval.ErrInvalid) || errors.Is(err, journal.ErrInvalidKind) ||
		errors.Is(err, ops.ErrConflictingFilters) || errors.Is(err, ops.ErrBadIndex) ||
		errors.Is(err, template.ErrUnknownPlaceholder) {
		return ExitValidation
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors. API
	// errors carry the server body, which must not be matched here.
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) && isCobraUsageError(err) {
		return ExitUsage
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
