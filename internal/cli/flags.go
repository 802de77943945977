package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/interval"
	"github.com/alnah/go-hhapply/internal/template"
)

// parseInterval validates an interval flag.
func parseInterval(flag, value string) (interval.Interval, error) {
	iv, err := interval.Parse(value)
	if err != nil {
		return interval.Interval{}, fmt.Errorf("--%s %q: %w", flag, value, ErrInvalidInterval)
	}
	return iv, nil
}

// oneOf validates a flag against its allowed values. Empty passes.
func oneOf(flag, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("--%s %q (allowed: %s): %w", flag, value, strings.Join(allowed, ", "), ErrInvalidValue)
}

// readMessageList reads newline-separated templates from path.
func readMessageList(path string) ([]string, error) {
	// #nosec G304 -- user-specified message list
	raw, err := os.ReadFile(config.ExpandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read message list: %w", err)
	}
	return template.SplitLines(string(raw)), nil
}

// boolFlag returns a pointer to the flag's value when it was set.
func boolFlag(cmd *cobra.Command, name string, v bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

// floatFlag returns a pointer to the flag's value when it was set.
func floatFlag(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}
