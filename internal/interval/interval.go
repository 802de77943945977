// Package interval parses "min-max seconds" strings and turns them into
// randomized, cancellable pauses for human-like pacing.
package interval

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// ErrInvalid indicates an interval string could not be parsed.
var ErrInvalid = errors.New("invalid interval")

// Interval is a closed range of durations. Min <= Max always holds for
// values returned by Parse.
type Interval struct {
	Min time.Duration
	Max time.Duration
}

// Float64Source yields uniform values in [0, 1).
type Float64Source interface {
	Float64() float64
}

type defaultSource struct{}

func (defaultSource) Float64() float64 {
	return rand.Float64()
}

// Parse reads "X" or "X-Y" where X and Y are non-negative seconds,
// fractions allowed. The bounds are sorted, so "5-1" equals "1-5".
func Parse(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Interval{}, fmt.Errorf("empty interval: %w", ErrInvalid)
	}

	lo, hi, found := strings.Cut(s, "-")
	a, err := parseSeconds(lo)
	if err != nil {
		return Interval{}, fmt.Errorf("interval %q: %w", s, err)
	}
	b := a
	if found {
		if b, err = parseSeconds(hi); err != nil {
			return Interval{}, fmt.Errorf("interval %q: %w", s, err)
		}
	}
	return Interval{Min: min(a, b), Max: max(a, b)}, nil
}

// MustParse is Parse for constants. It panics on error.
func MustParse(s string) Interval {
	iv, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return iv
}

func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, ErrInvalid
	}
	return time.Duration(f * float64(time.Second)), nil
}

// String formats the interval back into the "X-Y" form.
func (iv Interval) String() string {
	if iv.Min == iv.Max {
		return strconv.FormatFloat(iv.Min.Seconds(), 'f', -1, 64)
	}
	return strconv.FormatFloat(iv.Min.Seconds(), 'f', -1, 64) + "-" +
		strconv.FormatFloat(iv.Max.Seconds(), 'f', -1, 64)
}

// IsZero reports whether the interval never pauses.
func (iv Interval) IsZero() bool {
	return iv.Max <= 0
}

// Random returns a uniformly distributed duration in [Min, Max].
// A nil src uses the package default.
func (iv Interval) Random(src Float64Source) time.Duration {
	if iv.Max <= iv.Min {
		return iv.Min
	}
	if src == nil {
		src = defaultSource{}
	}
	span := float64(iv.Max - iv.Min)
	return iv.Min + time.Duration(src.Float64()*span)
}

// Pause returns a function sleeping a random duration from the interval.
// Suitable as a pagination pause or a delay between outbound messages.
func (iv Interval) Pause(src Float64Source) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return Sleep(ctx, iv.Random(src))
	}
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
