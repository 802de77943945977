package template

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
)

// maxExpansions bounds RandomText on pathological input. Each pass removes
// at least one group, so real templates finish far below it.
const maxExpansions = 1000

// groupRe matches an innermost {a|b|c} group.
var groupRe = regexp.MustCompile(`\{([^{}]+)\}`)

// placeholderRe matches %(name)s and the %% escape.
var placeholderRe = regexp.MustCompile(`%\(([A-Za-z_][A-Za-z0-9_]*)\)s|%%`)

// Rand picks an index in [0, n). *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// RandomText replaces every innermost {a|b|...} group with one of its
// alternatives, chosen by rng, until no group remains. Nested groups
// resolve from the inside out. A nil rng uses the global source.
func RandomText(s string, rng Rand) string {
	if rng == nil {
		rng = globalRand{}
	}
	for range maxExpansions {
		next := groupRe.ReplaceAllStringFunc(s, func(m string) string {
			alts := strings.Split(m[1:len(m)-1], "|")
			return alts[rng.IntN(len(alts))]
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

// Vars are the values %(name)s placeholders are filled from.
type Vars map[string]string

// Fill substitutes %(name)s placeholders from vars and turns %% into %.
// A placeholder with no value in vars is an error.
func Fill(s string, vars Vars) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		if m == "%%" {
			return "%"
		}
		name := m[2 : len(m)-2]
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%s: %w", strings.Join(missing, ", "), ErrUnknownPlaceholder)
	}
	return out, nil
}

// Render expands alternatives, then fills placeholders.
func Render(s string, vars Vars, rng Rand) (string, error) {
	return Fill(RandomText(s, rng), vars)
}

// Pick returns a random non-blank entry of msgs, or "" when there is none.
func Pick(msgs []string, rng Rand) string {
	if rng == nil {
		rng = globalRand{}
	}
	var candidates []string
	for _, m := range msgs {
		if strings.TrimSpace(m) != "" {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.IntN(len(candidates))]
}

// SplitLines splits newline-separated templates, trimming each line and
// dropping blank ones.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// DefaultCoverLetters are used when no cover letter templates are
// configured.
var DefaultCoverLetters = []string{
	"{Меня заинтересовала|Мне понравилась} ваша вакансия %(vacancy_name)s",
	"{Прошу рассмотреть|Предлагаю рассмотреть} {мою кандидатуру|мое резюме} на вакансию %(vacancy_name)s",
}
