package errors

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
)

// suggestThreshold is the minimum similarity for a did-you-mean hint.
const suggestThreshold = 0.6

// Suggest returns the candidate most similar to name, or "" when nothing
// comes close enough to be a useful hint.
func Suggest(name string, candidates []string) string {
	best := ""
	bestScore := 0.0

	lower := strings.ToLower(name)
	for _, c := range candidates {
		score := levenshtein.Similarity(lower, strings.ToLower(c), nil)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// WithSuggestion wraps err with a did-you-mean hint when one of the
// candidates is close to name.
func WithSuggestion(err error, name string, candidates []string) error {
	if s := Suggest(name, candidates); s != "" {
		return fmt.Errorf("%w: %q (did you mean %q?)", err, name, s)
	}
	return fmt.Errorf("%w: %q", err, name)
}
