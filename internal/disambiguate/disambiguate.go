// Package disambiguate turns ranked matches into a decision and the prompt
// shown to the person who wrote the statement.
package disambiguate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fyrsmithlabs/devtrack/internal/matcher"
)

// DefaultAutoAccept is the confidence at which a lone match is accepted
// without confirmation.
const DefaultAutoAccept = 0.8

// NoMatchPrompt is shown when nothing matched.
const NoMatchPrompt = "No matching tasks found. Please provide more details or task ID."

// ErrInvalidChoice is returned by Select for a number outside the list.
var ErrInvalidChoice = errors.New("invalid choice")

// Kind classifies a decision.
type Kind string

// Decision kinds.
const (
	KindNone       Kind = "none"
	KindAutoAccept Kind = "auto_accept"
	KindConfirm    Kind = "confirm"
	KindChoose     Kind = "choose"
)

// Options tunes Decide.
type Options struct {
	// AutoAccept is the confidence a single match needs to skip confirmation.
	AutoAccept float64 `koanf:"auto_accept"`
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{AutoAccept: DefaultAutoAccept}
}

// Decision is the outcome of disambiguation. Match is set for auto_accept and
// confirm; Candidates holds every match offered for choose.
type Decision struct {
	Kind       Kind                  `json:"kind"`
	Match      *matcher.MatchResult  `json:"match,omitempty"`
	Candidates []matcher.MatchResult `json:"candidates,omitempty"`
	Prompt     string                `json:"prompt"`
}

// Decide classifies matches. originalText is the statement that was matched;
// prompts are built from the matches alone.
func Decide(matches []matcher.MatchResult, originalText string, opts Options) Decision {
	switch len(matches) {
	case 0:
		return Decision{Kind: KindNone, Prompt: NoMatchPrompt}
	case 1:
		match := matches[0]
		if match.Confidence >= opts.AutoAccept {
			return Decision{
				Kind:   KindAutoAccept,
				Match:  &match,
				Prompt: fmt.Sprintf("Matched to: %s (confidence: %s)", match.Task.Title, percent(match.Confidence)),
			}
		}
		return Decision{
			Kind:   KindConfirm,
			Match:  &match,
			Prompt: fmt.Sprintf("Did you mean: %s? (confidence: %s)\nReply 'yes' to confirm or provide more details.", match.Task.Title, percent(match.Confidence)),
		}
	}

	var b strings.Builder
	b.WriteString("Multiple possible matches found:\n\n")
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, match.Task.ID, match.Task.Title)
		fmt.Fprintf(&b, "   Confidence: %s (%s match)\n", percent(match.Confidence), match.MatchType)
		if match.Task.Status != "" {
			fmt.Fprintf(&b, "   Status: %s\n", match.Task.Status)
		}
		b.WriteString("\n")
	}
	b.WriteString("Please reply with the number of the correct task, or provide more details.")

	candidates := make([]matcher.MatchResult, len(matches))
	copy(candidates, matches)
	return Decision{Kind: KindChoose, Candidates: candidates, Prompt: b.String()}
}

// Disambiguate applies the default options and returns the resolved match,
// if any, with the prompt text. A below-threshold single match is returned
// provisionally; multiple matches return nil.
func Disambiguate(matches []matcher.MatchResult, originalText string) (*matcher.MatchResult, string) {
	d := Decide(matches, originalText, DefaultOptions())
	return d.Match, d.Prompt
}

// Select resolves a 1-based choice from a choose decision. For confirm and
// auto_accept decisions, 1 selects the single match.
func (d Decision) Select(n int) (*matcher.MatchResult, error) {
	switch d.Kind {
	case KindChoose:
		if n < 1 || n > len(d.Candidates) {
			return nil, fmt.Errorf("%w: %d (expected 1-%d)", ErrInvalidChoice, n, len(d.Candidates))
		}
		match := d.Candidates[n-1]
		return &match, nil
	case KindAutoAccept, KindConfirm:
		if n != 1 || d.Match == nil {
			return nil, fmt.Errorf("%w: %d (expected 1)", ErrInvalidChoice, n)
		}
		return d.Match, nil
	default:
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidChoice)
	}
}

// percent formats a confidence as a whole percentage, halves to even.
func percent(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.RoundToEven(confidence*100)))
}
