package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// perfectPartial is the substring ratio treated as an exact containment.
const perfectPartial = 0.995

var nonWordRegex = regexp.MustCompile(`[^A-Za-z0-9_]`)

// FuzzyScore holds the three lexical ratios between two strings.
type FuzzyScore struct {
	Ratio     float64 `json:"ratio"`
	Partial   float64 `json:"partial"`
	TokenSort float64 `json:"token_sort"`
}

// Best returns the highest of the three ratios.
func (s FuzzyScore) Best() float64 {
	return max(s.Ratio, s.Partial, s.TokenSort)
}

// PartialWins reports whether the best score came from the substring ratio
// and strictly beat the whole-string ratio.
func (s FuzzyScore) PartialWins() bool {
	return s.Best() == s.Partial && s.Partial > s.Ratio
}

// Fuzzy computes all three ratios between a and b. Inputs are compared as
// given; lowercase them first for case-insensitive scoring.
func Fuzzy(a, b string) FuzzyScore {
	return FuzzyScore{
		Ratio:     Ratio(a, b),
		Partial:   PartialRatio(a, b),
		TokenSort: TokenSortRatio(a, b),
	}
}

// Ratio is the SequenceMatcher similarity of the whole strings.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return percent(difflib.NewMatcher(runes(a), runes(b)).Ratio())
}

// PartialRatio is the best ratio between the shorter string and any
// equally long window of the longer one, windows anchored on matching blocks.
func PartialRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := runes(a), runes(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	var best float64
	m := difflib.NewMatcher(shorter, longer)
	for _, block := range m.GetMatchingBlocks() {
		start := max(0, block.B-block.A)
		end := min(start+len(shorter), len(longer))
		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > perfectPartial {
			return 1
		}
		best = max(best, r)
	}
	return percent(best)
}

// TokenSortRatio compares the strings after normalizing punctuation and case
// and sorting their tokens, so word order does not matter.
func TokenSortRatio(a, b string) float64 {
	sa, sb := sortedTokens(a), sortedTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	return Ratio(sa, sb)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(normalizeText(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// normalizeText drops non-ASCII characters, turns everything except letters,
// digits and underscores into spaces and lowercases the result.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	out := nonWordRegex.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(strings.ToLower(out))
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// percent rounds a [0,1] ratio to a whole percentage, halves to even.
func percent(r float64) float64 {
	return math.RoundToEven(r*100) / 100
}
