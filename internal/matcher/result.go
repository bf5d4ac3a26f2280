package matcher

import (
	"fmt"

	"github.com/fyrsmithlabs/devtrack/internal/corpus"
)

// MatchType names the tier that produced a match.
type MatchType string

// Match types.
const (
	MatchExact    MatchType = "exact"
	MatchFuzzy    MatchType = "fuzzy"
	MatchPartial  MatchType = "partial"
	MatchSemantic MatchType = "semantic"
)

// Fields a match was scored on.
const (
	FieldID               = "id"
	FieldTitle            = "title"
	FieldTitleDescription = "title+description"
)

// MatchResult is a candidate task with its confidence. Task points into the
// corpus passed to the matcher and shares its lifetime.
type MatchResult struct {
	Task       *corpus.Task `json:"task"`
	Confidence float64      `json:"confidence"`
	MatchType  MatchType    `json:"match_type"`
	MatchField string       `json:"match_field"`
	Reason     string       `json:"reason"`
}

// String describes a result for logs and CLI output.
func (r MatchResult) String() string {
	if r.Task == nil {
		return fmt.Sprintf("<no task> %.2f %s", r.Confidence, r.MatchType)
	}
	return fmt.Sprintf("[%s] %s %.2f %s", r.Task.ID, r.Task.Title, r.Confidence, r.MatchType)
}
