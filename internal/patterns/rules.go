package patterns

// TicketRule is one ticket id pattern. The first capture group, when present,
// is the id; otherwise the whole match is.
type TicketRule struct {
	Name  string `koanf:"name" json:"name"`
	Regex string `koanf:"regex" json:"regex"`
}

// TimeRule is one duration pattern. Capture group 1 is the amount and Unit is
// the normalized unit letter (h, d or m).
type TimeRule struct {
	Regex string `koanf:"regex" json:"regex"`
	Unit  string `koanf:"unit" json:"unit"`
}

// VerbRule maps an action word or phrase to a task status.
type VerbRule struct {
	Verb   string `koanf:"verb" json:"verb"`
	Status string `koanf:"status" json:"status"`
}

// Rules is the serializable form of a pattern library. Table order is
// significant everywhere: earlier entries win.
type Rules struct {
	TicketPatterns    []TicketRule `koanf:"ticket_patterns" json:"ticket_patterns"`
	SpentPattern      string       `koanf:"spent_pattern" json:"spent_pattern"`
	TimePatterns      []TimeRule   `koanf:"time_patterns" json:"time_patterns"`
	ActionVerbs       []VerbRule   `koanf:"action_verbs" json:"action_verbs"`
	ProjectIndicators []string     `koanf:"project_indicators" json:"project_indicators"`
	DefaultStatus     string       `koanf:"default_status" json:"default_status"`
}

// Task statuses produced by the default verb table.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusStarted    = "started"
	StatusBlocked    = "blocked"
	StatusWaiting    = "waiting"
	StatusInReview   = "in_review"
	StatusTesting    = "testing"
)

// DefaultRules returns the built-in rule tables.
func DefaultRules() Rules {
	return Rules{
		TicketPatterns: []TicketRule{
			{Name: "hash", Regex: `#(\d+)`},                   // #123
			{Name: "project_key", Regex: `([A-Z]{2,10}-\d+)`}, // PROJ-456
			{Name: "compact", Regex: `([A-Z]+\d+)`},           // ABC123
			{Name: "ticket", Regex: `ticket[:\s]+(\d+)`},      // ticket: 123
			{Name: "issue", Regex: `issue[:\s]+(\d+)`},        // issue: 123
		},
		SpentPattern: `(?:spent|took)\s+(\d+\.?\d*\s*(?:hours?|hrs?|h|minutes?|mins?|m|days?|d))`,
		TimePatterns: []TimeRule{
			{Regex: `(\d+\.?\d*)\s*h(?:our)?s?`, Unit: "h"},
			{Regex: `(\d+)\s*m(?:in)?(?:ute)?s?`, Unit: "m"},
			{Regex: `(\d+\.?\d*)\s*d(?:ay)?s?`, Unit: "d"},
		},
		ActionVerbs: []VerbRule{
			{Verb: "completed", Status: StatusCompleted},
			{Verb: "finished", Status: StatusCompleted},
			{Verb: "done", Status: StatusCompleted},
			{Verb: "fixed", Status: StatusCompleted},
			{Verb: "resolved", Status: StatusCompleted},
			{Verb: "merged", Status: StatusCompleted},
			{Verb: "deployed", Status: StatusCompleted},
			{Verb: "released", Status: StatusCompleted},
			{Verb: "closed", Status: StatusCompleted},

			{Verb: "working", Status: StatusInProgress},
			{Verb: "implementing", Status: StatusInProgress},
			{Verb: "developing", Status: StatusInProgress},
			{Verb: "coding", Status: StatusInProgress},
			{Verb: "building", Status: StatusInProgress},
			{Verb: "creating", Status: StatusInProgress},
			{Verb: "writing", Status: StatusInProgress},
			{Verb: "updating", Status: StatusInProgress},
			{Verb: "refactoring", Status: StatusInProgress},
			{Verb: "debugging", Status: StatusInProgress},

			{Verb: "started", Status: StatusStarted},
			{Verb: "began", Status: StatusStarted},
			{Verb: "initiated", Status: StatusStarted},
			{Verb: "kicked off", Status: StatusStarted},

			{Verb: "blocked", Status: StatusBlocked},
			{Verb: "waiting", Status: StatusWaiting},
			{Verb: "stuck", Status: StatusBlocked},

			{Verb: "reviewing", Status: StatusInReview},
			{Verb: "testing", Status: StatusTesting},
			{Verb: "qa", Status: StatusTesting},
		},
		ProjectIndicators: []string{"project", "for", "on", "in"},
		DefaultStatus:     StatusInProgress,
	}
}

// clone returns a deep copy so callers never share backing arrays with a Library.
func (r Rules) clone() Rules {
	out := r
	out.TicketPatterns = append([]TicketRule(nil), r.TicketPatterns...)
	out.TimePatterns = append([]TimeRule(nil), r.TimePatterns...)
	out.ActionVerbs = append([]VerbRule(nil), r.ActionVerbs...)
	out.ProjectIndicators = append([]string(nil), r.ProjectIndicators...)
	return out
}
