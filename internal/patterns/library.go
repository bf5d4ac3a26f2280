package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidRules indicates a malformed rule table. It is only ever returned
// while building a Library, never while reading text.
var ErrInvalidRules = errors.New("invalid pattern rules")

var validUnits = map[string]bool{"h": true, "d": true, "m": true}

// durationRegex normalizes a free-form duration such as "2 hours" to "2h".
var durationRegex = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*([hdm])`)

var whitespaceRegex = regexp.MustCompile(`\s+`)

type compiledTicket struct {
	TicketRule
	regex *regexp.Regexp
}

type compiledTime struct {
	TimeRule
	regex *regexp.Regexp
}

type compiledVerb struct {
	VerbRule
	regex *regexp.Regexp
}

type compiledIndicator struct {
	word  string
	regex *regexp.Regexp
}

// Library is a compiled, immutable set of rules. It is safe for concurrent use.
type Library struct {
	rules      Rules
	tickets    []compiledTicket
	spent      *regexp.Regexp
	times      []compiledTime
	verbs      []compiledVerb
	verbIndex  map[string]string
	indicators []compiledIndicator
}

// Compile validates rules and compiles every pattern. Ticket, spent and time
// patterns are matched case-insensitively.
func Compile(rules Rules) (*Library, error) {
	rules = rules.clone()

	if len(rules.TicketPatterns) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket pattern is required", ErrInvalidRules)
	}
	if len(rules.ActionVerbs) == 0 {
		return nil, fmt.Errorf("%w: action verb table is empty", ErrInvalidRules)
	}
	if strings.TrimSpace(rules.DefaultStatus) == "" {
		return nil, fmt.Errorf("%w: default status is required", ErrInvalidRules)
	}

	lib := &Library{
		rules:     rules,
		verbIndex: make(map[string]string, len(rules.ActionVerbs)),
	}

	for i, t := range rules.TicketPatterns {
		re, err := compileInsensitive(t.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: ticket pattern %d (%s): %v", ErrInvalidRules, i, t.Name, err)
		}
		lib.tickets = append(lib.tickets, compiledTicket{TicketRule: t, regex: re})
	}

	if rules.SpentPattern != "" {
		re, err := compileInsensitive(rules.SpentPattern)
		if err != nil {
			return nil, fmt.Errorf("%w: spent pattern: %v", ErrInvalidRules, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: spent pattern needs a capture group for the duration", ErrInvalidRules)
		}
		lib.spent = re
	}

	for i, t := range rules.TimePatterns {
		if !validUnits[t.Unit] {
			return nil, fmt.Errorf("%w: time pattern %d has unit %q (want h, d or m)", ErrInvalidRules, i, t.Unit)
		}
		re, err := compileInsensitive(t.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: time pattern %d: %v", ErrInvalidRules, i, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%w: time pattern %d needs a capture group for the amount", ErrInvalidRules, i)
		}
		lib.times = append(lib.times, compiledTime{TimeRule: t, regex: re})
	}

	for i, v := range rules.ActionVerbs {
		verb := strings.ToLower(strings.TrimSpace(v.Verb))
		if verb == "" || strings.TrimSpace(v.Status) == "" {
			return nil, fmt.Errorf("%w: action verb %d needs both verb and status", ErrInvalidRules, i)
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(verb) + `\b`)
		lib.verbs = append(lib.verbs, compiledVerb{VerbRule: VerbRule{Verb: verb, Status: v.Status}, regex: re})
		if _, seen := lib.verbIndex[verb]; !seen {
			lib.verbIndex[verb] = v.Status
		}
	}

	for i, word := range rules.ProjectIndicators {
		word = strings.TrimSpace(word)
		if word == "" {
			return nil, fmt.Errorf("%w: project indicator %d is empty", ErrInvalidRules, i)
		}
		// Indicator is case-insensitive, the project token must start upper-case.
		re := regexp.MustCompile(`\b(?i:` + regexp.QuoteMeta(word) + `)\s+([A-Z][A-Za-z0-9_\-]+)`)
		lib.indicators = append(lib.indicators, compiledIndicator{word: word, regex: re})
	}

	return lib, nil
}

// MustCompile is like Compile but panics on malformed rules.
func MustCompile(rules Rules) *Library {
	lib, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return lib
}

var defaultLibrary = MustCompile(DefaultRules())

// Default returns the library compiled from DefaultRules.
func Default() *Library {
	return defaultLibrary
}

func compileInsensitive(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errors.New("empty expression")
	}
	return regexp.Compile(`(?i)` + expr)
}

// Rules returns a copy of the rules the library was compiled from.
func (l *Library) Rules() Rules {
	return l.rules.clone()
}

// DefaultStatus is the status used when no action verb is recognized.
func (l *Library) DefaultStatus() string {
	return l.rules.DefaultStatus
}

// FindTicket returns the id matched by the first ticket pattern that matches
// text. Later patterns are not tried once one matches.
func (l *Library) FindTicket(text string) (string, bool) {
	for _, t := range l.tickets {
		m := t.regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return ticketValue(m), true
	}
	return "", false
}

// TicketTokens returns every id-like token in text, pattern by pattern in
// table order and left to right within a pattern.
func (l *Library) TicketTokens(text string) []string {
	var tokens []string
	for _, t := range l.tickets {
		for _, m := range t.regex.FindAllStringSubmatch(text, -1) {
			if v := ticketValue(m); v != "" {
				tokens = append(tokens, v)
			}
		}
	}
	return tokens
}

func ticketValue(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// StripTickets removes every match of every ticket pattern.
func (l *Library) StripTickets(text string) string {
	for _, t := range l.tickets {
		text = t.regex.ReplaceAllString(text, "")
	}
	return text
}

// SpentDuration returns the normalized duration of an explicit "spent" or
// "took" phrase.
func (l *Library) SpentDuration(text string) (string, bool) {
	if l.spent == nil {
		return "", false
	}
	m := l.spent.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return NormalizeDuration(m[1]), true
}

// FirstDuration returns the first duration mention, trying time patterns in
// table order. The first pattern with any match decides.
func (l *Library) FirstDuration(text string) (string, bool) {
	for _, t := range l.times {
		m := t.regex.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return m[1] + t.Unit, true
	}
	return "", false
}

// StripDurations removes spent phrases and every duration mention.
func (l *Library) StripDurations(text string) string {
	if l.spent != nil {
		text = l.spent.ReplaceAllString(text, "")
	}
	for _, t := range l.times {
		text = t.regex.ReplaceAllString(text, "")
	}
	return text
}

// LookupVerb scans text for the first table verb, in table order, found as a
// whole word.
func (l *Library) LookupVerb(text string) (verb, status string, ok bool) {
	lower := strings.ToLower(text)
	for _, v := range l.verbs {
		if v.regex.MatchString(lower) {
			return v.Verb, v.Status, true
		}
	}
	return "", "", false
}

// StatusFor returns the status for a single word or lemma.
func (l *Library) StatusFor(word string) (string, bool) {
	status, ok := l.verbIndex[strings.ToLower(word)]
	return status, ok
}

// IsIndicator reports whether word is one of the project indicator words.
func (l *Library) IsIndicator(word string) bool {
	for _, ind := range l.indicators {
		if strings.EqualFold(ind.word, word) {
			return true
		}
	}
	return false
}

// FindProject returns the capitalized token following the first indicator, in
// indicator order, that has one.
func (l *Library) FindProject(text string) (string, bool) {
	for _, ind := range l.indicators {
		if m := ind.regex.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// StripProject removes "<indicator> <project>" phrases for every indicator.
func (l *Library) StripProject(text, project string) string {
	if project == "" {
		return text
	}
	for _, ind := range l.indicators {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(ind.word) + `\s+` + regexp.QuoteMeta(project))
		text = re.ReplaceAllString(text, "")
	}
	return text
}

// NormalizeDuration rewrites a duration such as "2 hours" or "1.5 days" to
// "<number><unit>". Text without a recognizable duration is returned as is.
func NormalizeDuration(s string) string {
	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[1] + strings.ToLower(m[2])
}

// CollapseSpace replaces whitespace runs with single spaces and trims the ends.
func CollapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
