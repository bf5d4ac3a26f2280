package patterns

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Defaults(t *testing.T) {
	lib, err := Compile(DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, lib.DefaultStatus())
	assert.Len(t, lib.Rules().TicketPatterns, 5)
}

func TestCompile_InvalidRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Rules)
	}{
		{"no ticket patterns", func(r *Rules) { r.TicketPatterns = nil }},
		{"bad ticket regex", func(r *Rules) { r.TicketPatterns[0].Regex = `(\d+` }},
		{"empty ticket regex", func(r *Rules) { r.TicketPatterns[1].Regex = "  " }},
		{"spent without group", func(r *Rules) { r.SpentPattern = `spent\s+\d+h` }},
		{"unknown time unit", func(r *Rules) { r.TimePatterns[0].Unit = "w" }},
		{"time without group", func(r *Rules) { r.TimePatterns[1].Regex = `\d+m` }},
		{"empty verb table", func(r *Rules) { r.ActionVerbs = nil }},
		{"verb without status", func(r *Rules) { r.ActionVerbs[0].Status = "" }},
		{"empty indicator", func(r *Rules) { r.ProjectIndicators = []string{"for", ""} }},
		{"no default status", func(r *Rules) { r.DefaultStatus = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := DefaultRules()
			tt.mutate(&rules)
			_, err := Compile(rules)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRules), "got %v", err)
		})
	}
}

func TestLibrary_RulesIsACopy(t *testing.T) {
	lib := MustCompile(DefaultRules())
	r := lib.Rules()
	r.TicketPatterns[0].Regex = "changed"
	assert.Equal(t, `#(\d+)`, lib.Rules().TicketPatterns[0].Regex)
}

func TestLibrary_FindTicket(t *testing.T) {
	lib := Default()

	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"Fixed login bug for Project Alpha #123, spent 2 hours", "123", true},
		{"Working on PROJ-456 implementing new API endpoint", "PROJ-456", true},
		{"Completed Azure DevOps integration, ticket PA-789", "PA-789", true},
		{"see ticket: 42 for details", "42", true},
		{"closed issue 77", "77", true},
		{"pushed the ABC123 build", "ABC123", true},
		{"nothing here to see", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := lib.FindTicket(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLibrary_FindTicket_FirstPatternWins(t *testing.T) {
	// Both #7 and PROJ-9 are present; the hash pattern comes first.
	got, ok := Default().FindTicket("PROJ-9 relates to #7")
	require.True(t, ok)
	assert.Equal(t, "7", got)
}

func TestLibrary_TicketTokens(t *testing.T) {
	tokens := Default().TicketTokens("Fixed #12 and #13, see PROJ-5")
	assert.Equal(t, []string{"12", "13", "PROJ-5"}, tokens)
	assert.Empty(t, Default().TicketTokens("working on authentication issues"))
}

func TestLibrary_Durations(t *testing.T) {
	lib := Default()

	spent, ok := lib.SpentDuration("Fixed it, spent 2 hours")
	require.True(t, ok)
	assert.Equal(t, "2h", spent)

	spent, ok = lib.SpentDuration("took 1.5 days overall")
	require.True(t, ok)
	assert.Equal(t, "1.5d", spent)

	_, ok = lib.SpentDuration("estimated 3h")
	assert.False(t, ok)

	d, ok := lib.FirstDuration("estimated 3h")
	require.True(t, ok)
	assert.Equal(t, "3h", d)

	d, ok = lib.FirstDuration("review took 30 min")
	require.True(t, ok)
	assert.Equal(t, "30m", d)

	_, ok = lib.FirstDuration("no numbers")
	assert.False(t, ok)
}

func TestNormalizeDuration(t *testing.T) {
	assert.Equal(t, "2h", NormalizeDuration("2 hours"))
	assert.Equal(t, "30m", NormalizeDuration("30min"))
	assert.Equal(t, "1.5d", NormalizeDuration("1.5 Days"))
	assert.Equal(t, "soon", NormalizeDuration("soon"))
}

func TestLibrary_LookupVerb(t *testing.T) {
	lib := Default()

	tests := []struct {
		text       string
		wantVerb   string
		wantStatus string
		wantOK     bool
	}{
		{"Fixed login bug", "fixed", StatusCompleted, true},
		{"Working on PROJ-456 implementing new API endpoint", "working", StatusInProgress, true},
		{"Kicked off the migration", "kicked off", StatusStarted, true},
		{"Blocked on JIRA-321 waiting for backend team", "blocked", StatusBlocked, true},
		{"Reviewing PR 12", "reviewing", StatusInReview, true},
		{"abandoned the branch", "", "", false},
		{"lunch", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			verb, status, ok := lib.LookupVerb(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantVerb, verb)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestLibrary_StatusFor(t *testing.T) {
	status, ok := Default().StatusFor("Merged")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, status)

	_, ok = Default().StatusFor("fix")
	assert.False(t, ok)
}

func TestLibrary_FindProject(t *testing.T) {
	lib := Default()

	got, ok := lib.FindProject("Fixed login bug for Project Alpha #123")
	require.True(t, ok)
	assert.Equal(t, "Alpha", got)

	got, ok = lib.FindProject("Deployed the fix for Billing today")
	require.True(t, ok)
	assert.Equal(t, "Billing", got)

	_, ok = lib.FindProject("worked on the backlog")
	assert.False(t, ok)

	// "upon" must not be read as the "on" indicator.
	_, ok = lib.FindProject("called upon Mercury")
	assert.False(t, ok)
}

func TestLibrary_StripHelpers(t *testing.T) {
	lib := Default()

	text := "Fixed login bug for Project Alpha #123, spent 2 hours"
	noTicket := lib.StripTickets(text)
	assert.Equal(t, "Fixed login bug for Project Alpha , spent 2 hours", noTicket)
	assert.Equal(t, "Fixed login bug for Project Alpha , ", lib.StripDurations(noTicket))
	assert.Equal(t, "Fixed login bug for  #123", lib.StripProject("Fixed login bug for Project Alpha #123", "Alpha"))
	assert.Equal(t, "unchanged", lib.StripProject("unchanged", ""))
	assert.Equal(t, "a b c", CollapseSpace("  a \t b\n c "))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := []byte(`
ticket_patterns:
  - name: jira
    regex: '([A-Z]{2,10}-\d+)'
project_indicators: [project]
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	lib, err := LoadFile(path)
	require.NoError(t, err)

	rules := lib.Rules()
	require.Len(t, rules.TicketPatterns, 1)
	assert.Equal(t, "jira", rules.TicketPatterns[0].Name)
	assert.Equal(t, []string{"project"}, rules.ProjectIndicators)
	// Untouched tables keep their defaults.
	assert.Equal(t, DefaultRules().ActionVerbs, rules.ActionVerbs)

	_, ok := lib.FindTicket("#123")
	assert.False(t, ok)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("ticket_patterns:\n  - regex: '(\\d+'\n"), 0o600))
	_, err := LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidRules)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
