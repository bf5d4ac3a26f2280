package patterns

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// maxRulesFileSize bounds override files; rule tables are small.
const maxRulesFileSize = 256 * 1024

// LoadFile reads a YAML rules override and compiles it. Tables present in the
// file replace the corresponding default table as a whole; absent tables keep
// their defaults.
//
// Example file:
//
//	ticket_patterns:
//	  - name: jira
//	    regex: '([A-Z]{2,10}-\d+)'
//	project_indicators: [project, for]
func LoadFile(path string) (*Library, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	if len(content) > maxRulesFileSize {
		return nil, fmt.Errorf("%w: rules file too large: %d bytes (max %d)", ErrInvalidRules, len(content), maxRulesFileSize)
	}

	rules, err := ParseRules(content)
	if err != nil {
		return nil, err
	}
	return Compile(rules)
}

// ParseRules decodes YAML rule overrides merged over DefaultRules.
func ParseRules(content []byte) (Rules, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return Rules{}, fmt.Errorf("%w: parsing rules: %v", ErrInvalidRules, err)
	}

	var override Rules
	if err := k.Unmarshal("", &override); err != nil {
		return Rules{}, fmt.Errorf("%w: decoding rules: %v", ErrInvalidRules, err)
	}

	return mergeRules(DefaultRules(), override), nil
}

func mergeRules(base, override Rules) Rules {
	if len(override.TicketPatterns) > 0 {
		base.TicketPatterns = override.TicketPatterns
	}
	if override.SpentPattern != "" {
		base.SpentPattern = override.SpentPattern
	}
	if len(override.TimePatterns) > 0 {
		base.TimePatterns = override.TimePatterns
	}
	if len(override.ActionVerbs) > 0 {
		base.ActionVerbs = override.ActionVerbs
	}
	if len(override.ProjectIndicators) > 0 {
		base.ProjectIndicators = override.ProjectIndicators
	}
	if override.DefaultStatus != "" {
		base.DefaultStatus = override.DefaultStatus
	}
	return base
}
