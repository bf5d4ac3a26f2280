package extraction

import (
	"context"
)

// ParsedSignal is the structured reading of one activity statement.
type ParsedSignal struct {
	RawText      string              `json:"raw_text"`
	TicketID     string              `json:"ticket_id,omitempty"`
	Project      string              `json:"project,omitempty"`
	ActionVerb   string              `json:"action_verb,omitempty"`
	Status       string              `json:"status"`
	TimeEstimate string              `json:"time_estimate,omitempty"`
	TimeSpent    string              `json:"time_spent,omitempty"`
	Description  string              `json:"description"`
	Entities     map[string][]string `json:"entities"`
	Confidence   float64             `json:"confidence"`
}

// HasTime reports whether any duration was found.
func (s ParsedSignal) HasTime() bool {
	return s.TimeSpent != "" || s.TimeEstimate != ""
}

// Part-of-speech classes used by annotators.
const (
	POSVerb  = "VERB"
	POSNoun  = "NOUN"
	POSPropN = "PROPN"
	POSOther = "X"
)

// Entity labels consulted for project names.
const (
	LabelOrg     = "ORG"
	LabelProduct = "PRODUCT"
)

// Token is one annotated word.
type Token struct {
	Text  string `json:"text"`
	POS   string `json:"pos"`
	Lemma string `json:"lemma"`
}

// Entity is a named-entity span.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Annotation is the linguistic reading of a text.
type Annotation struct {
	Tokens   []Token
	Entities []Entity
}

// Annotator provides optional linguistic annotation.
type Annotator interface {
	// Annotate tags tokens and recognizes entities in text.
	Annotate(ctx context.Context, text string) (Annotation, error)

	// Available returns true if the annotator does real work.
	Available() bool
}
