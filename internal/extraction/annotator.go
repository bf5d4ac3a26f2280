package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// NoOpAnnotator is the unavailable variant of Annotator.
type NoOpAnnotator struct{}

// Annotate returns an empty annotation.
func (NoOpAnnotator) Annotate(ctx context.Context, text string) (Annotation, error) {
	return Annotation{}, nil
}

// Available returns false for NoOpAnnotator.
func (NoOpAnnotator) Available() bool {
	return false
}

// ProseAnnotator annotates text with the prose tagger and entity recognizer.
// prose has no lemmatizer, so lemmas are lowercased token text. Its bundled
// entity model only labels PERSON and GPE, so organization and product names
// reach the project step through part-of-speech tags instead.
type ProseAnnotator struct {
	model *prose.Model
}

// NewProseAnnotator loads prose's tagging and entity model once. Every
// Annotate call reuses it.
func NewProseAnnotator() (*ProseAnnotator, error) {
	doc, err := prose.NewDocument("", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("loading prose model: %w", err)
	}
	return &ProseAnnotator{model: doc.Model}, nil
}

// Annotate runs tokenization, tagging and entity extraction on text.
func (p *ProseAnnotator) Annotate(ctx context.Context, text string) (Annotation, error) {
	select {
	case <-ctx.Done():
		return Annotation{}, ctx.Err()
	default:
	}

	doc, err := prose.NewDocument(text, prose.UsingModel(p.model), prose.WithSegmentation(false))
	if err != nil {
		return Annotation{}, fmt.Errorf("annotating text: %w", err)
	}

	var ann Annotation
	for _, tok := range doc.Tokens() {
		ann.Tokens = append(ann.Tokens, Token{
			Text:  tok.Text,
			POS:   posFromPennTag(tok.Tag),
			Lemma: strings.ToLower(tok.Text),
		})
	}
	for _, ent := range doc.Entities() {
		ann.Entities = append(ann.Entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return ann, nil
}

// Available returns true for ProseAnnotator.
func (p *ProseAnnotator) Available() bool {
	return true
}

// posFromPennTag maps Penn Treebank tags to coarse classes.
func posFromPennTag(tag string) string {
	switch {
	case strings.HasPrefix(tag, "VB"):
		return POSVerb
	case tag == "NNP" || tag == "NNPS":
		return POSPropN
	case strings.HasPrefix(tag, "NN"):
		return POSNoun
	default:
		return POSOther
	}
}

// Ensure interfaces are implemented.
var _ Annotator = NoOpAnnotator{}
var _ Annotator = (*ProseAnnotator)(nil)
