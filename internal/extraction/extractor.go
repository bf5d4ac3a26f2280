package extraction

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fyrsmithlabs/devtrack/internal/logging"
	"github.com/fyrsmithlabs/devtrack/internal/patterns"
	"go.uber.org/zap"
)

const (
	weightTicket      = 0.3
	weightProject     = 0.2
	weightAction      = 0.2
	weightTime        = 0.15
	weightEntityLabel = 0.1
	maxEntityLabels   = 1.5
	weightDescription = 0.05

	// minDescriptionLen is the shortest stripped description kept.
	minDescriptionLen = 10
	minProjectLen     = 4
)

var wordRegex = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_\-]*`)

// Extractor reads activity statements with a fixed pattern library.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	lib       *patterns.Library
	annotator Annotator
	logger    *zap.Logger
}

// NewExtractor creates an extractor. A nil library uses patterns.Default, a
// nil annotator disables annotation and a nil logger discards logs.
func NewExtractor(lib *patterns.Library, annotator Annotator, logger *zap.Logger) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	if annotator == nil {
		annotator = NoOpAnnotator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		lib:       lib,
		annotator: annotator,
		logger:    logger,
	}
}

// Extract parses raw into a ParsedSignal. It never fails.
func (e *Extractor) Extract(ctx context.Context, raw string) ParsedSignal {
	sig := ParsedSignal{
		RawText:  raw,
		Entities: map[string][]string{},
	}

	ann := e.annotate(ctx, raw)

	if id, ok := e.lib.FindTicket(raw); ok {
		sig.TicketID = id
	}

	sig.TimeSpent, sig.TimeEstimate = e.extractTime(raw)

	sig.ActionVerb, sig.Status = e.extractAction(raw, ann)

	for _, ent := range ann.Entities {
		sig.Entities[ent.Label] = append(sig.Entities[ent.Label], ent.Text)
	}

	sig.Project = e.extractProject(raw, ann, sig.Entities)
	sig.Description = e.extractDescription(raw, sig)
	sig.Confidence = confidence(sig)

	logging.For(ctx, e.logger).Debug("parsed activity statement",
		zap.String("ticket_id", sig.TicketID),
		zap.String("project", sig.Project),
		zap.String("status", sig.Status),
		zap.Float64("confidence", sig.Confidence),
	)

	return sig
}

// ExtractBatch parses each text in order.
func (e *Extractor) ExtractBatch(ctx context.Context, texts []string) []ParsedSignal {
	out := make([]ParsedSignal, 0, len(texts))
	for _, text := range texts {
		out = append(out, e.Extract(ctx, text))
	}
	return out
}

func (e *Extractor) annotate(ctx context.Context, raw string) Annotation {
	if !e.annotator.Available() {
		return Annotation{}
	}
	ann, err := e.annotator.Annotate(ctx, raw)
	if err != nil {
		logging.For(ctx, e.logger).Warn("annotation unavailable, continuing without it", zap.Error(err))
		return Annotation{}
	}
	return ann
}

// extractTime applies the spent phrase first. A later bare duration fills
// time spent only when no phrase did; otherwise it becomes the estimate.
func (e *Extractor) extractTime(raw string) (spent, estimate string) {
	if d, ok := e.lib.SpentDuration(raw); ok {
		spent = d
	}
	if d, ok := e.lib.FirstDuration(raw); ok {
		if spent == "" {
			spent = d
		} else {
			estimate = d
		}
	}
	return spent, estimate
}

func (e *Extractor) extractAction(raw string, ann Annotation) (verb, status string) {
	if v, s, ok := e.lib.LookupVerb(raw); ok {
		return v, s
	}
	for _, tok := range ann.Tokens {
		if tok.POS != POSVerb {
			continue
		}
		lemma := strings.ToLower(tok.Lemma)
		if s, ok := e.lib.StatusFor(lemma); ok {
			return lemma, s
		}
	}
	return "", e.lib.DefaultStatus()
}

func (e *Extractor) extractProject(raw string, ann Annotation, entities map[string][]string) string {
	if p, ok := e.lib.FindProject(raw); ok {
		return p
	}

	for _, label := range []string{LabelOrg, LabelProduct} {
		if values := entities[label]; len(values) > 0 {
			return values[0]
		}
	}

	if len(ann.Tokens) > 0 {
		for _, tok := range ann.Tokens {
			if (tok.POS == POSNoun || tok.POS == POSPropN) && isProjectLike(tok.Text) {
				return tok.Text
			}
		}
		return ""
	}

	// Without part-of-speech tags, skip words the rule tables already explain.
	for _, word := range wordRegex.FindAllString(raw, -1) {
		if !isProjectLike(word) {
			continue
		}
		if _, isVerb := e.lib.StatusFor(word); isVerb || e.lib.IsIndicator(word) {
			continue
		}
		return word
	}
	return ""
}

// isProjectLike reports a title-case word longer than three characters.
func isProjectLike(word string) bool {
	if utf8.RuneCountInString(word) < minProjectLen {
		return false
	}
	for i, r := range word {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func (e *Extractor) extractDescription(raw string, sig ParsedSignal) string {
	desc := raw
	if sig.TicketID != "" {
		desc = e.lib.StripTickets(desc)
	}
	desc = e.lib.StripDurations(desc)
	desc = e.lib.StripProject(desc, sig.Project)
	desc = strings.Trim(patterns.CollapseSpace(desc), " ,;:")

	if utf8.RuneCountInString(desc) < minDescriptionLen {
		return raw
	}
	return desc
}

func confidence(sig ParsedSignal) float64 {
	var c float64
	if sig.TicketID != "" {
		c += weightTicket
	}
	if sig.Project != "" {
		c += weightProject
	}
	if sig.ActionVerb != "" {
		c += weightAction
	}
	if sig.HasTime() {
		c += weightTime
	}
	if n := len(sig.Entities); n > 0 {
		c += weightEntityLabel * min(float64(n), maxEntityLabels)
	}
	if utf8.RuneCountInString(sig.Description) > minDescriptionLen {
		c += weightDescription
	}
	return max(0, min(c, 1.0))
}
