// Package extraction turns a free-text activity statement into a structured
// ParsedSignal: ticket id, project, action verb and status, time spent and
// estimated, a cleaned description, named entities and a confidence score.
//
// # Architecture
//
// The main components are:
//   - Extractor: applies a patterns.Library to raw text
//   - Annotator: optional linguistic annotation (part-of-speech, lemmas, entities)
//   - ParsedSignal: the immutable, serializable result
//
// Extraction never fails. Text with no recognizable features yields a signal
// with zero confidence whose description is the raw text. A missing or failing
// Annotator only disables the entity and lemma steps.
//
// # Usage
//
//	ex := extraction.NewExtractor(patterns.Default(), extraction.NoOpAnnotator{}, logger)
//	sig := ex.Extract(ctx, "Fixed login bug for Project Alpha #123, spent 2 hours")
//	fmt.Println(sig.TicketID, sig.Status, sig.TimeSpent) // 123 completed 2h
//
// # Confidence
//
// Confidence is an additive heuristic, not a probability: ticket id 0.3,
// project 0.2, action verb 0.2, any duration 0.15, entities 0.1 per label up
// to 1.5 labels, description longer than 10 characters 0.05; capped at 1.0.
package extraction
