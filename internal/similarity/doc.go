// Package similarity scores how close a free-text statement is to a task.
//
// Two providers are available:
//   - Fuzzy lexical ratios (whole string, best substring, sorted tokens) on
//     SequenceMatcher from go-difflib, returned as percentages in [0,1] rounded
//     to two decimals.
//   - Semantic similarity: cosine similarity of embeddings, computed through an
//     in-memory chromem-go collection. Semantic is a capability value that is
//     either Available(embedder) or Unavailable(); callers branch on it once.
package similarity
