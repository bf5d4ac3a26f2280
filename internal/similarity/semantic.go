package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fyrsmithlabs/devtrack/internal/embeddings"
)

var tracer = otel.Tracer("github.com/fyrsmithlabs/devtrack/internal/similarity")

// ErrUnavailable is returned by Score when no embedder is configured.
var ErrUnavailable = errors.New("semantic similarity unavailable")

const scoreCollection = "tasks"

// Semantic is the embedding similarity capability. The zero value is
// unavailable; use Available to attach an embedder.
type Semantic struct {
	embedder embeddings.Embedder
}

// Available returns a capability backed by the given embedder. A nil embedder
// yields Unavailable.
func Available(e embeddings.Embedder) Semantic {
	return Semantic{embedder: e}
}

// Unavailable returns a capability that never scores.
func Unavailable() Semantic {
	return Semantic{}
}

// IsAvailable reports whether an embedder is attached.
func (s Semantic) IsAvailable() bool {
	return s.embedder != nil
}

// Score returns the cosine similarity between query and every doc, in doc
// order, clamped to [0,1]. Docs are indexed in a throwaway in-memory chromem
// collection so each call is independent.
func (s Semantic) Score(ctx context.Context, query string, docs []string) ([]float64, error) {
	if !s.IsAvailable() {
		return nil, ErrUnavailable
	}
	if len(docs) == 0 {
		return []float64{}, nil
	}
	if query == "" {
		return make([]float64, len(docs)), nil
	}

	ctx, span := tracer.Start(ctx, "Semantic.Score")
	defer span.End()
	span.SetAttributes(attribute.Int("document_count", len(docs)))

	vectors, err := s.embedder.EmbedDocuments(ctx, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("embedding tasks: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d tasks", embeddings.ErrEmbeddingFailed, len(vectors), len(docs))
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(scoreCollection, nil, func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.EmbedQuery(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		chromemDocs[i] = chromem.Document{
			ID:        strconv.Itoa(i),
			Content:   doc,
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, chromemDocs, 1); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("indexing tasks: %w", err)
	}

	results, err := collection.Query(ctx, query, collection.Count(), nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying tasks: %w", err)
	}

	scores := make([]float64, len(docs))
	for _, r := range results {
		i, err := strconv.Atoi(r.ID)
		if err != nil || i < 0 || i >= len(scores) {
			continue
		}
		scores[i] = clamp01(float64(r.Similarity))
	}
	span.SetStatus(codes.Ok, "success")
	return scores, nil
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
