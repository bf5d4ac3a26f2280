package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single TEI request.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 4096

// TEIConfig configures a Text Embeddings Inference client.
type TEIConfig struct {
	BaseURL string
	Model   string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Timeout bounds each request; zero uses DefaultTimeout.
	Timeout time.Duration
	// RateLimit caps requests per second; zero is unlimited.
	RateLimit float64
	// Burst is the limiter bucket size; below 1 counts as 1.
	Burst int
}

func (c TEIConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if c.BaseURL == "" || err != nil {
		return fmt.Errorf("%w: tei base URL required", ErrInvalidConfig)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: tei base URL must be http or https, got %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: tei rate limit must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// TEIClient embeds task texts and statements through a TEI server's /embed
// endpoint.
type TEIClient struct {
	endpoint  string
	apiKey    string
	dimension int
	client    *http.Client
	limiter   *rate.Limiter
	metrics   *Metrics
}

// NewTEIClient validates cfg. It does not contact the server.
func NewTEIClient(cfg TEIConfig) (*TEIClient, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	return &TEIClient{
		endpoint:  strings.TrimRight(cfg.BaseURL, "/") + "/embed",
		apiKey:    cfg.APIKey,
		dimension: dimensionFor(cfg.Model),
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   limiter,
		metrics:   NewMetrics(ProviderTEI, cfg.Model),
	}, nil
}

// EmbedDocuments embeds task texts in one request.
func (c *TEIClient) EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	start := time.Now()
	defer func() { c.metrics.Record(ctx, opTasks, len(texts), time.Since(start), err) }()

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	vectors, err = c.post(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedQuery embeds a work statement.
func (c *TEIClient) EmbedQuery(ctx context.Context, text string) (vector []float32, err error) {
	start := time.Now()
	defer func() { c.metrics.Record(ctx, opStatement, 1, time.Since(start), err) }()

	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vectors, err := c.post(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for one statement", ErrEmbeddingFailed, len(vectors))
	}
	return vectors[0], nil
}

// Dimension is the configured model's width, guessed for unlisted models.
func (c *TEIClient) Dimension() int {
	return c.dimension
}

// Close releases idle connections.
func (c *TEIClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

func (c *TEIClient) post(ctx context.Context, inputs []string) ([][]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(embedRequest{Inputs: inputs, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("encoding tei request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building tei request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: decoding tei response: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}

var _ Provider = (*TEIClient)(nil)
