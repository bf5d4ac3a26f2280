// Package embeddings provides embedding generation for semantic task matching.
//
// Supports FastEmbed (local ONNX, requires cgo) and TEI (external service)
// providers. The provider is created once at startup and shared read-only by
// every request; its absence disables the semantic tier instead of failing
// matches.
package embeddings
