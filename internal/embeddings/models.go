package embeddings

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "BAAI/bge-small-en-v1.5"

// Model is an embedding model with a known vector width.
type Model struct {
	Name      string
	Dimension int
}

// Models lists the English models devtrack ships support for. Both providers
// accept them; TEI also serves models outside this list.
var Models = []Model{
	{Name: "BAAI/bge-small-en-v1.5", Dimension: 384},
	{Name: "BAAI/bge-base-en-v1.5", Dimension: 768},
	{Name: "sentence-transformers/all-MiniLM-L6-v2", Dimension: 384},
}

// LookupModel finds name in Models.
func LookupModel(name string) (Model, bool) {
	for _, m := range Models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// dimensionFor returns the width of a listed model, or guesses from the
// size tag in the name.
func dimensionFor(name string) int {
	if m, ok := LookupModel(name); ok {
		return m.Dimension
	}
	switch lower := strings.ToLower(name); {
	case strings.Contains(lower, "large"):
		return 1024
	case strings.Contains(lower, "base"):
		return 768
	default:
		return 384
	}
}

// DefaultCacheDir is where FastEmbed keeps model files: the user cache
// directory, or the temp directory when there is none.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "devtrack", "models")
}
