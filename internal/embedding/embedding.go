// Package embedding turns hike and observation text into vectors.
package embedding

import (
	"context"
	"errors"
	"math"
)

const (
	// Model is the provider model used for every chunk.
	Model = "gemini-2.5-flash"

	// MaxTextRunes caps the text sent per chunk.
	MaxTextRunes = 2000

	ChunkHikeDescription = "hike_description"
	ChunkObservationNote = "observation_note"
	ChunkQuery           = "search_query"
)

var (
	ErrProviderFailed = errors.New("embedding provider failed")
	ErrEmptyText      = errors.New("text cannot be empty")
	ErrNotConfigured  = errors.New("embedding provider not configured")
)

// Chunk is one unit of text to embed together with its provenance.
type Chunk struct {
	UserUID string
	ID      string
	Type    string
	Text    string
}

// Embedder produces a vector for a chunk.
type Embedder interface {
	Embed(ctx context.Context, c Chunk) ([]float64, error)
	// Configured reports whether Embed can succeed at all, e.g. an API key
	// is present.
	Configured() bool
}

// Truncate cuts s to at most MaxTextRunes runes.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTextRunes {
		return s
	}
	return string(r[:MaxTextRunes])
}

// Cosine returns the cosine similarity of a and b. Vectors of different
// length, empty vectors and zero vectors score 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
