package client

import "context"

// Document is one remote document: its full path, its id (the last path
// segment) and its field map.
type Document struct {
	Path   string
	ID     string
	Fields map[string]any
}

// DocumentStore is the remote side of sync.
type DocumentStore interface {
	// Merge writes fields into the document at path, creating it if needed.
	// Fields absent from the map keep their remote values.
	Merge(ctx context.Context, path string, fields map[string]any) error
	// List returns the direct child documents of a collection path.
	List(ctx context.Context, collection string) ([]Document, error)
}

// Identity is what the remote store returns on Register or Login.
type Identity struct {
	ID          string
	AccessToken string
}

// SearchHit is one semantic search result.
type SearchHit struct {
	ID              string
	Type            string
	Score           float64
	Name            string
	Location        string
	Description     string
	ObservationText string
	HikeID          string
}

type SemanticSearcher interface {
	SemanticSearch(ctx context.Context, query, searchType string, topK int) ([]SearchHit, error)
}

// Remote is the whole surface the CLI needs from the server.
type Remote interface {
	DocumentStore
	SemanticSearcher
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password string) (Identity, error)
	Login(ctx context.Context, email, password string) (Identity, error)
	SetAccessToken(token string)
	PresignPicture(ctx context.Context, method, key string) (string, string, error)
	Close() error
}
