package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
)

// MemoryStore is a DocumentStore kept in process memory. It is safe for
// concurrent use.
type MemoryStore struct {
	mu     sync.Mutex
	docs   map[string]map[string]any
	merges int

	// FailMerge, when set, is consulted before every Merge; a non-nil result
	// is returned instead of writing.
	FailMerge func(path string, fields map[string]any) error
	// FailList is the List counterpart of FailMerge.
	FailList func(collection string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

func (m *MemoryStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := docpath.Parse(path)
	if err != nil {
		return err
	}
	if !p.IsDocument() {
		return fmt.Errorf("%w: %q is a collection", common.ErrInvalidPath, path)
	}

	// Round-trip through the wire encoding so stored values have the same
	// shapes a gRPC client would see.
	wire, err := rpc.NewStruct(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailMerge != nil {
		if err := m.FailMerge(path, fields); err != nil {
			return err
		}
	}

	doc, ok := m.docs[path]
	if !ok {
		doc = make(map[string]any, len(fields))
		m.docs[path] = doc
	}
	maps.Copy(doc, wire.AsMap())
	m.merges++
	return nil
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailList != nil {
		if err := m.FailList(collection); err != nil {
			return nil, err
		}
	}

	prefix := strings.TrimSuffix(collection, "/") + "/"
	var result []Document
	for path, fields := range m.docs {
		id, ok := strings.CutPrefix(path, prefix)
		if !ok || id == "" || strings.Contains(id, "/") {
			continue
		}
		result = append(result, Document{Path: path, ID: id, Fields: maps.Clone(fields)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Get returns a copy of the document at path.
func (m *MemoryStore) Get(path string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	return maps.Clone(doc), ok
}

// Put replaces a document outright, bypassing merge semantics.
func (m *MemoryStore) Put(path string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = maps.Clone(fields)
}

// Merges reports how many successful Merge calls were made.
func (m *MemoryStore) Merges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merges
}

// Len reports the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// MemoryAuth issues deterministic identities without a server. It pairs
// with MemoryStore for offline demos.
type MemoryAuth struct {
	mu    sync.Mutex
	token string
}

func (a *MemoryAuth) Register(ctx context.Context, email, password string) (Identity, error) {
	return a.Login(ctx, email, password)
}

// Login derives the identity id from the email; the password is not
// checked.
func (a *MemoryAuth) Login(ctx context.Context, email, _ string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	id := Identity{ID: "local-" + hex.EncodeToString(sum[:8]), AccessToken: "memory"}
	a.SetAccessToken(id.AccessToken)
	return id, nil
}

func (a *MemoryAuth) SetAccessToken(token string) {
	a.mu.Lock()
	a.token = token
	a.mu.Unlock()
}

// AccessToken returns the last token set.
func (a *MemoryAuth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}
