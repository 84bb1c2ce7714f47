package services

import (
	"context"
	"database/sql"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/dbx"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/documents"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/users"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
	err     error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	cp := *u
	f.byEmail[u.Email] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// fakeDocs mirrors the PostgreSQL merge: an existing path owned by someone
// else is not touched.
type fakeDocs struct {
	mu   sync.Mutex
	docs map[string]models.Document
	err  error
}

func (f *fakeDocs) Merge(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cur, ok := f.docs[d.Path]
	if ok && cur.OwnerID != d.OwnerID {
		return common.ErrOwnershipConflict
	}
	if !ok {
		cur = *d
		cur.Fields = map[string]any{}
	}
	maps.Copy(cur.Fields, d.Fields)
	f.docs[d.Path] = cur
	return nil
}

func (f *fakeDocs) List(_ context.Context, parent string) ([]models.Document, error) {
	return f.filter(func(d models.Document) bool { return d.Parent == parent })
}

func (f *fakeDocs) ListEmbedded(_ context.Context, owner string) ([]models.Document, error) {
	return f.filter(func(d models.Document) bool {
		_, ok := d.Fields["embedding_vector"]
		return d.OwnerID == owner && ok
	})
}

func (f *fakeDocs) filter(keep func(models.Document) bool) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Document
	for _, d := range f.docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

type fakeManager struct {
	users *fakeUsers
	docs  *fakeDocs
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		users: &fakeUsers{byEmail: map[string]*models.User{}},
		docs:  &fakeDocs{docs: map[string]models.Document{}},
	}
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeManager) Documents(dbx.DBTX) documents.Repository      { return m.docs }

// keywordEmbedder maps text onto a vector with one axis per keyword, so
// similarity is predictable.
type keywordEmbedder struct {
	keywords []string
	calls    int
	err      error
}

func (k *keywordEmbedder) Configured() bool { return true }

func (k *keywordEmbedder) Embed(_ context.Context, c embedding.Chunk) ([]float64, error) {
	k.calls++
	if k.err != nil {
		return nil, k.err
	}
	text := strings.ToLower(c.Text)
	v := make([]float64, len(k.keywords))
	for i, w := range k.keywords {
		if strings.Contains(text, w) {
			v[i] = 1
		}
	}
	return v, nil
}
