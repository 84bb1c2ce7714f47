package grpc

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/server/auth"
	"github.com/dmitrijs2005/trailkeeper/internal/server/models"
	"github.com/dmitrijs2005/trailkeeper/internal/server/services"
)

const testSecret = "test-secret"

type fakeUsers struct {
	mu       sync.Mutex
	accounts map[string]string // email -> password
}

func (f *fakeUsers) issue(email string) (*services.Identity, error) {
	id := "id-" + email
	tok, err := auth.GenerateToken(id, []byte(testSecret), time.Hour)
	if err != nil {
		return nil, err
	}
	return &services.Identity{ID: id, AccessToken: tok}, nil
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*services.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.accounts[email] = password
	return f.issue(email)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*services.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return nil, common.ErrUnauthorized
	}
	return f.issue(email)
}

type fakeDocs struct {
	mu   sync.Mutex
	docs map[string]models.Document
	err  error
}

func (f *fakeDocs) Merge(_ context.Context, identityID, path string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d, ok := f.docs[path]
	if !ok {
		i := strings.LastIndex(path, "/")
		d = models.Document{Path: path, Parent: path[:i], DocID: path[i+1:], OwnerID: identityID, Fields: map[string]any{}}
	}
	maps.Copy(d.Fields, fields)
	f.docs[path] = d
	return nil
}

func (f *fakeDocs) List(_ context.Context, _, path string) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Document
	for _, d := range f.docs {
		if d.Parent == path {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

type fakeSearch struct {
	gotIdentity string
	gotType     string
	gotTopK     int
	res         *services.SearchResult
	err         error
}

func (f *fakeSearch) Search(_ context.Context, identityID, _, searchType string, topK int) (*services.SearchResult, error) {
	f.gotIdentity, f.gotType, f.gotTopK = identityID, searchType, topK
	return f.res, f.err
}

type fakePictures struct{}

func (fakePictures) PresignPut(_ context.Context, identityID, key string) (string, string, error) {
	if key == "" {
		key = "users/" + identityID + "/pictures/new"
	}
	return key, "http://s3/put/" + key, nil
}

func (fakePictures) PresignGet(_ context.Context, identityID, key string) (string, error) {
	if !strings.HasPrefix(key, "users/"+identityID+"/") {
		return "", fmt.Errorf("%w: %s", common.ErrOwnershipConflict, key)
	}
	return "http://s3/get/" + key, nil
}
