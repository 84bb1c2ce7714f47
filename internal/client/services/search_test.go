package services

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	hits  []client.SearchHit
	err   error
	calls int
}

func (f *fakeSearcher) SemanticSearch(_ context.Context, _, _ string, _ int) ([]client.SearchHit, error) {
	f.calls++
	return f.hits, f.err
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func names(hikes []models.Hike) []string {
	out := make([]string, len(hikes))
	for i, h := range hikes {
		out[i] = h.Name
	}
	return out
}

func TestSearchService_SemanticRanking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, 7, "uid-7")
	h1 := f.addHike(t, "Tryfan", ptr(int64(7)))
	h2 := f.addHike(t, "Glyder Fach", ptr(int64(7)))
	f.addHike(t, "Cadair Idris", ptr(int64(9)))

	searcher := &fakeSearcher{hits: []client.SearchHit{
		{ID: "1", Type: "observation", HikeID: itoa(h2.ID)},
		{ID: itoa(h1.ID), Type: "hike"},
		{ID: itoa(h2.ID), Type: "hike"},
		{ID: "3", Type: "hike"},
		{ID: "999", Type: "hike"},
	}}
	svc := NewSearchService(f.repos, searcher, connectivity.Static(true), logging.Nop())

	got, err := svc.Search(ctx, "anything", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Glyder Fach", "Tryfan"}, names(got))
	assert.Equal(t, 1, searcher.calls)
}

func TestSearchService_FallsBackToFuzzy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, 7, "uid-7")
	f.addHike(t, "Tryfan", ptr(int64(7)))
	f.addHike(t, "Glyder Fach", ptr(int64(7)))

	tests := []struct {
		name      string
		searcher  *fakeSearcher
		online    bool
		semantic  bool
		wantCalls int
	}{
		{name: "transport error", searcher: &fakeSearcher{err: errors.New("boom")}, online: true, semantic: true, wantCalls: 1},
		{name: "offline", searcher: &fakeSearcher{}, online: false, semantic: true},
		{name: "toggle off", searcher: &fakeSearcher{}, online: true, semantic: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSearchService(f.repos, tt.searcher, connectivity.Static(tt.online), logging.Nop())
			got, err := svc.Search(ctx, "tryfan", tt.semantic)
			require.NoError(t, err)
			assert.Equal(t, []string{"Tryfan"}, names(got))
			assert.Equal(t, tt.wantCalls, tt.searcher.calls)
		})
	}
}

func TestSearchService_AnonymousUsesUnownedHikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addHike(t, "Tryfan", nil)
	f.addHike(t, "Tryfan", ptr(int64(7)))

	searcher := &fakeSearcher{}
	svc := NewSearchService(f.repos, searcher, connectivity.Static(true), logging.Nop())
	got, err := svc.Search(ctx, "tryfan", true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].UserID)
	assert.Zero(t, searcher.calls)
}

func TestSearchService_Filter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, 7, "uid-7")
	f.addHike(t, "Tryfan", ptr(int64(7)))
	long := f.addHike(t, "Glyder Fach", ptr(int64(7)))
	long.Length = 30
	require.NoError(t, f.repos.Hikes.Upsert(ctx, &long))

	svc := NewSearchService(f.repos, nil, connectivity.Static(true), logging.Nop())
	got, err := svc.Filter(ctx, search.Filter{MinLength: ptr(20.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Glyder Fach"}, names(got))

	all, err := svc.Filter(ctx, search.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
