package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	mu         sync.Mutex
	chunks     []embedding.Chunk
	failFor    string
	configured bool
}

func (c *countingEmbedder) Configured() bool { return c.configured }

func (c *countingEmbedder) Embed(_ context.Context, chunk embedding.Chunk) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, chunk)
	if chunk.ID == c.failFor {
		return nil, embedding.ErrProviderFailed
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

func TestVectorService_EmbedsOwnedRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h1 := f.addHike(t, "Tryfan", ptr(int64(7)))
	h2 := f.addHike(t, "Glyder Fach", ptr(int64(7)))
	other := f.addHike(t, "Cadair Idris", ptr(int64(9)))
	o1 := f.addObservation(t, h1.ID, "raven")
	f.addObservation(t, other.ID, "not mine")

	emb := &countingEmbedder{configured: true}
	svc := NewVectorService(f.repos, f.store, emb, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))

	var ids []string
	for _, c := range emb.chunks {
		ids = append(ids, c.ID)
		assert.Equal(t, "uid-7", c.UserUID)
	}
	assert.ElementsMatch(t, []string{"hike_1", "hike_2", "obs_1"}, ids)

	for _, p := range []string{docpath.Hike("uid-7", h1.ID), docpath.Hike("uid-7", h2.ID), docpath.Observation("uid-7", h1.ID, o1.ID)} {
		doc, ok := f.store.Get(p)
		require.True(t, ok, p)
		assert.Len(t, doc[fieldEmbeddingVector], 3)
		assert.Equal(t, "gemini-2.5-flash", doc[fieldEmbeddingSource])
		assert.Equal(t, float64(fixedNow), doc[fieldEmbeddingUpdatedAt])
	}
}

func TestVectorService_KeepsSiblingFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.signIn(t, 7, "uid-7")
	h := f.addHike(t, "Tryfan", ptr(int64(7)))

	require.NoError(t, f.syncService(nil, true).PushLocalChanges(ctx))

	emb := &countingEmbedder{configured: true}
	svc := NewVectorService(f.repos, f.store, emb, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))

	doc, _ := f.store.Get(docpath.Hike("uid-7", h.ID))
	assert.Equal(t, "Tryfan", doc["name"])
	assert.NotNil(t, doc[fieldEmbeddingVector])

	h.Name = "Tryfan North Ridge"
	h.MarkDirty(fixedNow)
	require.NoError(t, f.repos.Hikes.Upsert(ctx, &h))
	require.NoError(t, f.syncService(nil, true).PushLocalChanges(ctx))

	doc, _ = f.store.Get(docpath.Hike("uid-7", h.ID))
	assert.Equal(t, "Tryfan North Ridge", doc["name"])
	assert.NotNil(t, doc[fieldEmbeddingVector])
}

func TestVectorService_FailuresAreSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	h1 := f.addHike(t, "Tryfan", ptr(int64(7)))
	h2 := f.addHike(t, "Glyder Fach", ptr(int64(7)))

	emb := &countingEmbedder{configured: true, failFor: "hike_1"}
	f.store.FailMerge = func(path string, _ map[string]any) error {
		if path == docpath.Hike("uid-7", h2.ID) {
			return errors.New("quota")
		}
		return nil
	}

	svc := NewVectorService(f.repos, f.store, emb, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))
	assert.Len(t, emb.chunks, 2)

	_, ok := f.store.Get(docpath.Hike("uid-7", h1.ID))
	assert.False(t, ok)
}

func TestVectorService_Guards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addHike(t, "Tryfan", ptr(int64(7)))

	unconfigured := &countingEmbedder{}
	svc := NewVectorService(f.repos, f.store, unconfigured, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))
	assert.Empty(t, unconfigured.chunks)

	offline := &countingEmbedder{configured: true}
	svc = NewVectorService(f.repos, f.store, offline, connectivity.Static(false), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))
	assert.Empty(t, offline.chunks)

	svc = NewVectorService(f.repos, f.store, nil, connectivity.Static(true), logging.Nop())
	require.NoError(t, svc.SyncUserVectors(ctx, 7, "uid-7"))
	assert.Zero(t, f.store.Len())
}

func TestChunkText(t *testing.T) {
	h := models.Hike{Name: "Tryfan", Location: "Ogwen", Difficulty: "Hard", Length: 5}
	assert.Equal(t, "Hike: Tryfan\nLocation: Ogwen\nDifficulty: Hard\nLengthKm: 5.0\n", HikeChunkText(h))

	h.Length = 7.25
	h.Description = ptr("scramble")
	assert.True(t, strings.HasSuffix(HikeChunkText(h), "LengthKm: 7.25\nDescription: scramble"))

	o := models.Observation{Text: "raven", Location: ptr("summit")}
	assert.Equal(t, "Observation: raven\nLocation: summit\n", ObservationChunkText(o))
}
