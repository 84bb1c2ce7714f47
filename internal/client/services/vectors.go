package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// VectorService attaches embeddings to the remote hike and observation
// documents of a user. Records are processed one at a time.
type VectorService struct {
	repos    *client.Repositories
	remote   client.DocumentStore
	embedder embedding.Embedder
	gate     connectivity.Gate
	logger   logging.Logger

	mu sync.Mutex
}

func NewVectorService(repos *client.Repositories, remote client.DocumentStore, embedder embedding.Embedder, gate connectivity.Gate, logger logging.Logger) *VectorService {
	return &VectorService{
		repos:    repos,
		remote:   remote,
		embedder: embedder,
		gate:     gate,
		logger:   logger.With("module", "vectors"),
	}
}

// SyncUserVectors embeds every non-deleted hike of userID followed by its
// observations. It is a no-op without a configured embedder or while
// offline. Per-record failures are logged and skipped; only local read
// errors are returned.
func (v *VectorService) SyncUserVectors(ctx context.Context, userID int64, identityID string) error {
	if v.embedder == nil || !v.embedder.Configured() {
		v.logger.Debug(ctx, "embedder not configured, skipping vector sync")
		return nil
	}
	if !v.gate.Online() {
		v.logger.Debug(ctx, "offline, skipping vector sync")
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	hikes, err := v.repos.Hikes.GetByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("load hikes: %w", err)
	}

	var embedded, skipped int
	for _, h := range hikes {
		if v.syncHike(ctx, identityID, h) {
			embedded++
		} else {
			skipped++
		}

		observations, err := v.repos.Observations.GetByHike(ctx, h.ID)
		if err != nil {
			return fmt.Errorf("load observations of hike %d: %w", h.ID, err)
		}
		for _, o := range observations {
			if strings.TrimSpace(o.Text) == "" {
				continue
			}
			if v.syncObservation(ctx, identityID, o) {
				embedded++
			} else {
				skipped++
			}
		}
	}

	v.logger.Info(ctx, "vector sync finished", "embedded", embedded, "skipped", skipped)
	return nil
}

func (v *VectorService) syncHike(ctx context.Context, uid string, h models.Hike) bool {
	chunk := embedding.Chunk{
		UserUID: uid,
		ID:      fmt.Sprintf("hike_%d", h.ID),
		Type:    embedding.ChunkHikeDescription,
		Text:    HikeChunkText(h),
	}
	return v.embedInto(ctx, chunk, docpath.Hike(uid, h.ID))
}

func (v *VectorService) syncObservation(ctx context.Context, uid string, o models.Observation) bool {
	chunk := embedding.Chunk{
		UserUID: uid,
		ID:      fmt.Sprintf("obs_%d", o.ID),
		Type:    embedding.ChunkObservationNote,
		Text:    ObservationChunkText(o),
	}
	return v.embedInto(ctx, chunk, docpath.Observation(uid, o.HikeID, o.ID))
}

func (v *VectorService) embedInto(ctx context.Context, chunk embedding.Chunk, path string) bool {
	vec, err := v.embedder.Embed(ctx, chunk)
	if err != nil {
		v.logger.Warn(ctx, "embedding failed", "chunk", chunk.ID, "error", err)
		return false
	}
	if err := v.remote.Merge(ctx, path, embeddingFields(vec, timex.NowMilli())); err != nil {
		v.logger.Warn(ctx, "storing embedding failed", "path", path, "error", err)
		return false
	}
	return true
}

// HikeChunkText is the text embedded for a hike.
func HikeChunkText(h models.Hike) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hike: %s\n", h.Name)
	fmt.Fprintf(&b, "Location: %s\n", h.Location)
	fmt.Fprintf(&b, "Difficulty: %s\n", h.Difficulty)
	fmt.Fprintf(&b, "LengthKm: %s\n", formatLength(h.Length))
	if h.Description != nil {
		fmt.Fprintf(&b, "Description: %s", *h.Description)
	}
	return b.String()
}

// ObservationChunkText is the text embedded for an observation.
func ObservationChunkText(o models.Observation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Observation: %s\n", o.Text)
	if o.Comments != nil {
		fmt.Fprintf(&b, "Comments: %s\n", *o.Comments)
	}
	if o.Location != nil {
		fmt.Fprintf(&b, "Location: %s\n", *o.Location)
	}
	return b.String()
}
