package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/trailkeeper/internal/common"
	"github.com/dmitrijs2005/trailkeeper/internal/docpath"
	"github.com/dmitrijs2005/trailkeeper/internal/embedding"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/rpc"
	"github.com/dmitrijs2005/trailkeeper/internal/server/repositories/repomanager"
)

const (
	SearchHikes        = "hikes"
	SearchObservations = "observations"
	SearchAll          = "all"

	DefaultTopK = 10
	MaxTopK     = 100

	HitHike        = "hike"
	HitObservation = "observation"
)

// Hit is one ranked search result. HikeID is set for both kinds; for hikes
// it equals ID.
type Hit struct {
	ID              string
	Type            string
	Score           float64
	Name            string
	Location        string
	Description     string
	ObservationText string
	HikeID          string
}

// SearchResult carries the hits and the dimension of the query vector.
type SearchResult struct {
	Hits            []Hit
	QueryVectorSize int
}

// SearchService ranks an identity's embedded documents by cosine similarity
// to the embedded query.
type SearchService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	embedder    embedding.Embedder
	logger      logging.Logger
}

func NewSearchService(db *sql.DB, m repomanager.RepositoryManager, e embedding.Embedder, l logging.Logger) *SearchService {
	return &SearchService{db: db, repomanager: m, embedder: e, logger: l.With("module", "search")}
}

// Configured reports whether queries can be embedded.
func (s *SearchService) Configured() bool {
	return s.embedder != nil && s.embedder.Configured()
}

// Search embeds query and returns at most topK documents of searchType
// ("hikes", "observations" or "all"; empty means "hikes"). A non-positive
// topK means DefaultTopK.
func (s *SearchService) Search(ctx context.Context, identityID, query, searchType string, topK int) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidArgument, embedding.ErrEmptyText)
	}
	if identityID == "" {
		return nil, common.ErrUnauthorized
	}

	wantHikes, wantObs, err := searchKinds(searchType)
	if err != nil {
		return nil, err
	}

	switch {
	case topK <= 0:
		topK = DefaultTopK
	case topK > MaxTopK:
		topK = MaxTopK
	}

	if !s.Configured() {
		return nil, embedding.ErrNotConfigured
	}

	qv, err := s.embedder.Embed(ctx, embedding.Chunk{
		UserUID: identityID,
		ID:      "query",
		Type:    embedding.ChunkQuery,
		Text:    query,
	})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	docs, err := s.repomanager.Documents(s.db).ListEmbedded(ctx, identityID)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(docs))
	for _, d := range docs {
		p, err := docpath.Parse(d.Path)
		if err != nil {
			continue
		}
		vec, ok := rpc.Floats(d.Fields["embedding_vector"])
		if !ok || len(vec) == 0 {
			s.logger.Debug(ctx, "skipping document with malformed vector", "path", d.Path)
			continue
		}

		var h Hit
		switch len(p.Segments) {
		case 4:
			if !wantHikes {
				continue
			}
			h = Hit{
				ID:          d.DocID,
				Type:        HitHike,
				Name:        stringField(d.Fields, "name"),
				Location:    stringField(d.Fields, "location"),
				Description: stringField(d.Fields, "description"),
				HikeID:      d.DocID,
			}
		case 6:
			if !wantObs {
				continue
			}
			h = Hit{
				ID:              d.DocID,
				Type:            HitObservation,
				ObservationText: stringField(d.Fields, "observationText"),
				Location:        stringField(d.Fields, "location"),
				HikeID:          p.Segments[3],
			}
		default:
			continue
		}
		h.Score = embedding.Cosine(qv, vec)
		hits = append(hits, h)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}

	return &SearchResult{Hits: hits, QueryVectorSize: len(qv)}, nil
}

func searchKinds(searchType string) (hikes, observations bool, err error) {
	switch strings.ToLower(strings.TrimSpace(searchType)) {
	case "", SearchHikes:
		return true, false, nil
	case SearchObservations:
		return false, true, nil
	case SearchAll:
		return true, true, nil
	default:
		return false, false, fmt.Errorf("%w: unknown search type %q", common.ErrInvalidArgument, searchType)
	}
}

func stringField(fields map[string]any, key string) string {
	s, _ := rpc.String(fields[key])
	return s
}
