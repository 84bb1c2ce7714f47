package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/trailkeeper/internal/client/client"
	"github.com/dmitrijs2005/trailkeeper/internal/client/connectivity"
	"github.com/dmitrijs2005/trailkeeper/internal/client/models"
	"github.com/dmitrijs2005/trailkeeper/internal/logging"
	"github.com/dmitrijs2005/trailkeeper/internal/search"
)

const (
	semanticSearchType = "all"
	semanticTopK       = 10
)

// SearchService routes queries to semantic search when possible and to the
// local fuzzy engine otherwise.
type SearchService struct {
	repos    *client.Repositories
	searcher client.SemanticSearcher
	gate     connectivity.Gate
	logger   logging.Logger
}

func NewSearchService(repos *client.Repositories, searcher client.SemanticSearcher, gate connectivity.Gate, logger logging.Logger) *SearchService {
	return &SearchService{repos: repos, searcher: searcher, gate: gate, logger: logger.With("module", "search")}
}

// Search ranks the visible hikes for query. With semantic set, a signed in
// identity and an online gate, the remote ranking is used; any failure
// falls back to search.FuzzySearch.
func (s *SearchService) Search(ctx context.Context, query string, semantic bool) ([]models.Hike, error) {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	hikes, err := visibleHikes(ctx, s.repos, sess)
	if err != nil {
		return nil, err
	}

	if semantic && s.searcher != nil {
		switch {
		case !sess.HasIdentity():
			s.logger.Warn(ctx, "semantic search needs a signed in identity, using fuzzy search")
		case !s.gate.Online():
			s.logger.Warn(ctx, "offline, using fuzzy search")
		default:
			hits, err := s.searcher.SemanticSearch(ctx, query, semanticSearchType, semanticTopK)
			if err == nil {
				return rankByHits(hikes, hits), nil
			}
			s.logger.Warn(ctx, "semantic search failed, using fuzzy search", "error", err)
		}
	}

	return search.FuzzySearch(hikes, query), nil
}

// Filter applies f to the visible hikes.
func (s *SearchService) Filter(ctx context.Context, f search.Filter) ([]models.Hike, error) {
	sess, err := s.repos.Session.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	hikes, err := visibleHikes(ctx, s.repos, sess)
	if err != nil {
		return nil, err
	}
	return search.AdvancedFilter(hikes, f), nil
}

// rankByHits maps remote hits onto local hikes in hit order. Observation
// hits stand for their parent hike; duplicates and unknown ids are dropped.
func rankByHits(hikes []models.Hike, hits []client.SearchHit) []models.Hike {
	byID := make(map[int64]models.Hike, len(hikes))
	for _, h := range hikes {
		byID[h.ID] = h
	}

	seen := make(map[int64]bool)
	var out []models.Hike
	for _, hit := range hits {
		ref := hit.ID
		if hit.Type == "observation" {
			ref = hit.HikeID
		}
		id, err := strconv.ParseInt(ref, 10, 64)
		if err != nil || seen[id] {
			continue
		}
		if h, ok := byID[id]; ok {
			seen[id] = true
			out = append(out, h)
		}
	}
	return out
}

// visibleHikes returns the signed in user's hikes, or the anonymous ones.
func visibleHikes(ctx context.Context, repos *client.Repositories, sess models.Session) ([]models.Hike, error) {
	if sess.UserID > 0 {
		return repos.Hikes.GetByOwner(ctx, sess.UserID)
	}
	return repos.Hikes.GetUnowned(ctx)
}
