package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
	"github.com/burpeebet/foodsearch/internal/infrastructure/memocache"
)

// SearchServiceConfig holds tuning values for the hybrid search service.
type SearchServiceConfig struct {
	DefaultLimit  int // result count when the caller does not specify one
	CacheFirstMin int // cache hits needed to short-circuit the provider call
}

// SearchOptions carries per-request options for text searches.
type SearchOptions struct {
	Limit      int
	CacheFirst bool
}

// DefaultSearchOptions returns the standard cache-first options.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{CacheFirst: true}
}

// SearchService is the hybrid search orchestrator: it reconciles the
// persisted food cache with a remote nutrition provider, memoizes provider
// responses, writes fresh provider results back into the cache, and feeds
// popularity increments to a background queue. It is the error boundary
// for live search: downstream failures degrade to partial or cache-only
// results instead of surfacing to the caller.
type SearchService struct {
	store         domain.FoodStore
	provider      domain.ProviderClient
	memo          *memocache.Memo
	popularity    PopularityQueue
	defaultLimit  int
	cacheFirstMin int
}

// NewSearchService creates the orchestrator with its dependencies.
func NewSearchService(
	store domain.FoodStore,
	provider domain.ProviderClient,
	memo *memocache.Memo,
	popularity PopularityQueue,
	config SearchServiceConfig,
) *SearchService {
	defaultLimit := config.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	cacheFirstMin := config.CacheFirstMin
	if cacheFirstMin <= 0 {
		cacheFirstMin = 5
	}

	return &SearchService{
		store:         store,
		provider:      provider,
		memo:          memo,
		popularity:    popularity,
		defaultLimit:  defaultLimit,
		cacheFirstMin: cacheFirstMin,
	}
}

// SearchFoods runs a hybrid text search. Cache hits short-circuit the
// provider entirely when they reach min(limit, cacheFirstMin); otherwise
// the provider augments the cache results, fresh provider records are
// written back, and the merged list is deduplicated by food ID with cache
// results first.
func (s *SearchService) SearchFoods(ctx context.Context, query string, opts SearchOptions) (*domain.SearchResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, domain.ErrInvalidQuery
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	var cacheResults []domain.FoodRecord
	if opts.CacheFirst {
		cacheResults = s.searchCache(ctx, query, limit)

		threshold := limit
		if s.cacheFirstMin < threshold {
			threshold = s.cacheFirstMin
		}
		if len(cacheResults) >= threshold {
			return &domain.SearchResult{
				Results:   cacheResults,
				Source:    domain.ResultSourceCache,
				CacheHits: len(cacheResults),
				Total:     len(cacheResults),
			}, nil
		}
	}

	remaining := limit - len(cacheResults)
	if remaining < s.cacheFirstMin {
		remaining = s.cacheFirstMin
	}

	apiResults, err := s.providerSearch(ctx, normalized, remaining)
	if err != nil {
		log.Printf("[SEARCH] provider search failed for %q, falling back to cache: %v", query, err)
		fallback := cacheResults
		if !opts.CacheFirst {
			fallback = s.searchCache(ctx, query, limit)
		}
		return &domain.SearchResult{
			Results:   fallback,
			Source:    domain.ResultSourceCacheFallback,
			CacheHits: len(fallback),
			Total:     len(fallback),
			Error:     err.Error(),
		}, nil
	}

	// Write-back: grow the cache organically from live traffic.
	s.cacheRecords(ctx, apiResults)

	combined := combineAndDeduplicate(cacheResults, apiResults, limit)
	source := domain.ResultSourceAPI
	if len(cacheResults) > 0 {
		source = domain.ResultSourceHybrid
	}

	return &domain.SearchResult{
		Results:   combined,
		Source:    source,
		CacheHits: len(cacheResults),
		APIHits:   len(apiResults),
		Total:     len(combined),
	}, nil
}

// SearchByBarcode looks up a single product: cache first, then provider
// with write-back. A total miss is a "not_found" result, not an error.
func (s *SearchService) SearchByBarcode(ctx context.Context, barcode string) (*domain.BarcodeResult, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, domain.ErrInvalidQuery
	}

	cached, err := s.store.GetByBarcode(ctx, barcode)
	if err != nil {
		// Treat a broken cache as a miss; the provider may still answer.
		log.Printf("[SEARCH] barcode cache lookup failed for %s: %v", barcode, err)
	}
	if cached != nil {
		s.popularity.Submit([]string{cached.FoodID})
		return &domain.BarcodeResult{Result: cached, Source: domain.ResultSourceCache}, nil
	}

	apiResult, err := s.provider.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if apiResult == nil {
		return &domain.BarcodeResult{Source: domain.ResultSourceNotFound}, nil
	}

	s.cacheRecords(ctx, []domain.FoodRecord{*apiResult})
	return &domain.BarcodeResult{Result: apiResult, Source: domain.ResultSourceAPI}, nil
}

// GetPopularFoods returns the most-retrieved cached foods.
func (s *SearchService) GetPopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.store.PopularFoods(ctx, limit)
}

// GetFoodsByCategory returns cached foods in a category by popularity.
func (s *SearchService) GetFoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error) {
	if strings.TrimSpace(category) == "" {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		limit = 20
	}
	return s.store.FoodsByCategory(ctx, category, limit)
}

// ClearCache drops the in-process memo only; the persisted store is a
// growing reference database and is never cleared from here.
func (s *SearchService) ClearCache() {
	s.memo.Clear()
}

// Stats combines persisted-store aggregates with the memo size.
func (s *SearchService) Stats(ctx context.Context) (*domain.CacheStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats.MemoEntries = s.memo.Len()
	return stats, nil
}

// searchCache queries the persisted cache and submits popularity
// increments for every record served. The store contract already fails
// open; treating an error here as an empty result is the last-resort
// safety net for other implementations.
func (s *SearchService) searchCache(ctx context.Context, query string, limit int) []domain.FoodRecord {
	results, err := s.store.SearchCached(ctx, query, limit)
	if err != nil {
		log.Printf("[SEARCH] cache search failed for %q: %v", query, err)
		return []domain.FoodRecord{}
	}

	if len(results) > 0 {
		ids := make([]string, len(results))
		for i, r := range results {
			ids[i] = r.FoodID
		}
		s.popularity.Submit(ids)
	}
	return results
}

// providerSearch consults the short-TTL memo before issuing a provider
// request, and memoizes fresh responses.
func (s *SearchService) providerSearch(ctx context.Context, normalizedQuery string, limit int) ([]domain.FoodRecord, error) {
	if memoized, ok := s.memo.Get(normalizedQuery, limit); ok {
		return memoized, nil
	}

	results, err := s.provider.Search(ctx, normalizedQuery, domain.ProviderSearchOptions{PageSize: limit})
	if err != nil {
		return nil, err
	}

	s.memo.Set(normalizedQuery, limit, results)
	return results, nil
}

// cacheRecords persists provider results with an initial popularity of 1.
// Write-back failures are logged, never surfaced: caching is an
// optimization, not part of search correctness.
func (s *SearchService) cacheRecords(ctx context.Context, records []domain.FoodRecord) {
	if len(records) == 0 {
		return
	}

	toCache := make([]domain.FoodRecord, len(records))
	copy(toCache, records)
	now := time.Now().UTC()
	for i := range toCache {
		toCache[i].PopularityScore = 1
		toCache[i].LastUpdated = now
	}

	if _, err := s.store.Upsert(ctx, toCache); err != nil {
		log.Printf("[SEARCH] write-back of %d records failed: %v", len(toCache), err)
	}
}

// combineAndDeduplicate merges cache results (first, assumed more
// relevant) with provider results, dropping duplicate food IDs and
// truncating to limit.
func combineAndDeduplicate(cacheResults, apiResults []domain.FoodRecord, limit int) []domain.FoodRecord {
	seen := make(map[string]bool, len(cacheResults)+len(apiResults))
	combined := make([]domain.FoodRecord, 0, limit)

	for _, group := range [][]domain.FoodRecord{cacheResults, apiResults} {
		for _, food := range group {
			if len(combined) >= limit {
				return combined
			}
			if seen[food.FoodID] {
				continue
			}
			seen[food.FoodID] = true
			combined = append(combined, food)
		}
	}
	return combined
}
