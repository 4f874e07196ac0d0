package domain

import "context"

// FoodStore is the typed interface over the persisted cache of food records.
type FoodStore interface {
	// SearchCached performs fuzzy/text search over name and search terms,
	// ranked by relevance then popularity. Implementations backed by a real
	// store fail open: backend errors are logged and an empty slice
	// returned, so a degraded cache never crashes a search.
	SearchCached(ctx context.Context, query string, limit int) ([]FoodRecord, error)

	// GetByBarcode returns the cached record for a barcode, or nil on miss.
	// A miss is not an error.
	GetByBarcode(ctx context.Context, barcode string) (*FoodRecord, error)

	// Upsert inserts or fully replaces records keyed by FoodID in bounded
	// batches. Returns the number of records written. CreatedAt is
	// preserved on update; PopularityScore is never lowered.
	Upsert(ctx context.Context, records []FoodRecord) (int, error)

	// IncrementPopularity atomically bumps a record's popularity score.
	IncrementPopularity(ctx context.Context, foodID string) error

	// PopularFoods returns up to limit records by descending popularity.
	PopularFoods(ctx context.Context, limit int) ([]FoodRecord, error)

	// FoodsByCategory returns up to limit records whose category matches,
	// by descending popularity.
	FoodsByCategory(ctx context.Context, category string, limit int) ([]FoodRecord, error)

	// Stats returns aggregate counts for operational visibility.
	Stats(ctx context.Context) (*CacheStats, error)
}

// ProviderSearchOptions carries paging options for provider searches.
type ProviderSearchOptions struct {
	PageSize int
	Page     int
}

// ProviderClient is the interface to a remote nutrition provider. Clients
// issue exactly one request per call; retries, backoff, and rate limiting
// are caller policy.
type ProviderClient interface {
	Search(ctx context.Context, query string, opts ProviderSearchOptions) ([]FoodRecord, error)
	GetByBarcode(ctx context.Context, barcode string) (*FoodRecord, error)
}
