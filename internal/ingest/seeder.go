package ingest

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// seedProvider is the slice of a nutrition provider the seeder needs.
type seedProvider interface {
	Search(ctx context.Context, query string, opts domain.ProviderSearchOptions) ([]domain.FoodRecord, error)
	PopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error)
	FoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error)
}

// seededPopularity gives seeded foods a head start over write-back
// records so they surface before the cache has real traffic data.
const seededPopularity = 10

// Common whole foods to search for specifically.
var commonFoods = []string{
	"apple", "banana", "orange", "strawberry", "blueberry", "grape",
	"broccoli", "spinach", "carrot", "tomato", "potato", "onion",
	"chicken breast", "salmon", "tuna", "ground beef", "pork",
	"eggs", "milk", "cheese", "yogurt", "butter",
	"bread", "rice", "pasta", "oats", "quinoa",
	"almonds", "walnuts", "peanuts", "olive oil", "avocado",
	"black beans", "chickpeas", "lentils", "tofu",
	"water", "coffee", "tea", "orange juice",
}

var seedCategories = []string{
	"fruits", "vegetables", "meat", "fish", "dairy",
	"eggs", "grains", "nuts", "legumes", "oils",
	"beverages", "snacks", "bread", "cereals", "pasta",
	"rice", "cheese", "yogurt", "milk", "chicken",
}

// SeedSummary reports the outcome of a seeding run.
type SeedSummary struct {
	Added    int
	Skipped  int
	Errors   int
	Duration time.Duration
}

// Seeder bootstraps an empty food cache by pulling common whole foods,
// globally popular products, and per-category selections from a live
// provider. Requests are throttled to respect the provider's public rate
// limit, so a full run takes several minutes.
type Seeder struct {
	store    recordStore
	provider seedProvider
	limiter  *rate.Limiter
}

// NewSeeder creates a seeder with the given inter-request delay.
func NewSeeder(store recordStore, provider seedProvider, delay time.Duration) *Seeder {
	if delay <= 0 {
		delay = 6 * time.Second
	}
	return &Seeder{
		store:    store,
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run executes the three seeding phases. Per-query failures are counted
// and logged; only context cancellation aborts the run.
func (s *Seeder) Run(ctx context.Context) (*SeedSummary, error) {
	start := time.Now()
	log.Printf("[INGEST] seeding from %d common foods and %d categories", len(commonFoods), len(seedCategories))

	summary := &SeedSummary{}

	for i, food := range commonFoods {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		log.Printf("[INGEST] searching %q (%d/%d)", food, i+1, len(commonFoods))
		results, err := s.provider.Search(ctx, food, domain.ProviderSearchOptions{PageSize: 3})
		s.cache(ctx, results, err, summary)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	log.Printf("[INGEST] fetching globally popular foods")
	results, err := s.provider.PopularFoods(ctx, 100)
	s.cache(ctx, results, err, summary)

	for i, category := range seedCategories {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		log.Printf("[INGEST] searching category %q (%d/%d)", category, i+1, len(seedCategories))
		results, err := s.provider.FoodsByCategory(ctx, category, 10)
		s.cache(ctx, results, err, summary)
	}

	summary.Duration = time.Since(start)
	log.Printf("[INGEST] seeding done: added=%d skipped=%d errors=%d in %s",
		summary.Added, summary.Skipped, summary.Errors, summary.Duration)
	return summary, nil
}

// cache upserts one query's results with the seeded popularity boost.
func (s *Seeder) cache(ctx context.Context, records []domain.FoodRecord, fetchErr error, summary *SeedSummary) {
	if fetchErr != nil {
		summary.Errors++
		log.Printf("[INGEST] seed query failed: %v", fetchErr)
		return
	}
	if len(records) == 0 {
		summary.Skipped++
		return
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].PopularityScore = seededPopularity
		records[i].LastUpdated = now
	}

	inserted, err := s.store.Upsert(ctx, records)
	summary.Added += inserted
	if err != nil {
		summary.Errors++
		log.Printf("[INGEST] seed upsert of %d records failed: %v", len(records), err)
	}
}
