package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// fakeSeedProvider serves one canned record per query and can fail
// selected queries.
type fakeSeedProvider struct {
	mu          sync.Mutex
	searches    []string
	categories  []string
	popularHits int
	failQuery   string
}

func (p *fakeSeedProvider) Search(ctx context.Context, query string, opts domain.ProviderSearchOptions) ([]domain.FoodRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches = append(p.searches, query)
	if query == p.failQuery {
		return nil, errors.New("provider unavailable")
	}
	return []domain.FoodRecord{{FoodID: "search-" + query, Name: query, Calories: 100}}, nil
}

func (p *fakeSeedProvider) PopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.popularHits++
	return []domain.FoodRecord{{FoodID: "popular-1", Name: "Coke", Calories: 42}}, nil
}

func (p *fakeSeedProvider) FoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.categories = append(p.categories, category)
	return []domain.FoodRecord{{FoodID: "cat-" + category, Name: category, Calories: 50}}, nil
}

func TestSeederRun_CoversAllPhases(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeSeedProvider{}
	seeder := NewSeeder(store, provider, time.Nanosecond)

	summary, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if len(provider.searches) != len(commonFoods) {
		t.Errorf("searches = %d, want %d", len(provider.searches), len(commonFoods))
	}
	if provider.popularHits != 1 {
		t.Errorf("popularHits = %d, want 1", provider.popularHits)
	}
	if len(provider.categories) != len(seedCategories) {
		t.Errorf("categories = %d, want %d", len(provider.categories), len(seedCategories))
	}

	wantAdded := len(commonFoods) + 1 + len(seedCategories)
	if summary.Added != wantAdded {
		t.Errorf("Added = %d, want %d", summary.Added, wantAdded)
	}
	if summary.Errors != 0 {
		t.Errorf("Errors = %d, want 0", summary.Errors)
	}
}

func TestSeederRun_AppliesPopularityBoost(t *testing.T) {
	store := &fakeStore{}
	seeder := NewSeeder(store, &fakeSeedProvider{}, time.Nanosecond)

	if _, err := seeder.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	for _, r := range store.all() {
		if r.PopularityScore != seededPopularity {
			t.Fatalf("PopularityScore = %d, want %d", r.PopularityScore, seededPopularity)
		}
		if r.LastUpdated.IsZero() {
			t.Fatal("LastUpdated is zero, want set")
		}
	}
}

func TestSeederRun_QueryFailuresAreCounted(t *testing.T) {
	store := &fakeStore{}
	provider := &fakeSeedProvider{failQuery: "banana"}
	seeder := NewSeeder(store, provider, time.Nanosecond)

	summary, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", summary.Errors)
	}
	wantAdded := len(commonFoods) - 1 + 1 + len(seedCategories)
	if summary.Added != wantAdded {
		t.Errorf("Added = %d, want %d", summary.Added, wantAdded)
	}
}

func TestSeederRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seeder := NewSeeder(&fakeStore{}, &fakeSeedProvider{}, time.Second)
	if _, err := seeder.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
