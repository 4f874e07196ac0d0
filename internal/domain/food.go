package domain

import (
	"strings"
	"time"
)

// Data source identifiers stored on each record.
const (
	SourceOpenFoodFacts = "openfoodfacts"
	SourceUSDA          = "usda"
)

// Result source tags returned by the search orchestrator.
const (
	ResultSourceCache         = "cache"
	ResultSourceHybrid        = "hybrid"
	ResultSourceAPI           = "api"
	ResultSourceCacheFallback = "cache_fallback"
	ResultSourceNotFound      = "not_found"
)

// FoodRecord is the canonical nutrition entry shared by the cache store,
// the remote providers, and the ingestion engine. All macro values are per
// serving; sodium is in milligrams, the rest of the macros in grams.
type FoodRecord struct {
	FoodID          string    `json:"foodId"`
	Barcode         string    `json:"barcode,omitempty"`
	Name            string    `json:"name"`
	Brand           string    `json:"brand,omitempty"`
	Category        string    `json:"category,omitempty"`
	Calories        int       `json:"calories"`
	Protein         float64   `json:"protein"`
	Carbs           float64   `json:"carbs"`
	Fat             float64   `json:"fat"`
	Fiber           float64   `json:"fiber"`
	Sugar           float64   `json:"sugar"`
	Sodium          float64   `json:"sodium"`
	ServingSize     float64   `json:"servingSize"`
	ServingUnit     string    `json:"servingUnit"`
	DataSource      string    `json:"dataSource"`
	DataQuality     float64   `json:"dataQuality"`
	PopularityScore int64     `json:"popularityScore"`
	SearchTerms     string    `json:"searchTerms,omitempty"`
	LastUpdated     time.Time `json:"lastUpdated"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SearchResult is the orchestrator's response envelope for text searches.
type SearchResult struct {
	Results   []FoodRecord `json:"results"`
	Source    string       `json:"source"`
	CacheHits int          `json:"cacheHits"`
	APIHits   int          `json:"apiHits"`
	Total     int          `json:"total"`
	Error     string       `json:"error,omitempty"`
}

// BarcodeResult is the orchestrator's response envelope for barcode lookups.
// Result is nil when Source is "not_found".
type BarcodeResult struct {
	Result *FoodRecord `json:"result"`
	Source string      `json:"source"`
}

// CacheStats reports aggregate state of the persisted cache plus the
// in-process memo, for operational visibility only.
type CacheStats struct {
	TotalFoods        int64     `json:"totalFoods"`
	AveragePopularity float64   `json:"averagePopularity"`
	LastUpdate        time.Time `json:"lastUpdate"`
	MemoEntries       int       `json:"memoEntries"`
}

// QualityScore computes the composite data-completeness score in [0,1].
// The rubric is fixed so that ingestion and live-API caching produce
// comparable scores: name +2, brand +1, category +1, energy +2, protein +1,
// carbs +1, fat +1, fiber +0.5, sugar +0.5, normalized against a max of 10.
func QualityScore(hasName, hasBrand, hasCategory, hasEnergy, hasProtein, hasCarbs, hasFat, hasFiber, hasSugar bool) float64 {
	const maxScore = 10.0

	score := 0.0
	if hasName {
		score += 2
	}
	if hasBrand {
		score++
	}
	if hasCategory {
		score++
	}
	if hasEnergy {
		score += 2
	}
	if hasProtein {
		score++
	}
	if hasCarbs {
		score++
	}
	if hasFat {
		score++
	}
	if hasFiber {
		score += 0.5
	}
	if hasSugar {
		score += 0.5
	}

	quality := score / maxScore
	if quality > 1.0 {
		quality = 1.0
	}
	return quality
}

// CleanName normalizes a product name: collapses whitespace, strips
// trademark symbols and trailing dashes, and caps the length at 255 runes.
func CleanName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '™', '®', '©':
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.TrimRight(name, "- ")

	if runes := []rune(name); len(runes) > 255 {
		name = string(runes[:255])
	}
	return name
}

// BuildSearchTerms derives the normalized token bag used for fuzzy matching
// from name, brand, and category. Tokens shorter than three characters are
// dropped and duplicates removed, preserving first-seen order.
func BuildSearchTerms(name, brand, category string) string {
	var terms []string

	if name != "" {
		terms = append(terms, name)
		terms = append(terms, splitTerms(name)...)
	}
	if brand != "" {
		terms = append(terms, brand)
	}
	if category != "" {
		terms = append(terms, category)
		terms = append(terms, splitTerms(category)...)
	}

	seen := make(map[string]bool, len(terms))
	unique := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	return strings.Join(unique, " ")
}

func splitTerms(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	var words []string
	for _, w := range fields {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}
