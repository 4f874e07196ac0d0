package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// kJPerKcal converts kilojoules to kilocalories for rows that only carry
// the generic energy column.
const kJPerKcal = 4.184

// recordStore is the slice of the food store the ingestion engine needs.
type recordStore interface {
	Upsert(ctx context.Context, records []domain.FoodRecord) (int, error)
}

// Config holds ingestion policy knobs. The scoring constants themselves
// are fixed; these only bound batch size and selection.
type Config struct {
	BatchSize  int     // records per upsert transaction, default 1000
	MinQuality float64 // data-quality floor, default 0.3
	TopN       int     // keep only the best N candidates; 0 ingests all
}

// Summary reports the outcome of an ingestion run. Per-row and per-batch
// problems are counted, never fatal.
type Summary struct {
	Processed   int
	Skipped     int
	Kept        int
	Inserted    int
	BatchErrors int
	Duration    time.Duration
}

// Engine streams the Open Food Facts TSV dump, scores and filters
// candidates, and batch-upserts survivors into the food store.
type Engine struct {
	store      recordStore
	batchSize  int
	minQuality float64
	topN       int
}

// NewEngine creates an ingestion engine.
func NewEngine(store recordStore, config Config) *Engine {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	minQuality := config.MinQuality
	if minQuality <= 0 {
		minQuality = 0.3
	}

	return &Engine{
		store:      store,
		batchSize:  batchSize,
		minQuality: minQuality,
		topN:       config.TopN,
	}
}

// candidate pairs a record with its transient selection score. The score
// is stripped before persisting.
type candidate struct {
	record     domain.FoodRecord
	totalScore float64
}

// Run ingests the TSV file at path. A missing file is the one fatal
// precondition; everything after that degrades to counters.
func (e *Engine) Run(ctx context.Context, path string) (*Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (download with: curl -O https://static.openfoodfacts.org/data/en.openfoodfacts.org.products.csv.gz && gzip -d en.openfoodfacts.org.products.csv.gz)", domain.ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("opening source file: %w", err)
	}
	defer file.Close()

	start := time.Now()
	log.Printf("[INGEST] starting run from %s (batch size %d, top %d)", path, e.batchSize, e.topN)

	summary := &Summary{}
	candidates, err := e.collect(ctx, file, summary)
	if err != nil {
		return nil, err
	}

	if e.topN > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].totalScore > candidates[j].totalScore
		})
		if len(candidates) > e.topN {
			candidates = candidates[:e.topN]
		}
	}
	summary.Kept = len(candidates)

	e.upsertAll(ctx, candidates, summary)

	summary.Duration = time.Since(start)
	log.Printf("[INGEST] done: processed=%d kept=%d inserted=%d skipped=%d batchErrors=%d in %s",
		summary.Processed, summary.Kept, summary.Inserted, summary.Skipped, summary.BatchErrors, summary.Duration)
	return summary, nil
}

// collect stream-parses the TSV and returns the scored candidates that
// pass the selection policy.
func (e *Engine) collect(ctx context.Context, r io.Reader, summary *Summary) ([]candidate, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var candidates []candidate
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are skipped and counted, never fatal.
			summary.Skipped++
			continue
		}

		summary.Processed++
		if summary.Processed%10000 == 0 {
			log.Printf("[INGEST] processed %d rows...", summary.Processed)
		}

		c, ok := e.analyzeRow(row, columns)
		if !ok {
			summary.Skipped++
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// analyzeRow builds and scores a candidate from one TSV row. Rows without
// a code, a name, or caloric data are rejected, as are candidates below
// the quality floor or with neither whole-food appeal nor popularity.
func (e *Engine) analyzeRow(row []string, columns map[string]int) (candidate, bool) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	code := strings.TrimSpace(field("code"))
	name := domain.CleanName(field("product_name"))
	if code == "" || name == "" {
		return candidate{}, false
	}

	calories := parseFloatField(field("energy-kcal_100g"))
	if calories == 0 {
		calories = parseFloatField(field("energy_100g")) / kJPerKcal
	}
	// A record without energy data is nutritionally meaningless.
	if int(math.Round(calories)) == 0 {
		return candidate{}, false
	}

	brand := firstSegment(field("brands"))
	categories := field("categories")
	ingredients := field("ingredients_text")
	popularity := parseIntField(field("unique_scans_n"))

	wfs := wholeFoodScore(name, categories, ingredients)
	quality := domain.QualityScore(
		true,
		field("brands") != "",
		categories != "",
		field("energy-kcal_100g") != "" || field("energy_100g") != "",
		field("proteins_100g") != "",
		field("carbohydrates_100g") != "",
		field("fat_100g") != "",
		field("fiber_100g") != "",
		field("sugars_100g") != "",
	)

	if wfs == 0 && popularity < 10 {
		return candidate{}, false
	}
	if quality < e.minQuality {
		return candidate{}, false
	}

	record := domain.FoodRecord{
		FoodID:          code,
		Barcode:         code,
		Name:            name,
		Brand:           brand,
		Category:        mainCategory(categories),
		Calories:        int(math.Round(calories)),
		Protein:         parseFloatField(field("proteins_100g")),
		Carbs:           parseFloatField(field("carbohydrates_100g")),
		Fat:             parseFloatField(field("fat_100g")),
		Fiber:           parseFloatField(field("fiber_100g")),
		Sugar:           parseFloatField(field("sugars_100g")),
		Sodium:          parseFloatField(field("sodium_100g")) * 1000, // g -> mg
		ServingSize:     100,
		ServingUnit:     "g",
		DataSource:      domain.SourceOpenFoodFacts,
		DataQuality:     quality,
		PopularityScore: int64(popularity),
		SearchTerms:     domain.BuildSearchTerms(name, brand, mainCategory(categories)),
	}

	total := 0.4*float64(wfs) + 0.3*math.Log(float64(popularity)+1) + 0.3*quality
	return candidate{record: record, totalScore: total}, true
}

// upsertAll writes candidates in fixed-size batches, continuing past
// individual batch failures so a single bad batch cannot abort a
// multi-hour run.
func (e *Engine) upsertAll(ctx context.Context, candidates []candidate, summary *Summary) {
	for start := 0; start < len(candidates); start += e.batchSize {
		end := start + e.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batch := make([]domain.FoodRecord, 0, end-start)
		for _, c := range candidates[start:end] {
			batch = append(batch, c.record)
		}

		inserted, err := e.store.Upsert(ctx, batch)
		summary.Inserted += inserted
		if err != nil {
			summary.BatchErrors++
			log.Printf("[INGEST] batch of %d failed: %v", len(batch), err)
			continue
		}
		log.Printf("[INGEST] inserted batch of %d (total %d)", len(batch), summary.Inserted)
	}
}

func parseFloatField(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

func parseIntField(s string) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

// firstSegment returns the first comma-separated entry of a list field.
func firstSegment(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strings.SplitN(s, ",", 2)[0])
}

// mainCategory extracts the leading category, dropping any language
// prefix ("en:breakfast-cereals" -> "breakfast-cereals"), capped at 100
// runes.
func mainCategory(categories string) string {
	first := firstSegment(categories)
	if first == "" {
		return ""
	}
	parts := strings.Split(first, ":")
	category := strings.TrimSpace(parts[len(parts)-1])
	if runes := []rune(category); len(runes) > 100 {
		category = string(runes[:100])
	}
	return category
}
