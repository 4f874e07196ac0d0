package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// maxBatchSize bounds upsert transactions so a bulk ingestion run never
// builds oversized statements.
const maxBatchSize = 1000

// Store is the SQLite-backed persisted cache of food records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS cached_foods (
        food_id TEXT PRIMARY KEY,
        barcode TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL,
        brand TEXT NOT NULL DEFAULT '',
        category TEXT NOT NULL DEFAULT '',
        calories INTEGER NOT NULL DEFAULT 0,
        protein REAL NOT NULL DEFAULT 0,
        carbs REAL NOT NULL DEFAULT 0,
        fat REAL NOT NULL DEFAULT 0,
        fiber REAL NOT NULL DEFAULT 0,
        sugar REAL NOT NULL DEFAULT 0,
        sodium REAL NOT NULL DEFAULT 0,
        serving_size REAL NOT NULL DEFAULT 100,
        serving_unit TEXT NOT NULL DEFAULT 'g',
        data_source TEXT NOT NULL DEFAULT '',
        data_quality REAL NOT NULL DEFAULT 0,
        popularity_score INTEGER NOT NULL DEFAULT 0,
        search_terms TEXT NOT NULL DEFAULT '',
        last_updated TEXT NOT NULL,
        created_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_cached_foods_barcode ON cached_foods(barcode);
    CREATE INDEX IF NOT EXISTS idx_cached_foods_popularity ON cached_foods(popularity_score DESC);
    CREATE INDEX IF NOT EXISTS idx_cached_foods_category ON cached_foods(category);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const recordColumns = `food_id, barcode, name, brand, category,
        calories, protein, carbs, fat, fiber, sugar, sodium,
        serving_size, serving_unit, data_source, data_quality,
        popularity_score, search_terms, last_updated, created_at`

// SearchCached performs text search over name and search terms, ranked by
// match strength (exact name, name prefix, name substring, search-terms
// substring) then popularity. Fails open: backend errors are logged and an
// empty slice returned so a degraded cache never crashes a search.
func (s *Store) SearchCached(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" || limit <= 0 {
		return []domain.FoodRecord{}, nil
	}

	stmt := fmt.Sprintf(`
        SELECT %s,
            CASE
                WHEN LOWER(name) = ? THEN 0
                WHEN LOWER(name) LIKE ? || '%%' THEN 1
                WHEN LOWER(name) LIKE '%%' || ? || '%%' THEN 2
                ELSE 3
            END AS match_rank
        FROM cached_foods
        WHERE LOWER(name) LIKE '%%' || ? || '%%'
           OR LOWER(search_terms) LIKE '%%' || ? || '%%'
        ORDER BY match_rank ASC, popularity_score DESC
        LIMIT ?`, recordColumns)

	rows, err := s.db.QueryContext(ctx, stmt, needle, needle, needle, needle, needle, limit)
	if err != nil {
		log.Printf("[STORE] cache search failed for %q: %v", query, err)
		return []domain.FoodRecord{}, nil
	}
	defer rows.Close()

	records, err := scanRecords(rows, true)
	if err != nil {
		log.Printf("[STORE] cache search scan failed for %q: %v", query, err)
		return []domain.FoodRecord{}, nil
	}
	return records, nil
}

// GetByBarcode returns the record matching barcode, or nil on miss.
func (s *Store) GetByBarcode(ctx context.Context, barcode string) (*domain.FoodRecord, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM cached_foods WHERE barcode = ? LIMIT 1`, recordColumns)

	rows, err := s.db.QueryContext(ctx, stmt, barcode)
	if err != nil {
		return nil, fmt.Errorf("%w: barcode lookup: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, false)
	if err != nil {
		return nil, fmt.Errorf("%w: barcode scan: %v", domain.ErrStoreFailure, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Upsert writes records in bounded batches, one transaction per batch.
// Conflicts on food_id fully replace the nutrition fields (last write
// wins) but preserve created_at and never lower popularity_score.
func (s *Store) Upsert(ctx context.Context, records []domain.FoodRecord) (int, error) {
	written := 0
	for start := 0; start < len(records); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.upsertBatch(ctx, records[start:end]); err != nil {
			return written, err
		}
		written += end - start
	}
	return written, nil
}

func (s *Store) upsertBatch(ctx context.Context, batch []domain.FoodRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin upsert: %v", domain.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO cached_foods (
            food_id, barcode, name, brand, category,
            calories, protein, carbs, fat, fiber, sugar, sodium,
            serving_size, serving_unit, data_source, data_quality,
            popularity_score, search_terms, last_updated, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(food_id) DO UPDATE SET
            barcode = excluded.barcode,
            name = excluded.name,
            brand = excluded.brand,
            category = excluded.category,
            calories = excluded.calories,
            protein = excluded.protein,
            carbs = excluded.carbs,
            fat = excluded.fat,
            fiber = excluded.fiber,
            sugar = excluded.sugar,
            sodium = excluded.sodium,
            serving_size = excluded.serving_size,
            serving_unit = excluded.serving_unit,
            data_source = excluded.data_source,
            data_quality = excluded.data_quality,
            popularity_score = MAX(cached_foods.popularity_score, excluded.popularity_score),
            search_terms = excluded.search_terms,
            last_updated = excluded.last_updated`)
	if err != nil {
		return fmt.Errorf("%w: prepare upsert: %v", domain.ErrStoreFailure, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range batch {
		lastUpdated := now
		if !r.LastUpdated.IsZero() {
			lastUpdated = r.LastUpdated.UTC().Format(time.RFC3339Nano)
		}
		createdAt := now
		if !r.CreatedAt.IsZero() {
			createdAt = r.CreatedAt.UTC().Format(time.RFC3339Nano)
		}

		_, err := stmt.ExecContext(ctx,
			r.FoodID, r.Barcode, r.Name, r.Brand, r.Category,
			r.Calories, r.Protein, r.Carbs, r.Fat, r.Fiber, r.Sugar, r.Sodium,
			r.ServingSize, r.ServingUnit, r.DataSource, r.DataQuality,
			r.PopularityScore, r.SearchTerms, lastUpdated, createdAt)
		if err != nil {
			return fmt.Errorf("%w: upsert %s: %v", domain.ErrStoreFailure, r.FoodID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit upsert: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// IncrementPopularity atomically bumps one record's popularity score.
func (s *Store) IncrementPopularity(ctx context.Context, foodID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE cached_foods SET popularity_score = popularity_score + 1 WHERE food_id = ?`, foodID)
	if err != nil {
		return fmt.Errorf("%w: increment popularity for %s: %v", domain.ErrStoreFailure, foodID, err)
	}
	return nil
}

// PopularFoods returns up to limit records by descending popularity.
func (s *Store) PopularFoods(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM cached_foods ORDER BY popularity_score DESC LIMIT ?`, recordColumns)

	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: popular foods: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	return scanRecordsWrap(rows)
}

// FoodsByCategory returns up to limit records whose category contains the
// given text, by descending popularity.
func (s *Store) FoodsByCategory(ctx context.Context, category string, limit int) ([]domain.FoodRecord, error) {
	stmt := fmt.Sprintf(`
        SELECT %s FROM cached_foods
        WHERE LOWER(category) LIKE '%%' || ? || '%%'
        ORDER BY popularity_score DESC
        LIMIT ?`, recordColumns)

	rows, err := s.db.QueryContext(ctx, stmt, strings.ToLower(category), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: foods by category: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	return scanRecordsWrap(rows)
}

// Stats returns aggregate counts over the persisted cache.
func (s *Store) Stats(ctx context.Context) (*domain.CacheStats, error) {
	var (
		count       int64
		avg         float64
		lastUpdated sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(*), COALESCE(AVG(popularity_score), 0), MAX(last_updated)
        FROM cached_foods`).Scan(&count, &avg, &lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("%w: stats: %v", domain.ErrStoreFailure, err)
	}

	stats := &domain.CacheStats{
		TotalFoods:        count,
		AveragePopularity: avg,
	}
	if lastUpdated.Valid {
		if t, err := time.Parse(time.RFC3339Nano, lastUpdated.String); err == nil {
			stats.LastUpdate = t
		}
	}
	return stats, nil
}

func scanRecordsWrap(rows *sql.Rows) ([]domain.FoodRecord, error) {
	records, err := scanRecords(rows, false)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %v", domain.ErrStoreFailure, err)
	}
	return records, nil
}

// scanRecords reads food records from rows. When withRank is true the
// query carries a trailing match_rank column that is scanned and dropped.
func scanRecords(rows *sql.Rows, withRank bool) ([]domain.FoodRecord, error) {
	records := []domain.FoodRecord{}
	for rows.Next() {
		var (
			r           domain.FoodRecord
			lastUpdated string
			createdAt   string
			rank        int
		)

		dest := []interface{}{
			&r.FoodID, &r.Barcode, &r.Name, &r.Brand, &r.Category,
			&r.Calories, &r.Protein, &r.Carbs, &r.Fat, &r.Fiber, &r.Sugar, &r.Sodium,
			&r.ServingSize, &r.ServingUnit, &r.DataSource, &r.DataQuality,
			&r.PopularityScore, &r.SearchTerms, &lastUpdated, &createdAt,
		}
		if withRank {
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if t, err := time.Parse(time.RFC3339Nano, lastUpdated); err == nil {
			r.LastUpdated = t
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
