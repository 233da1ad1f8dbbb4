package funnel

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/rs/zerolog"
)

// BenchmarkRepository stores CPA benchmarks that override the built-in ones.
// Database: analytics.db (cpa_benchmarks table)
type BenchmarkRepository struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// NewBenchmarkRepository creates a new benchmark repository
func NewBenchmarkRepository(db *sql.DB, log zerolog.Logger) *BenchmarkRepository {
	return &BenchmarkRepository{
		db:  db,
		log: log.With().Str("repo", "cpa_benchmarks").Logger(),
		now: time.Now,
	}
}

// Get returns the stored benchmark for an industry/media pair, or nil.
func (r *BenchmarkRepository) Get(industry, media string) (*catalog.Benchmark, error) {
	var b catalog.Benchmark
	err := r.db.QueryRow(`
		SELECT industry, media, average_cpa, median_cpa, average_cvr
		FROM cpa_benchmarks WHERE industry = ? AND media = ?
	`, industry, media).Scan(&b.Industry, &b.Media, &b.AverageCPA, &b.MedianCPA, &b.AverageCVR)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get benchmark %s/%s: %w", industry, media, err)
	}
	return &b, nil
}

// Upsert inserts or replaces a benchmark.
func (r *BenchmarkRepository) Upsert(b catalog.Benchmark) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO cpa_benchmarks (industry, media, average_cpa, median_cpa, average_cvr, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.Industry, b.Media, b.AverageCPA, b.MedianCPA, b.AverageCVR, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert benchmark %s/%s: %w", b.Industry, b.Media, err)
	}
	return nil
}

// List returns every stored benchmark ordered by industry and media.
func (r *BenchmarkRepository) List() ([]catalog.Benchmark, error) {
	rows, err := r.db.Query(`
		SELECT industry, media, average_cpa, median_cpa, average_cvr
		FROM cpa_benchmarks ORDER BY industry, media
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmarks: %w", err)
	}
	defer rows.Close()

	out := []catalog.Benchmark{}
	for rows.Next() {
		var b catalog.Benchmark
		if err := rows.Scan(&b.Industry, &b.Media, &b.AverageCPA, &b.MedianCPA, &b.AverageCVR); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmarks: %w", err)
	}
	return out, nil
}

// SeedDefaults stores the given benchmarks unless the table already has rows.
// Returns the number of rows inserted.
func (r *BenchmarkRepository) SeedDefaults(defaults []catalog.Benchmark) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM cpa_benchmarks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count benchmarks: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now().Unix()
	for _, b := range defaults {
		_, err := tx.Exec(`
			INSERT INTO cpa_benchmarks (industry, media, average_cpa, median_cpa, average_cvr, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, b.Industry, b.Media, b.AverageCPA, b.MedianCPA, b.AverageCVR, now)
		if err != nil {
			return 0, fmt.Errorf("failed to seed benchmark %s/%s: %w", b.Industry, b.Media, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit benchmarks: %w", err)
	}

	r.log.Info().Int("count", len(defaults)).Msg("Seeded CPA benchmarks")
	return len(defaults), nil
}
