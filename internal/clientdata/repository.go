// Package clientdata provides persistent caching for market data source responses.
// Entries are msgpack blobs in cache.db with expiration timestamps for cache-first behavior.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Data types stored in the geographic cache.
const (
	DataTypeDemographics = "demographics"
	DataTypeCompetitors  = "competitors"
	DataTypeEconomic     = "economic"
)

// AllDataTypes lists every data type for cleanup and stats.
var AllDataTypes = []string{
	DataTypeDemographics,
	DataTypeCompetitors,
	DataTypeEconomic,
}

var validDataTypes = func() map[string]bool {
	m := make(map[string]bool, len(AllDataTypes))
	for _, t := range AllDataTypes {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations on the geographic_cache table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new geographic cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// TypeStats summarizes cached entries of one data type.
type TypeStats struct {
	DataType string `json:"data_type"`
	Entries  int64  `json:"entries"`
	Expired  int64  `json:"expired"`
	Hits     int64  `json:"hits"`
}

func validateDataType(dataType string) error {
	if !validDataTypes[dataType] {
		return fmt.Errorf("invalid cache data type: %s", dataType)
	}
	return nil
}

// Key builds a cache key from a data type and its identifying parts,
// e.g. Key("demographics", "35.6580", "139.7016", "1.0").
func Key(dataType string, parts ...string) string {
	return dataType + ":" + strings.Join(parts, ":")
}

// Store saves data with expiration = now + ttl, replacing any previous entry.
func (r *Repository) Store(dataType, key string, data interface{}, ttl time.Duration) error {
	if err := validateDataType(dataType); err != nil {
		return err
	}

	blob, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	now := r.now()
	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO geographic_cache (cache_key, data_type, data, expires_at, hit_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, key, dataType, blob, now.Add(ttl).Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}
	return nil
}

// GetIfFresh decodes the entry into dest only if it has not expired.
// Returns false when the key is missing or expired. A hit increments hit_count.
func (r *Repository) GetIfFresh(key string, dest interface{}) (bool, error) {
	found, err := r.load(`SELECT data FROM geographic_cache WHERE cache_key = ? AND expires_at > ?`, dest, key, r.now().Unix())
	if err != nil || !found {
		return found, err
	}

	if _, err := r.db.Exec(`UPDATE geographic_cache SET hit_count = hit_count + 1 WHERE cache_key = ?`, key); err != nil {
		return true, fmt.Errorf("failed to record cache hit %s: %w", key, err)
	}
	return true, nil
}

// Get decodes the entry into dest regardless of expiration.
// Use as a fallback when a data source fails: stale data is better than no data.
func (r *Repository) Get(key string, dest interface{}) (bool, error) {
	return r.load(`SELECT data FROM geographic_cache WHERE cache_key = ?`, dest, key)
}

func (r *Repository) load(query string, dest interface{}, args ...interface{}) (bool, error) {
	var blob []byte
	err := r.db.QueryRow(query, args...).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	if err := msgpack.Unmarshal(blob, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return true, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM geographic_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes expired entries of one data type.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(dataType string) (int64, error) {
	if err := validateDataType(dataType); err != nil {
		return 0, err
	}

	result, err := r.db.Exec(`DELETE FROM geographic_cache WHERE data_type = ? AND expires_at <= ?`, dataType, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired %s entries: %w", dataType, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", dataType, err)
	}
	return deleted, nil
}

// DeleteAllExpired removes expired entries of every data type.
// Returns a map of data type to number of rows deleted.
func (r *Repository) DeleteAllExpired() (map[string]int64, error) {
	results := make(map[string]int64)

	for _, dataType := range AllDataTypes {
		deleted, err := r.DeleteExpired(dataType)
		if err != nil {
			return results, err
		}
		results[dataType] = deleted
	}

	return results, nil
}

// Stats returns per-type entry counts, in AllDataTypes order.
func (r *Repository) Stats() ([]TypeStats, error) {
	now := r.now().Unix()
	stats := make([]TypeStats, 0, len(AllDataTypes))

	for _, dataType := range AllDataTypes {
		s := TypeStats{DataType: dataType}
		err := r.db.QueryRow(`
			SELECT COUNT(*),
			       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			       COALESCE(SUM(hit_count), 0)
			FROM geographic_cache WHERE data_type = ?
		`, now, dataType).Scan(&s.Entries, &s.Expired, &s.Hits)
		if err != nil {
			return nil, fmt.Errorf("failed to get cache stats for %s: %w", dataType, err)
		}
		stats = append(stats, s)
	}

	return stats, nil
}
