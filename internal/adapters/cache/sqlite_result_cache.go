package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"trip-planner/internal/domain"
	"trip-planner/internal/platform/obs"
)

// SQLite backed cache of optimization results for single-machine runs.
// Keys are expected to be normalized by the caller.
type SqliteResultCache struct {
	DB  *sql.DB
	TTL time.Duration
}

func NewSqliteResultCache(db *sql.DB, ttl time.Duration) *SqliteResultCache {
	return &SqliteResultCache{DB: db, TTL: ttl}
}

// Fetch a cached result that is younger than TTL.
func (s *SqliteResultCache) Get(ctx context.Context, key string) (_ *domain.OptimizationResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("result cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get result cache: key must not be empty")
	}

	q := `
	SELECT result
    FROM result_cache
    WHERE cache_key = ?
        AND created_at >= ?;
	`

	cutoff := time.Now().Add(-s.TTL).Unix()

	var raw string
	err = s.DB.QueryRowContext(ctx, q, key, cutoff).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: query result_cache table: %w", err)
	}

	r, err := decodeResult([]byte(raw))
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: %w", err)
	}

	return r, true, nil
}

// Store a result, replacing any previous entry for key.
func (s *SqliteResultCache) Put(ctx context.Context, key string, result *domain.OptimizationResult) error {
	if s.DB == nil {
		return errors.New("result cache: db is nil")
	}

	if strings.TrimSpace(key) == "" {
		return errors.New("insert result cache: key must not be empty")
	}

	raw, err := encodeResult(result)
	if err != nil {
		return fmt.Errorf("insert result cache: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO result_cache (
        cache_key,
        result,
        created_at
    )
    VALUES (?, ?, ?);
	`, key, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert result cache key=%q: %w", key, err)
	}

	return nil
}
