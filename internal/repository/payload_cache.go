package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rift-rewind/internal/config"

	"github.com/rs/zerolog"
)

// PayloadCacheRepository stores raw upstream bodies for a fixed TTL. A zero
// TTL disables it.
type PayloadCacheRepository struct {
	db     *sql.DB
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewPayloadCacheRepository(sqlDB *sql.DB, cfg *config.Config, logger zerolog.Logger) *PayloadCacheRepository {
	return &PayloadCacheRepository{
		db:     sqlDB,
		ttl:    cfg.CacheTTL,
		logger: logger,
		now:    time.Now,
	}
}

func (r *PayloadCacheRepository) Get(ctx context.Context, kind, key string) ([]byte, bool, error) {
	if r.ttl <= 0 {
		return nil, false, nil
	}

	var body []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT body FROM payload_cache WHERE kind = ? AND cache_key = ? AND expires_at > ?`,
		kind, key, r.now().UnixMilli(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read payload cache: %w", err)
	}

	r.logger.Debug().Str("kind", kind).Str("key", key).Msg("payload cache hit")
	return body, true, nil
}

func (r *PayloadCacheRepository) Put(ctx context.Context, kind, key string, body []byte) error {
	if r.ttl <= 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payload_cache (kind, cache_key, body, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, cache_key) DO UPDATE SET
			body = excluded.body,
			expires_at = excluded.expires_at`,
		kind, key, body, r.now().Add(r.ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write payload cache: %w", err)
	}
	return nil
}

// Purge removes expired entries and reports how many were dropped.
func (r *PayloadCacheRepository) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payload_cache WHERE expires_at <= ?`, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge payload cache: %w", err)
	}
	return res.RowsAffected()
}
