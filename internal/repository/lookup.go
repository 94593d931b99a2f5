package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rift-rewind/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// LookupRepository keeps the history of submitted identities.
type LookupRepository struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

func NewLookupRepository(sqlDB *sql.DB, logger zerolog.Logger) *LookupRepository {
	return &LookupRepository{
		db:     sqlDB,
		logger: logger,
		now:    time.Now,
	}
}

// Record upserts an identity. Repeated lookups of the same identity keep the
// original id and bump its count.
func (r *LookupRepository) Record(ctx context.Context, lookup domain.Lookup) error {
	id, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to generate lookup id: %w", err)
	}
	now := r.now().UnixMilli()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lookups (id, game_name, tag_line, region, rank, lookup_count, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (game_name, tag_line, region) DO UPDATE SET
			rank = CASE WHEN excluded.rank != '' THEN excluded.rank ELSE lookups.rank END,
			lookup_count = lookups.lookup_count + 1,
			last_seen_at = excluded.last_seen_at`,
		id, lookup.GameName, lookup.TagLine, lookup.Region, lookup.Rank, now, now,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("game_name", lookup.GameName).Msg("failed to record lookup")
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}

// Search matches query against game name or tag line, most recent first.
// An empty query lists the most recent lookups.
// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *LookupRepository) Search(ctx context.Context, query string, limit int) ([]domain.Lookup, error) {
	searchPattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, game_name, tag_line, region, rank, created_at
		FROM lookups
		WHERE game_name LIKE ? ESCAPE '\' OR tag_line LIKE ? ESCAPE '\'
		ORDER BY last_seen_at DESC, lookup_count DESC
		LIMIT ?`,
		searchPattern, searchPattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search lookups: %w", err)
	}
	defer rows.Close()

	result := []domain.Lookup{}
	for rows.Next() {
		var (
			l       domain.Lookup
			created int64
		)
		if err := rows.Scan(&l.ID, &l.GameName, &l.TagLine, &l.Region, &l.Rank, &created); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		l.CreatedAt = time.UnixMilli(created)
		result = append(result, l)
	}
	return result, rows.Err()
}
