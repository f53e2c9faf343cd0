// internal/matching/history/postgres.go
package history

import (
	"context"
	"database/sql"
	"fmt"

	"venture-match/internal/matching"
	"venture-match/internal/models"
)

// DefaultPoolSize bounds how many resolved records are pulled before the in-memory top-K pass.
const DefaultPoolSize = 200

const resolvedMatchesQuery = `
	SELECT id, overall_score, actual_outcome
	FROM match_records
	WHERE startup_stage = $1
	  AND startup_industry = $2
	  AND status = 'completed'
	  AND actual_outcome IS NOT NULL
	ORDER BY last_updated DESC
	LIMIT $3`

// PostgresSource reads completed matches straight from the match_records table.
type PostgresSource struct {
	db   *sql.DB
	pool int
}

// NewPostgresSource creates a history source that pulls at most pool records per lookup.
func NewPostgresSource(db *sql.DB, pool int) *PostgresSource {
	if pool <= 0 {
		pool = DefaultPoolSize
	}
	return &PostgresSource{db: db, pool: pool}
}

// ResolvedMatches returns the most recently updated completed matches for stage and industry.
func (s *PostgresSource) ResolvedMatches(ctx context.Context, stage, industry string) ([]matching.HistoricalMatch, error) {
	rows, err := s.db.QueryContext(ctx, resolvedMatchesQuery, stage, industry, s.pool)
	if err != nil {
		return nil, fmt.Errorf("query resolved matches: %w", err)
	}
	defer rows.Close()

	var out []matching.HistoricalMatch
	for rows.Next() {
		var (
			h       matching.HistoricalMatch
			outcome string
		)
		if err := rows.Scan(&h.ID, &h.OverallScore, &outcome); err != nil {
			return nil, fmt.Errorf("scan resolved match: %w", err)
		}
		h.Outcome = models.ActualOutcome(outcome)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved matches: %w", err)
	}
	return out, nil
}
