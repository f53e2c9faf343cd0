// internal/matching/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"venture-match/internal/matching"
	"venture-match/internal/models"

	"github.com/lib/pq"
)

// Schema creates the document and match tables. The partial unique index enforces
// at most one live record per (startup, investor, match type).
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS startups (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS investors (
		id         TEXT PRIMARY KEY,
		data       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS match_records (
		id                  UUID PRIMARY KEY,
		startup_id          TEXT NOT NULL,
		investor_id         TEXT NOT NULL,
		match_type          TEXT NOT NULL,
		overall_score       INTEGER NOT NULL CHECK (overall_score BETWEEN 0 AND 100),
		confidence          DOUBLE PRECISION NOT NULL CHECK (confidence BETWEEN 0 AND 1),
		score_breakdown     JSONB NOT NULL,
		missing_dimensions  JSONB NOT NULL DEFAULT '[]',
		success_probability DOUBLE PRECISION NOT NULL,
		expected_outcome    TEXT NOT NULL,
		recommended_action  TEXT NOT NULL,
		strengths           JSONB NOT NULL DEFAULT '[]',
		concerns            JSONB NOT NULL DEFAULT '[]',
		status              TEXT NOT NULL,
		startup_stage       TEXT NOT NULL,
		startup_industry    TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		last_updated        TIMESTAMPTZ NOT NULL,
		expires_at          TIMESTAMPTZ NOT NULL,
		startup_feedback    JSONB,
		investor_feedback   JSONB,
		actual_outcome      TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS match_records_live_identity
		ON match_records (startup_id, investor_id, match_type)
		WHERE status IN ('active', 'presented', 'acted-upon')`,
	`CREATE INDEX IF NOT EXISTS match_records_history
		ON match_records (startup_stage, startup_industry)
		WHERE status = 'completed'`,
	`CREATE INDEX IF NOT EXISTS match_records_expiry
		ON match_records (expires_at)
		WHERE status IN ('active', 'presented', 'acted-upon')`,
}

const recordColumns = `id, startup_id, investor_id, match_type, overall_score, confidence,
	score_breakdown, missing_dimensions, success_probability, expected_outcome, recommended_action,
	strengths, concerns, status, startup_stage, startup_industry, created_at, last_updated, expires_at,
	startup_feedback, investor_feedback, actual_outcome`

const (
	archivePriorSQL = `
		UPDATE match_records SET status = 'archived'
		WHERE startup_id = $1 AND investor_id = $2 AND match_type = $3 AND status = ANY($4)`

	upsertRecordSQL = `
		INSERT INTO match_records (id, startup_id, investor_id, match_type, overall_score, confidence,
			score_breakdown, missing_dimensions, success_probability, expected_outcome, recommended_action,
			strengths, concerns, status, startup_stage, startup_industry, created_at, last_updated, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (startup_id, investor_id, match_type) WHERE status IN ('active', 'presented', 'acted-upon')
		DO UPDATE SET
			overall_score       = EXCLUDED.overall_score,
			confidence          = EXCLUDED.confidence,
			score_breakdown     = EXCLUDED.score_breakdown,
			missing_dimensions  = EXCLUDED.missing_dimensions,
			success_probability = EXCLUDED.success_probability,
			expected_outcome    = EXCLUDED.expected_outcome,
			recommended_action  = EXCLUDED.recommended_action,
			strengths           = EXCLUDED.strengths,
			concerns            = EXCLUDED.concerns,
			status              = EXCLUDED.status,
			startup_stage       = EXCLUDED.startup_stage,
			startup_industry    = EXCLUDED.startup_industry,
			created_at          = EXCLUDED.created_at,
			last_updated        = EXCLUDED.last_updated,
			expires_at          = EXCLUDED.expires_at
		RETURNING ` + recordColumns

	findLiveSQL = `
		SELECT ` + recordColumns + `
		FROM match_records
		WHERE startup_id = $1 AND investor_id = $2 AND match_type = $3 AND status = ANY($4)
		ORDER BY last_updated DESC
		LIMIT 1`

	getByIDSQL = `SELECT ` + recordColumns + ` FROM match_records WHERE id = $1`

	lockStatusSQL = `SELECT status FROM match_records WHERE id = $1 FOR UPDATE`

	setStatusSQL = `UPDATE match_records SET status = $2 WHERE id = $1 RETURNING ` + recordColumns

	expireStaleSQL = `
		UPDATE match_records SET status = 'expired'
		WHERE status = ANY($1) AND expires_at <= $2
		RETURNING id, startup_id, investor_id, match_type`

	listForStartupSQL = `
		SELECT ` + recordColumns + `
		FROM match_records
		WHERE startup_id = $1 AND status = ANY($2) AND expires_at > $3
		ORDER BY overall_score DESC, success_probability DESC, investor_id
		LIMIT $4`
)

// feedbackColumns whitelists the per-side column a feedback update may touch.
var feedbackColumns = map[models.FeedbackSide]string{
	models.SideStartup:  "startup_feedback",
	models.SideInvestor: "investor_feedback",
}

func feedbackSQL(column string) string {
	return fmt.Sprintf(`
		UPDATE match_records SET
			%s = $2,
			actual_outcome = COALESCE($3::text, actual_outcome),
			last_updated = CASE WHEN $3::text IS NOT NULL AND status = ANY($4) THEN $5 ELSE last_updated END,
			status = CASE WHEN $3::text IS NOT NULL AND status = ANY($4) THEN 'completed' ELSE status END
		WHERE id = $1
		RETURNING `+recordColumns, column)
}

// RecordKey identifies a record and its identity tuple.
type RecordKey struct {
	ID         string
	StartupID  string
	InvestorID string
	MatchType  string
}

// PostgresRepository persists MatchRecords in the match_records table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a match repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate applies Schema. Every statement is idempotent.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func liveStatuses() pq.StringArray {
	out := make(pq.StringArray, 0, len(models.LiveStatuses))
	for _, s := range models.LiveStatuses {
		out = append(out, string(s))
	}
	return out
}

func replaceableStatuses() pq.StringArray {
	return append(liveStatuses(), string(models.MatchStatusExpired))
}

// FindLive returns the newest live record for the identity, or ErrRecordNotFound.
func (r *PostgresRepository) FindLive(ctx context.Context, startupID, investorID, matchType string) (*models.MatchRecord, error) {
	row := r.db.QueryRowContext(ctx, findLiveSQL, startupID, investorID, matchType, liveStatuses())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find live match: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.MatchRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, getByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", id, err)
	}
	return rec, nil
}

// Replace archives every prior live or expired record for the identity and upserts rec in
// one transaction. A concurrent writer that won the insert race keeps its id; the returned
// row is whichever record survived.
func (r *PostgresRepository) Replace(ctx context.Context, rec *models.MatchRecord) (*models.MatchRecord, int64, error) {
	args, err := insertArgs(rec)
	if err != nil {
		return nil, 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, archivePriorSQL, rec.StartupID, rec.InvestorID, rec.MatchType, replaceableStatuses())
	if err != nil {
		return nil, 0, fmt.Errorf("archive prior matches: %w", err)
	}
	archived, _ := res.RowsAffected()

	saved, err := scanRecord(tx.QueryRowContext(ctx, upsertRecordSQL, args...))
	if err != nil {
		return nil, 0, fmt.Errorf("upsert match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("commit replace: %w", err)
	}
	return saved, archived, nil
}

// UpdateFeedback overwrites one side's feedback. A non-nil outcome is recorded and moves a
// live or expired record to completed.
func (r *PostgresRepository) UpdateFeedback(ctx context.Context, id string, side models.FeedbackSide, fb models.Feedback, outcome *models.ActualOutcome, now time.Time) (*models.MatchRecord, error) {
	column, ok := feedbackColumns[side]
	if !ok {
		return nil, fmt.Errorf("%w: unknown feedback side %q", matching.ErrInvalidInput, side)
	}
	payload, err := json.Marshal(fb)
	if err != nil {
		return nil, err
	}
	var outcomeArg sql.NullString
	if outcome != nil {
		outcomeArg = sql.NullString{String: string(*outcome), Valid: true}
	}

	row := r.db.QueryRowContext(ctx, feedbackSQL(column), id, payload, outcomeArg, replaceableStatuses(), now)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update feedback for %s: %w", id, err)
	}
	return rec, nil
}

// UpdateStatus moves a record along the lifecycle, rejecting disallowed transitions.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, next models.MatchStatus) (*models.MatchRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var current string
	if err := tx.QueryRowContext(ctx, lockStatusSQL, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", matching.ErrNotFound, id)
		}
		return nil, fmt.Errorf("lock match %s: %w", id, err)
	}
	if !models.MatchStatus(current).CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", matching.ErrInvalidTransition, current, next)
	}

	rec, err := scanRecord(tx.QueryRowContext(ctx, setStatusSQL, id, string(next)))
	if err != nil {
		return nil, fmt.Errorf("set status for %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return rec, nil
}

// ExpireStale marks live records past their expiry as expired and returns them.
func (r *PostgresRepository) ExpireStale(ctx context.Context, now time.Time) ([]RecordKey, error) {
	rows, err := r.db.QueryContext(ctx, expireStaleSQL, liveStatuses(), now)
	if err != nil {
		return nil, fmt.Errorf("expire stale matches: %w", err)
	}
	defer rows.Close()

	var keys []RecordKey
	for rows.Next() {
		var k RecordKey
		if err := rows.Scan(&k.ID, &k.StartupID, &k.InvestorID, &k.MatchType); err != nil {
			return nil, fmt.Errorf("scan expired match: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ListForStartup returns live, unexpired records for a startup ordered by score.
func (r *PostgresRepository) ListForStartup(ctx context.Context, startupID string, now time.Time, limit int) ([]*models.MatchRecord, error) {
	rows, err := r.db.QueryContext(ctx, listForStartupSQL, startupID, liveStatuses(), now, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", startupID, err)
	}
	defer rows.Close()

	var out []*models.MatchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func insertArgs(rec *models.MatchRecord) ([]interface{}, error) {
	breakdown, err := json.Marshal(rec.ScoreBreakdown)
	if err != nil {
		return nil, err
	}
	missing, err := marshalList(rec.MissingDimensions)
	if err != nil {
		return nil, err
	}
	strengths, err := marshalList(rec.Strengths)
	if err != nil {
		return nil, err
	}
	concerns, err := marshalList(rec.Concerns)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		rec.ID, rec.StartupID, rec.InvestorID, rec.MatchType, rec.OverallScore, rec.Confidence,
		breakdown, missing, rec.SuccessProbability, string(rec.ExpectedOutcome), string(rec.RecommendedAction),
		strengths, concerns, string(rec.Status), rec.StartupStage, rec.StartupIndustry,
		rec.CreatedAt, rec.LastUpdated, rec.ExpiresAt,
	}, nil
}

func marshalList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.MatchRecord, error) {
	var (
		rec                                      models.MatchRecord
		breakdown, missing, strengths, concerns  []byte
		startupFeedback, investorFeedback        []byte
		expectedOutcome, recommendedAction, stat string
		actualOutcome                            sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.StartupID, &rec.InvestorID, &rec.MatchType, &rec.OverallScore, &rec.Confidence,
		&breakdown, &missing, &rec.SuccessProbability, &expectedOutcome, &recommendedAction,
		&strengths, &concerns, &stat, &rec.StartupStage, &rec.StartupIndustry,
		&rec.CreatedAt, &rec.LastUpdated, &rec.ExpiresAt,
		&startupFeedback, &investorFeedback, &actualOutcome,
	)
	if err != nil {
		return nil, err
	}

	rec.ExpectedOutcome = models.ExpectedOutcome(expectedOutcome)
	rec.RecommendedAction = models.RecommendedAction(recommendedAction)
	rec.Status = models.MatchStatus(stat)

	if err := unmarshalIfSet(breakdown, &rec.ScoreBreakdown); err != nil {
		return nil, fmt.Errorf("decode score_breakdown: %w", err)
	}
	if err := unmarshalIfSet(missing, &rec.MissingDimensions); err != nil {
		return nil, fmt.Errorf("decode missing_dimensions: %w", err)
	}
	if err := unmarshalIfSet(strengths, &rec.Strengths); err != nil {
		return nil, fmt.Errorf("decode strengths: %w", err)
	}
	if err := unmarshalIfSet(concerns, &rec.Concerns); err != nil {
		return nil, fmt.Errorf("decode concerns: %w", err)
	}
	if len(startupFeedback) > 0 {
		rec.StartupFeedback = &models.Feedback{}
		if err := json.Unmarshal(startupFeedback, rec.StartupFeedback); err != nil {
			return nil, fmt.Errorf("decode startup_feedback: %w", err)
		}
	}
	if len(investorFeedback) > 0 {
		rec.InvestorFeedback = &models.Feedback{}
		if err := json.Unmarshal(investorFeedback, rec.InvestorFeedback); err != nil {
			return nil, fmt.Errorf("decode investor_feedback: %w", err)
		}
	}
	if actualOutcome.Valid {
		o := models.ActualOutcome(actualOutcome.String)
		rec.ActualOutcome = &o
	}
	return &rec, nil
}

func unmarshalIfSet(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
