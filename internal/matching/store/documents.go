// internal/matching/store/documents.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"venture-match/internal/matching"
	"venture-match/internal/models"
)

const (
	loadStartupSQL  = `SELECT data FROM startups WHERE id = $1`
	loadInvestorSQL = `SELECT data FROM investors WHERE id = $1`

	saveStartupSQL = `
		INSERT INTO startups (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	saveInvestorSQL = `
		INSERT INTO investors (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

// DocumentSource reads startup and investor profiles stored as JSONB documents.
type DocumentSource struct {
	db *sql.DB
}

// NewDocumentSource creates a profile store backed by db.
func NewDocumentSource(db *sql.DB) *DocumentSource {
	return &DocumentSource{db: db}
}

func (d *DocumentSource) LoadStartup(ctx context.Context, id string) (models.Startup, error) {
	var s models.Startup
	if err := d.load(ctx, loadStartupSQL, "startup", id, &s); err != nil {
		return models.Startup{}, err
	}
	if s.ID == "" {
		s.ID = id
	}
	return s, nil
}

func (d *DocumentSource) LoadInvestor(ctx context.Context, id string) (models.Investor, error) {
	var inv models.Investor
	if err := d.load(ctx, loadInvestorSQL, "investor", id, &inv); err != nil {
		return models.Investor{}, err
	}
	if inv.ID == "" {
		inv.ID = id
	}
	return inv, nil
}

func (d *DocumentSource) SaveStartup(ctx context.Context, s models.Startup) error {
	return d.save(ctx, saveStartupSQL, "startup", s.ID, s)
}

func (d *DocumentSource) SaveInvestor(ctx context.Context, inv models.Investor) error {
	return d.save(ctx, saveInvestorSQL, "investor", inv.ID, inv)
}

func (d *DocumentSource) load(ctx context.Context, query, kind, id string, dst interface{}) error {
	var data []byte
	err := d.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %s", matching.ErrDocumentNotFound, kind, id)
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	return nil
}

func (d *DocumentSource) save(ctx context.Context, query, kind, id string, doc interface{}) error {
	if id == "" {
		return fmt.Errorf("%w: %s id is required", matching.ErrInvalidInput, kind)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, query, id, data); err != nil {
		return fmt.Errorf("save %s %s: %w", kind, id, err)
	}
	return nil
}
