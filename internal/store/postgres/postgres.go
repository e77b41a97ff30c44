// Package postgres is the remote store backing the portfolio (the hosted
// Postgres instance). The property document lives in a JSONB column; writes
// are full-row upserts, matching the save-whole-record model.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS properties (
    id TEXT PRIMARY KEY,
    doc JSONB NOT NULL,
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

func New(databaseURL string, logger *log.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.WithComponent(log.ComponentStore),
	}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (core.Property, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM properties WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Property{}, store.ErrNotFound
	}
	if err != nil {
		return core.Property{}, fmt.Errorf("get property: %w", err)
	}
	return store.DecodeProperty(doc)
}

func (s *Store) List(ctx context.Context) ([]core.Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM properties ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []core.Property
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		p, err := store.DecodeProperty(doc)
		if err != nil {
			return nil, fmt.Errorf("decode property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) Save(ctx context.Context, p core.Property) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	doc, err := store.EncodeProperty(p)
	if err != nil {
		return "", fmt.Errorf("encode property: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO properties (id, doc, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (id) DO UPDATE SET
			doc = excluded.doc,
			version = properties.version + 1,
			updated_at = now()`,
		p.ID, doc)
	if err != nil {
		return "", fmt.Errorf("save property: %w", err)
	}

	s.logger.InfoContext(ctx, "Property saved to Postgres",
		log.FieldPropertyID, p.ID,
		log.FieldPropertyName, p.Name)
	return p.ID, nil
}

// SaveVersioned writes a mirrored document at the version assigned by the
// local store, used by the sync worker so remote versions track local ones.
func (s *Store) SaveVersioned(ctx context.Context, p core.Property, version int64) error {
	doc, err := store.EncodeProperty(p)
	if err != nil {
		return fmt.Errorf("encode property: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO properties (id, doc, version, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			doc = excluded.doc,
			version = excluded.version,
			updated_at = now()
		WHERE properties.version <= excluded.version`,
		p.ID, doc, version)
	if err != nil {
		return fmt.Errorf("save versioned property: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
