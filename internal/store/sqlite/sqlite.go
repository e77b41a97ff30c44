// Package sqlite is the local mirror of the portfolio: every save lands here
// first and is marked pending until the sync worker pushes it to the remote
// store. The property document is stored as JSON in a single column; the
// relational part of the schema only carries identity and sync bookkeeping.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/store"
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

func New(dbPath string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
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
		`SELECT doc FROM properties WHERE id = ?`, id).Scan(&doc)
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

// Save upserts the full document, bumps the version and resets the row to
// pending so the sync worker picks it up again.
func (s *Store) Save(ctx context.Context, p core.Property) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	doc, err := store.EncodeProperty(p)
	if err != nil {
		return "", fmt.Errorf("encode property: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO properties (id, doc, version, sync_state, updated_at)
		VALUES (?, ?, 1, 'pending', CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			doc = excluded.doc,
			version = properties.version + 1,
			sync_state = 'pending',
			updated_at = CURRENT_TIMESTAMP`,
		p.ID, string(doc))
	if err != nil {
		return "", fmt.Errorf("save property: %w", err)
	}

	s.logger.InfoContext(ctx, "Property saved to SQLite",
		log.FieldPropertyID, p.ID,
		log.FieldPropertyName, p.Name)
	return p.ID, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Version returns the current local version of a property.
func (s *Store) Version(ctx context.Context, id string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM properties WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get property version: %w", err)
	}
	return version, nil
}

// PendingSync returns properties saved locally but not yet mirrored remotely,
// oldest first.
func (s *Store) PendingSync(ctx context.Context, limit int) ([]store.PendingProperty, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, updated_at
		FROM properties
		WHERE sync_state = 'pending'
		ORDER BY updated_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync properties: %w", err)
	}
	defer rows.Close()

	var out []store.PendingProperty
	for rows.Next() {
		var p store.PendingProperty
		if err := rows.Scan(&p.ID, &p.Version, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pending property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced flips the row to synced, but only if the version still matches:
// a save that raced the sync keeps the row pending.
func (s *Store) MarkSynced(ctx context.Context, id string, version int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE properties SET sync_state = 'synced'
		WHERE id = ? AND version = ?`, id, version)
	if err != nil {
		return fmt.Errorf("mark property synced: %w", err)
	}
	s.logger.InfoContext(ctx, "Property marked as synced",
		log.FieldPropertyID, id, log.FieldVersion, version)
	return nil
}

func (s *Store) MarkSyncError(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE properties SET sync_state = 'error' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark property sync error: %w", err)
	}
	s.logger.WarnContext(ctx, "Property marked with sync error", log.FieldPropertyID, id)
	return nil
}
