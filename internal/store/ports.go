// Package store defines the persistence ports for the property portfolio
// and the wire codec shared by every backend. Properties are persisted as
// whole documents: a save replaces the full record, matching how the data
// is edited (form submission of the complete property).
package store

import (
	"context"
	"errors"
	"time"

	"predial/internal/core"
)

// ErrNotFound is returned when no property matches the requested id.
var ErrNotFound = errors.New("property not found")

type (
	// PropertyReader loads properties from a backend.
	PropertyReader interface {
		Get(ctx context.Context, id string) (core.Property, error)
		// List returns the full portfolio. The dataset is small; all
		// filtering and analytics run in memory over this snapshot.
		List(ctx context.Context) ([]core.Property, error)
	}

	// PropertyWriter persists a property by full-record replace.
	// It returns the stored id (assigned when the input id is empty).
	PropertyWriter interface {
		Save(ctx context.Context, p core.Property) (string, error)
	}

	// PropertyDeleter removes a property.
	PropertyDeleter interface {
		Delete(ctx context.Context, id string) error
	}

	// Store is the full persistence surface used by the service layer.
	Store interface {
		PropertyReader
		PropertyWriter
		PropertyDeleter
	}

	// PendingProperty is the bookkeeping row for a locally-saved property
	// that has not been mirrored to the remote store yet.
	PendingProperty struct {
		ID        string
		Version   int64
		UpdatedAt time.Time
	}

	// SyncStore is implemented by the local mirror: it tracks which
	// properties still need to be pushed to the remote store.
	SyncStore interface {
		Store
		PendingSync(ctx context.Context, limit int) ([]PendingProperty, error)
		MarkSynced(ctx context.Context, id string, version int64) error
		MarkSyncError(ctx context.Context, id string) error
	}
)
