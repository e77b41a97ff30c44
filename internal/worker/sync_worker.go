// Package worker mirrors locally-saved properties to the remote store. It
// consumes AMQP sync notifications for low latency and sweeps the local
// pending rows periodically as a backup, so a lost message only delays a
// sync instead of dropping it.
package worker

import (
	"context"
	"errors"
	"fmt"

	"predial/internal/amqp"
	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/metrics"
	"predial/internal/store"
)

// LocalStore is the local mirror side: full store access plus the sync
// bookkeeping and version lookup.
type LocalStore interface {
	store.SyncStore
	Version(ctx context.Context, id string) (int64, error)
}

// RemoteMirror is the remote side: versioned upserts and deletes.
type RemoteMirror interface {
	SaveVersioned(ctx context.Context, p core.Property, version int64) error
	Delete(ctx context.Context, id string) error
}

type SyncWorker struct {
	local     LocalStore
	remote    RemoteMirror
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(local LocalStore, remote RemoteMirror, batchSize int, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		local:     local,
		remote:    remote,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleSyncMessage processes a single property sync notification. A
// property missing locally was deleted, so the remote copy is removed too.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.PropertySyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		log.FieldPropertyID, msg.ID,
		log.FieldVersion, msg.Version)

	err := w.syncProperty(ctx, msg.ID)
	if err != nil {
		metrics.ObserveSync("message", "error")
		return err
	}
	metrics.ObserveSync("message", "ok")
	return nil
}

// ProcessPending sweeps locally-pending properties. Backup mechanism for
// lost AMQP messages; errors on individual properties don't stop the sweep.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.local.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending properties: %w", err)
	}
	metrics.SetPendingSync(len(pending))
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending properties", "count", len(pending))

	for _, p := range pending {
		if err := w.syncProperty(ctx, p.ID); err != nil {
			metrics.ObserveSync("sweep", "error")
			w.logger.ErrorContext(ctx, "Failed to sync property",
				log.FieldPropertyID, p.ID, log.FieldError, err)
			continue
		}
		metrics.ObserveSync("sweep", "ok")
	}
	return nil
}

// StartupSyncCheck drains pending properties at worker startup with a larger
// batch, recovering from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.local.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending properties for startup check: %w", err)
	}
	if len(pending) == 0 {
		w.logger.InfoContext(ctx, "No pending properties found on startup")
		return nil
	}

	w.logger.InfoContext(ctx, "Found pending properties on startup, processing",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.syncProperty(ctx, p.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync property during startup",
				log.FieldPropertyID, p.ID, log.FieldError, err)
			errorCount++
			continue
		}
		successCount++
	}

	w.logger.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)
	return nil
}

func (w *SyncWorker) syncProperty(ctx context.Context, id string) error {
	p, err := w.local.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted locally; mirror the delete.
		if err := w.remote.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete remote property: %w", err)
		}
		w.logger.InfoContext(ctx, "Mirrored property delete", log.FieldPropertyID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get property from local store: %w", err)
	}

	version, err := w.local.Version(ctx, id)
	if err != nil {
		return fmt.Errorf("get property version: %w", err)
	}

	if err := w.remote.SaveVersioned(ctx, p, version); err != nil {
		if markErr := w.local.MarkSyncError(ctx, id); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error",
				log.FieldPropertyID, id, log.FieldError, markErr)
		}
		return fmt.Errorf("save property to remote: %w", err)
	}

	// Mark synced only at the version we pushed; a concurrent save keeps
	// the row pending.
	if err := w.local.MarkSynced(ctx, id, version); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced",
			log.FieldPropertyID, id, log.FieldError, err)
		// The sync itself worked; don't fail the message.
	}

	w.logger.InfoContext(ctx, "Property synced",
		log.FieldPropertyID, id,
		log.FieldVersion, version,
		log.FieldPropertyName, p.Name)
	return nil
}
