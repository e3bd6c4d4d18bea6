// Package worker consumes entry mutation events and mirrors new records
// to the spreadsheet journal.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// SheetWriter is the slice of the export client the worker needs.
type SheetWriter interface {
	AppendEntry(ctx context.Context, store string, e core.Entry) error
}

// SyncWorker reads entry events off the queue, loads each created record
// from the database and appends it to the sheet. The journal is
// append-only, so update and delete events are acknowledged without a
// sheet write.
type SyncWorker struct {
	client *amqp.Client
	repo   *storage.Repository
	sheet  SheetWriter
}

func NewSyncWorker(client *amqp.Client, repo *storage.Repository, sheet SheetWriter) *SyncWorker {
	return &SyncWorker{client: client, repo: repo, sheet: sheet}
}

// Run blocks consuming events until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) error {
	return w.client.ConsumeEntryEvents(ctx, func(ev *amqp.EntryEvent) error {
		return w.handle(ctx, ev)
	})
}

func (w *SyncWorker) handle(ctx context.Context, ev *amqp.EntryEvent) error {
	if ev.Action != amqp.ActionCreated {
		slog.DebugContext(ctx, "Skipping non-create event",
			"store", ev.Store, "id", ev.ID, "action", ev.Action)
		return nil
	}

	variant, ok := variantForStore(ev.Store)
	if !ok {
		// Drop rather than requeue: an unknown store never resolves.
		slog.WarnContext(ctx, "Event for unknown store dropped", "store", ev.Store, "id", ev.ID)
		return nil
	}

	entry, err := w.repo.Entries(variant).Get(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("load entry %s/%d: %w", ev.Store, ev.ID, err)
	}
	if entry == nil {
		// Deleted between publish and consume.
		slog.InfoContext(ctx, "Entry vanished before mirroring", "store", ev.Store, "id", ev.ID)
		return nil
	}

	if err := w.sheet.AppendEntry(ctx, ev.Store, *entry); err != nil {
		return fmt.Errorf("mirror entry %s/%d: %w", ev.Store, ev.ID, err)
	}

	return nil
}

func variantForStore(store string) (core.Variant, bool) {
	switch store {
	case core.ExpenseVariant.Table:
		return core.ExpenseVariant, true
	case core.TransactionVariant.Table:
		return core.TransactionVariant, true
	}
	return core.Variant{}, false
}
