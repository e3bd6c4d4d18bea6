package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// EventPublisher is the slice of the AMQP client the entry service needs.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
}

// EntryService wraps one record store with validation, defaulting and
// mutation-event publishing. Events are best effort: a publish failure is
// logged and never fails the request.
type EntryService struct {
	store  *storage.EntryStore
	events EventPublisher
}

// NewEntryService builds a service for one variant. events may be nil when
// no broker is configured.
func NewEntryService(store *storage.EntryStore, events EventPublisher) *EntryService {
	return &EntryService{store: store, events: events}
}

// Variant exposes the store's configuration for handlers (category sets,
// wallet requirement).
func (s *EntryService) Variant() core.Variant {
	return s.store.Variant()
}

func (s *EntryService) List(ctx context.Context, f storage.Filter) ([]core.Entry, error) {
	return s.store.List(ctx, f)
}

func (s *EntryService) Get(ctx context.Context, id int64) (*core.Entry, error) {
	return s.store.Get(ctx, id)
}

// Create applies the normative defaults (kind, created_by), validates and
// inserts.
func (s *EntryService) Create(ctx context.Context, e core.Entry) (*core.Entry, error) {
	e = e.WithDefaults()
	if err := e.Validate(s.store.Variant()); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	s.publish(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

// Update validates the merged entry and replaces the row. False means no
// row matched; the caller maps that to not-found.
func (s *EntryService) Update(ctx context.Context, id int64, e core.Entry) (bool, error) {
	e = e.WithDefaults()
	if err := e.Validate(s.store.Variant()); err != nil {
		return false, err
	}

	updated, err := s.store.Update(ctx, id, e)
	if err != nil {
		return false, fmt.Errorf("update entry: %w", err)
	}
	if updated {
		s.publish(ctx, id, amqp.ActionUpdated)
	}
	return updated, nil
}

func (s *EntryService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete entry: %w", err)
	}
	if deleted {
		s.publish(ctx, id, amqp.ActionDeleted)
	}
	return deleted, nil
}

func (s *EntryService) CategoryBreakdown(ctx context.Context) ([]core.CategoryStat, error) {
	return s.store.CategoryBreakdown(ctx)
}

// Report runs the three aggregate queries concurrently and bundles the
// results.
func (s *EntryService) Report(ctx context.Context) (core.Report, error) {
	var report core.Report

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.store.Summary(ctx)
		if err != nil {
			return err
		}
		report.Summary = sum
		return nil
	})
	g.Go(func() error {
		cats, err := s.store.CategoryBreakdown(ctx)
		if err != nil {
			return err
		}
		report.Categories = cats
		return nil
	})
	g.Go(func() error {
		trend, err := s.store.MonthlyTrend(ctx)
		if err != nil {
			return err
		}
		report.MonthlyTrend = trend
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.Report{}, fmt.Errorf("%s report: %w", s.store.Variant().Name, err)
	}
	return report, nil
}

func (s *EntryService) publish(ctx context.Context, id int64, action string) {
	if s.events == nil {
		return
	}
	ev := amqp.NewEntryEvent(s.store.Variant().Table, id, action)
	if err := s.events.PublishEntryEvent(ctx, ev); err != nil {
		// The row is already committed; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish entry event",
			"store", ev.Store, "id", id, "action", action, "error", err)
	}
}
