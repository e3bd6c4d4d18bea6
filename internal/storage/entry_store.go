package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Filter narrows a listing. Every field is optional; set fields combine
// with AND. Date bounds are inclusive.
type Filter struct {
	Category  string
	StartDate core.Date
	EndDate   core.Date
	Search    string
}

// EntryStore is the record store for one variant's table. The expense and
// transaction instances share this implementation; the variant supplies the
// table name and whether a wallet column exists.
type EntryStore struct {
	db      *sql.DB
	variant core.Variant
}

// Variant returns the configuration this store was built with.
func (s *EntryStore) Variant() core.Variant {
	return s.variant
}

func (s *EntryStore) columns() string {
	cols := "id, description, kind, amount_cents, category, entry_date, created_by, created_at, updated_at"
	if s.variant.HasWallet {
		cols += ", wallet"
	}
	return cols
}

func (s *EntryStore) scanEntry(scan func(...any) error) (core.Entry, error) {
	var (
		e       core.Entry
		dateStr string
	)
	dest := []any{
		&e.ID, &e.Description, &e.Kind, &e.Amount.Cents, &e.Category,
		&dateStr, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	}
	if s.variant.HasWallet {
		dest = append(dest, &e.Wallet)
	}
	if err := scan(dest...); err != nil {
		return core.Entry{}, err
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Entry{}, fmt.Errorf("stored entry date %q: %w", dateStr, err)
	}
	e.Date = d
	return e, nil
}

// List returns entries matching the filter, most recent entry date first,
// creation time breaking ties.
func (s *EntryStore) List(ctx context.Context, f Filter) ([]core.Entry, error) {
	query := "SELECT " + s.columns() + " FROM " + s.variant.Table + " WHERE 1=1"
	var args []any

	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if !f.StartDate.IsZero() {
		query += " AND entry_date >= ?"
		args = append(args, f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		query += " AND entry_date <= ?"
		args = append(args, f.EndDate.String())
	}
	if f.Search != "" {
		query += " AND LOWER(description) LIKE ?"
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
	}

	query += " ORDER BY entry_date DESC, created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.variant.Table, err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := s.scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.variant.Table, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns one entry by id, or (nil, nil) when absent.
func (s *EntryStore) Get(ctx context.Context, id int64) (*core.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+s.columns()+" FROM "+s.variant.Table+" WHERE id = ?", id)

	e, err := s.scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", s.variant.Name, id, err)
	}
	return &e, nil
}

// Create inserts a new entry and returns it with the store-assigned id and
// timestamps. Defaults are the caller's concern.
func (s *EntryStore) Create(ctx context.Context, e core.Entry) (*core.Entry, error) {
	now := time.Now().UTC()

	cols := "description, kind, amount_cents, category, entry_date, created_by, created_at, updated_at"
	placeholders := "?, ?, ?, ?, ?, ?, ?, ?"
	args := []any{
		e.Description, string(e.Kind), e.Amount.Cents, e.Category,
		e.Date.String(), e.CreatedBy, now, now,
	}
	if s.variant.HasWallet {
		cols += ", wallet"
		placeholders += ", ?"
		args = append(args, e.Wallet)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO "+s.variant.Table+" ("+cols+") VALUES ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.variant.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s insert id: %w", s.variant.Name, err)
	}

	e.ID = id
	e.CreatedAt = now
	e.UpdatedAt = now
	return &e, nil
}

// Update replaces description, amount, category and entry date of one row
// and refreshes updated_at. It reports false when no row matched.
func (s *EntryStore) Update(ctx context.Context, id int64, e core.Entry) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE "+s.variant.Table+`
		 SET description = ?, amount_cents = ?, category = ?, entry_date = ?, updated_at = ?
		 WHERE id = ?`,
		e.Description, e.Amount.Cents, e.Category, e.Date.String(), time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update %s %d: %w", s.variant.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s rows affected: %w", s.variant.Name, err)
	}
	return affected > 0, nil
}

// Delete removes one row, reporting false when no row matched.
func (s *EntryStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM "+s.variant.Table+" WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", s.variant.Name, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s rows affected: %w", s.variant.Name, err)
	}
	return affected > 0, nil
}

// Summary aggregates every row in the table. Totals come back as zero (not
// NULL) when the table is empty, and the date bounds stay absent.
func (s *EntryStore) Summary(ctx context.Context) (core.Summary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount_cents), 0),
			COALESCE(AVG(amount_cents), 0),
			MIN(entry_date),
			MAX(entry_date)
		FROM `+s.variant.Table)

	var (
		sum      core.Summary
		avg      float64
		earliest sql.NullString
		latest   sql.NullString
	)
	if err := row.Scan(&sum.Count, &sum.Total.Cents, &avg, &earliest, &latest); err != nil {
		return core.Summary{}, fmt.Errorf("%s summary: %w", s.variant.Name, err)
	}
	sum.Average = core.Money{Cents: int64(math.Round(avg))}

	if earliest.Valid {
		d, err := core.ParseDate(earliest.String)
		if err != nil {
			return core.Summary{}, fmt.Errorf("summary earliest date: %w", err)
		}
		sum.EarliestDate = &d
	}
	if latest.Valid {
		d, err := core.ParseDate(latest.String)
		if err != nil {
			return core.Summary{}, fmt.Errorf("summary latest date: %w", err)
		}
		sum.LatestDate = &d
	}
	return sum, nil
}

// CategoryBreakdown returns one row per category present in the data,
// largest total first. Categories without records are simply absent.
func (s *EntryStore) CategoryBreakdown(ctx context.Context) ([]core.CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*), SUM(amount_cents), AVG(amount_cents)
		FROM `+s.variant.Table+`
		GROUP BY category
		ORDER BY SUM(amount_cents) DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s category breakdown: %w", s.variant.Name, err)
	}
	defer rows.Close()

	var stats []core.CategoryStat
	for rows.Next() {
		var (
			st  core.CategoryStat
			avg float64
		)
		if err := rows.Scan(&st.Category, &st.Count, &st.Total.Cents, &avg); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		st.Average = core.Money{Cents: int64(math.Round(avg))}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// MonthlyTrend groups by calendar month of the entry date, newest month
// first, capped at the most recent 12 distinct months.
func (s *EntryStore) MonthlyTrend(ctx context.Context) ([]core.MonthlyPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', entry_date), COUNT(*), SUM(amount_cents)
		FROM `+s.variant.Table+`
		GROUP BY strftime('%Y-%m', entry_date)
		ORDER BY strftime('%Y-%m', entry_date) DESC
		LIMIT 12`)
	if err != nil {
		return nil, fmt.Errorf("%s monthly trend: %w", s.variant.Name, err)
	}
	defer rows.Close()

	var points []core.MonthlyPoint
	for rows.Next() {
		var p core.MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Count, &p.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
