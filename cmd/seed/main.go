package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

// seedRow mirrors the demo data loaded on first run.
type seedRow struct {
	description string
	kind        core.Kind
	cents       int64
	category    string
	date        string
}

var sampleExpenses = []seedRow{
	{"Weekly Groceries", core.KindExpense, 15643, "Food", "2024-01-15"},
	{"Uber Ride to Airport", core.KindExpense, 2450, "Transport", "2024-01-14"},
	{"Netflix Subscription", core.KindExpense, 1599, "Entertainment", "2024-01-13"},
	{"Electric Bill", core.KindExpense, 8900, "Bills", "2024-01-12"},
	{"Nike Air Max", core.KindExpense, 12000, "Shopping", "2024-01-11"},
	{"Pharmacy - Vitamins", core.KindExpense, 4567, "Health", "2024-01-10"},
	{"Team Lunch", core.KindExpense, 6850, "Food", "2024-01-09"},
	{"Gas Station Shell", core.KindExpense, 5500, "Transport", "2024-01-08"},
	{"Spotify Subscription", core.KindExpense, 999, "Entertainment", "2024-01-07"},
	{"Water Bill", core.KindExpense, 3000, "Bills", "2024-01-06"},
	{"Amazon Echo Dot", core.KindExpense, 4999, "Shopping", "2024-01-05"},
	{"February Salary", core.KindIncome, 350000, "Salary", "2024-01-31"},
}

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	store := repo.Entries(core.ExpenseVariant)

	if err := seed(ctx, store); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Database initialization complete", "path", cfg.SQLiteDBPath)
}

func seed(ctx context.Context, store *storage.EntryStore) error {
	existing, err := store.List(ctx, storage.Filter{})
	if err != nil {
		return fmt.Errorf("check existing rows: %w", err)
	}
	if len(existing) > 0 {
		fmt.Println("Database already has data, skipping sample rows")
		return nil
	}

	for _, row := range sampleExpenses {
		date, err := core.ParseDate(row.date)
		if err != nil {
			return fmt.Errorf("parse sample date %q: %w", row.date, err)
		}
		entry := core.Entry{
			Description: row.description,
			Kind:        row.kind,
			Amount:      core.Money{Cents: row.cents},
			Category:    row.category,
			Date:        date,
			CreatedBy:   core.DefaultCreatedBy,
		}
		if _, err := store.Create(ctx, entry); err != nil {
			return fmt.Errorf("insert %q: %w", row.description, err)
		}
	}

	fmt.Printf("Inserted %d sample rows\n", len(sampleExpenses))
	return nil
}
