package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/core"
)

type StorageTestSuite struct {
	suite.Suite
	repo     *Repository
	expenses *EntryStore
	txns     *EntryStore
	ctx      context.Context
}

func (s *StorageTestSuite) SetupTest() {
	repo, err := Open(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.repo = repo
	s.expenses = repo.Entries(core.ExpenseVariant)
	s.txns = repo.Entries(core.TransactionVariant)
	s.ctx = context.Background()
}

func (s *StorageTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *StorageTestSuite) mustCreate(store *EntryStore, desc string, cents int64, category, date string) *core.Entry {
	d, err := core.ParseDate(date)
	require.NoError(s.T(), err)
	e := core.Entry{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Kind:        core.KindExpense,
		Date:        d,
		CreatedBy:   core.DefaultCreatedBy,
	}
	if store.Variant().HasWallet {
		e.Wallet = "Checking"
	}
	created, err := store.Create(s.ctx, e)
	require.NoError(s.T(), err, "failed to create entry: %s", desc)
	return created
}

func (s *StorageTestSuite) seedSample() {
	rows := []struct {
		desc     string
		cents    int64
		category string
		date     string
	}{
		{"Weekly Groceries", 15643, "Food", "2024-01-15"},
		{"Uber Ride to Airport", 2450, "Transport", "2024-01-14"},
		{"Netflix Subscription", 1599, "Entertainment", "2024-01-13"},
		{"Electric Bill", 8900, "Bills", "2024-01-12"},
		{"Nike Air Max", 12000, "Shopping", "2024-01-11"},
		{"Pharmacy - Vitamins", 4567, "Health", "2024-01-10"},
		{"Water Bill", 3000, "Bills", "2023-12-06"},
	}
	for _, r := range rows {
		s.mustCreate(s.expenses, r.desc, r.cents, r.category, r.date)
	}
}

func (s *StorageTestSuite) TestCreateAndGet() {
	created := s.mustCreate(s.expenses, "Team Lunch", 6850, "Food", "2024-01-09")
	assert.NotZero(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())

	got, err := s.expenses.Get(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "Team Lunch", got.Description)
	assert.Equal(s.T(), int64(6850), got.Amount.Cents)
	assert.Equal(s.T(), "Food", got.Category)
	assert.Equal(s.T(), "2024-01-09", got.Date.String())
	assert.Equal(s.T(), core.DefaultCreatedBy, got.CreatedBy)
}

func (s *StorageTestSuite) TestGetMissing() {
	got, err := s.expenses.Get(s.ctx, 9999)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got, "absent row must be (nil, nil)")
}

func (s *StorageTestSuite) TestListOrdering() {
	s.seedSample()

	entries, err := s.expenses.List(s.ctx, Filter{})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 7)

	// Most recent entry date first.
	assert.Equal(s.T(), "Weekly Groceries", entries[0].Description)
	assert.Equal(s.T(), "Water Bill", entries[6].Description)
	for i := 1; i < len(entries); i++ {
		assert.False(s.T(), entries[i-1].Date.Before(entries[i].Date.Time),
			"entries out of order at %d", i)
	}
}

func (s *StorageTestSuite) TestListCategoryFilter() {
	s.seedSample()

	entries, err := s.expenses.List(s.ctx, Filter{Category: "Bills"})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 2)
	for _, e := range entries {
		assert.Equal(s.T(), "Bills", e.Category)
	}
}

func (s *StorageTestSuite) TestListDateRangeInclusive() {
	s.seedSample()

	start, _ := core.ParseDate("2024-01-10")
	end, _ := core.ParseDate("2024-01-14")
	entries, err := s.expenses.List(s.ctx, Filter{StartDate: start, EndDate: end})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 5, "bounds are inclusive on both ends")
	assert.Equal(s.T(), "Uber Ride to Airport", entries[0].Description)
	assert.Equal(s.T(), "Pharmacy - Vitamins", entries[4].Description)
}

func (s *StorageTestSuite) TestListSearch() {
	s.seedSample()

	entries, err := s.expenses.List(s.ctx, Filter{Search: "SUBSCRIPTION"})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 1, "search is case-insensitive substring match")
	assert.Equal(s.T(), "Netflix Subscription", entries[0].Description)
}

func (s *StorageTestSuite) TestListFiltersCombine() {
	s.seedSample()

	start, _ := core.ParseDate("2024-01-01")
	entries, err := s.expenses.List(s.ctx, Filter{Category: "Bills", StartDate: start})
	require.NoError(s.T(), err)
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "Electric Bill", entries[0].Description)
}

func (s *StorageTestSuite) TestUpdate() {
	created := s.mustCreate(s.expenses, "Team Lunch", 6850, "Food", "2024-01-09")

	mod := *created
	mod.Description = "Team Dinner"
	mod.Amount = core.Money{Cents: 9100}
	mod.Category = "Entertainment"

	time.Sleep(5 * time.Millisecond)
	ok, err := s.expenses.Update(s.ctx, created.ID, mod)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	got, err := s.expenses.Get(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "Team Dinner", got.Description)
	assert.Equal(s.T(), int64(9100), got.Amount.Cents)
	assert.Equal(s.T(), "Entertainment", got.Category)
	assert.True(s.T(), got.UpdatedAt.After(created.UpdatedAt), "update must refresh updated_at")
	assert.True(s.T(), got.CreatedAt.Equal(created.CreatedAt), "update must not touch created_at")
}

func (s *StorageTestSuite) TestUpdateMissing() {
	e := core.Entry{
		Description: "Ghost", Amount: core.Money{Cents: 100},
		Category: "Other", Date: core.NewDate(2024, 1, 1),
	}
	ok, err := s.expenses.Update(s.ctx, 424242, e)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)
}

func (s *StorageTestSuite) TestDelete() {
	created := s.mustCreate(s.expenses, "Team Lunch", 6850, "Food", "2024-01-09")

	ok, err := s.expenses.Delete(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), ok)

	got, err := s.expenses.Get(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got)

	ok, err = s.expenses.Delete(s.ctx, created.ID)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok, "second delete must report no match")
}

func (s *StorageTestSuite) TestSummaryEmpty() {
	sum, err := s.expenses.Summary(s.ctx)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), sum.Count)
	assert.Zero(s.T(), sum.Total.Cents)
	assert.Zero(s.T(), sum.Average.Cents)
	assert.Nil(s.T(), sum.EarliestDate)
	assert.Nil(s.T(), sum.LatestDate)
}

func (s *StorageTestSuite) TestSummary() {
	s.mustCreate(s.expenses, "Weekly Groceries", 15643, "Food", "2024-01-15")
	s.mustCreate(s.expenses, "Uber Ride to Airport", 2450, "Transport", "2024-01-14")
	s.mustCreate(s.expenses, "Team Lunch", 6850, "Food", "2024-01-09")

	sum, err := s.expenses.Summary(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), sum.Count)
	assert.Equal(s.T(), int64(24943), sum.Total.Cents)
	assert.Equal(s.T(), int64(8314), sum.Average.Cents) // 24943/3 rounded
	require.NotNil(s.T(), sum.EarliestDate)
	require.NotNil(s.T(), sum.LatestDate)
	assert.Equal(s.T(), "2024-01-09", sum.EarliestDate.String())
	assert.Equal(s.T(), "2024-01-15", sum.LatestDate.String())
}

func (s *StorageTestSuite) TestCategoryBreakdown() {
	s.mustCreate(s.expenses, "Weekly Groceries", 15643, "Food", "2024-01-15")
	s.mustCreate(s.expenses, "Uber Ride to Airport", 2450, "Transport", "2024-01-14")

	stats, err := s.expenses.CategoryBreakdown(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), stats, 2, "categories without records must be absent")

	// Largest total first.
	assert.Equal(s.T(), "Food", stats[0].Category)
	assert.Equal(s.T(), int64(15643), stats[0].Total.Cents)
	assert.Equal(s.T(), "Transport", stats[1].Category)
	assert.Equal(s.T(), int64(2450), stats[1].Total.Cents)
}

func (s *StorageTestSuite) TestMonthlyTrend() {
	s.seedSample()

	points, err := s.expenses.MonthlyTrend(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), points, 2)

	// Newest month first.
	assert.Equal(s.T(), "2024-01", points[0].Month)
	assert.Equal(s.T(), int64(6), points[0].Count)
	assert.Equal(s.T(), "2023-12", points[1].Month)
	assert.Equal(s.T(), int64(1), points[1].Count)
	assert.Equal(s.T(), int64(3000), points[1].Total.Cents)
}

func (s *StorageTestSuite) TestMonthlyTrendCap() {
	for month := 1; month <= 12; month++ {
		date := core.NewDate(2023, month, 15)
		s.mustCreate(s.expenses, "Monthly Bill", 1000, "Bills", date.String())
	}
	s.mustCreate(s.expenses, "New Year Bill", 1000, "Bills", "2024-01-15")

	points, err := s.expenses.MonthlyTrend(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), points, 12, "trend is capped at 12 months")
	assert.Equal(s.T(), "2024-01", points[0].Month)
	assert.Equal(s.T(), "2023-02", points[11].Month, "oldest month falls off the window")
}

func (s *StorageTestSuite) TestTransactionWalletRoundTrip() {
	d, _ := core.ParseDate("2024-03-01")
	created, err := s.txns.Create(s.ctx, core.Entry{
		Description: "March Salary",
		Amount:      core.Money{Cents: 350000},
		Category:    "Salary",
		Kind:        core.KindIncome,
		Date:        d,
		CreatedBy:   "alice",
		Wallet:      "Main Bank",
	})
	require.NoError(s.T(), err)

	got, err := s.txns.Get(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), "Main Bank", got.Wallet)
	assert.Equal(s.T(), core.KindIncome, got.Kind)
}

func (s *StorageTestSuite) TestVariantTablesAreIndependent() {
	s.mustCreate(s.expenses, "Weekly Groceries", 15643, "Food", "2024-01-15")

	entries, err := s.txns.List(s.ctx, Filter{})
	require.NoError(s.T(), err)
	assert.Empty(s.T(), entries)

	sum, err := s.txns.Summary(s.ctx)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), sum.Count, "aggregates must not leak across tables")
}

func (s *StorageTestSuite) TestUserCreateAndFind() {
	users := s.repo.Users()

	created, err := users.Create(s.ctx, "Alice", "alice@example.com", "salt:hash")
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), created.ID)

	found, err := users.FindByEmail(s.ctx, "alice@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), created.ID, found.ID)
	assert.Equal(s.T(), "salt:hash", found.PasswordHash)

	missing, err := users.FindByEmail(s.ctx, "nobody@example.com")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)
}

func (s *StorageTestSuite) TestUserDuplicateEmail() {
	users := s.repo.Users()

	_, err := users.Create(s.ctx, "Alice", "alice@example.com", "salt:hash")
	require.NoError(s.T(), err)

	_, err = users.Create(s.ctx, "Imposter", "alice@example.com", "other:hash")
	assert.ErrorIs(s.T(), err, ErrDuplicateEmail)
}

func (s *StorageTestSuite) TestUserPublicStripsCredential() {
	users := s.repo.Users()
	created, err := users.Create(s.ctx, "Alice", "alice@example.com", "salt:hash")
	require.NoError(s.T(), err)

	pub := created.Public()
	assert.Equal(s.T(), created.Email, pub.Email)
	assert.Equal(s.T(), created.Name, pub.Name)
}

func TestStorageTestSuite(t *testing.T) {
	suite.Run(t, new(StorageTestSuite))
}
