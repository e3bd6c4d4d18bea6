package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"User@Example.COM", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"already@lower.io", "already@lower.io"},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-01-15" {
		t.Fatalf("round trip mismatch: %q", d.String())
	}

	for _, bad := range []string{"", "2024-13-01", "2024-02-30", "15/01/2024", "yesterday"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		Description: "Weekly Groceries",
		Amount:      Money{Cents: 15643},
		Category:    "Food",
		Kind:        KindExpense,
		Date:        NewDate(2024, 1, 15),
	}
	if err := good.Validate(ExpenseVariant); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Entry)
		wantE error
	}{
		{"short description", func(e *Entry) { e.Description = "x" }, ErrInvalidDescription},
		{"blank description", func(e *Entry) { e.Description = "   " }, ErrInvalidDescription},
		{"zero amount", func(e *Entry) { e.Amount = Money{} }, ErrInvalidAmount},
		{"unknown category", func(e *Entry) { e.Category = "Gambling" }, ErrInvalidCategory},
		{"bad kind", func(e *Entry) { e.Kind = "Transfer" }, ErrInvalidKind},
		{"zero date", func(e *Entry) { e.Date = Date{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		e := good
		tc.mut(&e)
		if err := e.Validate(ExpenseVariant); !errors.Is(err, tc.wantE) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantE, err)
		}
	}
}

func TestEntryValidateCountsCharacters(t *testing.T) {
	good := Entry{
		Amount:   Money{Cents: 100},
		Category: "Food",
		Kind:     KindExpense,
		Date:     NewDate(2024, 1, 15),
	}

	// 200 multi-byte characters are well within the 255-char bound even
	// though they exceed 255 bytes.
	e := good
	e.Description = strings.Repeat("€", 200)
	if err := e.Validate(ExpenseVariant); err != nil {
		t.Fatalf("expected ok for 200-char description, got %v", err)
	}

	e.Description = "€"
	if err := e.Validate(ExpenseVariant); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("single character must fail the minimum, got %v", err)
	}

	e.Description = strings.Repeat("a", 256)
	if err := e.Validate(ExpenseVariant); !errors.Is(err, ErrInvalidDescription) {
		t.Fatalf("256 characters must fail the maximum, got %v", err)
	}
}

func TestEntryValidateWallet(t *testing.T) {
	e := Entry{
		Description: "March Salary",
		Amount:      Money{Cents: 350000},
		Category:    "Salary",
		Kind:        KindIncome,
		Date:        NewDate(2024, 3, 1),
	}

	// Transactions require a wallet label; expenses never carry one.
	if err := e.Validate(TransactionVariant); !errors.Is(err, ErrInvalidWallet) {
		t.Fatalf("expected wallet error, got %v", err)
	}

	e.Wallet = "Checking"
	if err := e.Validate(TransactionVariant); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	e.Wallet = "x"
	if err := e.Validate(TransactionVariant); !errors.Is(err, ErrInvalidWallet) {
		t.Fatalf("expected wallet error for 1-char wallet, got %v", err)
	}

	e.Wallet = strings.Repeat("€", 100)
	if err := e.Validate(TransactionVariant); err != nil {
		t.Fatalf("100 multi-byte characters fit the wallet bound, got %v", err)
	}

	e.Wallet = "€"
	if err := e.Validate(TransactionVariant); !errors.Is(err, ErrInvalidWallet) {
		t.Fatalf("single-character wallet must fail the minimum, got %v", err)
	}
}

func TestEntryWithDefaults(t *testing.T) {
	e := Entry{}.WithDefaults()
	if e.Kind != KindExpense {
		t.Fatalf("expected default kind %q, got %q", KindExpense, e.Kind)
	}
	if e.CreatedBy != DefaultCreatedBy {
		t.Fatalf("expected default owner %q, got %q", DefaultCreatedBy, e.CreatedBy)
	}

	set := Entry{Kind: KindIncome, CreatedBy: "alice"}.WithDefaults()
	if set.Kind != KindIncome || set.CreatedBy != "alice" {
		t.Fatalf("explicit values must survive defaulting: %+v", set)
	}
}

func TestVariantCategories(t *testing.T) {
	if ExpenseVariant.ContainsCategory("Salary") {
		t.Fatal("expense set must not include Salary")
	}
	if !TransactionVariant.ContainsCategory("Salary") {
		t.Fatal("transaction set must include Salary")
	}
	if !TransactionVariant.HasWallet || ExpenseVariant.HasWallet {
		t.Fatal("wallet flag wired to the wrong variant")
	}
}
