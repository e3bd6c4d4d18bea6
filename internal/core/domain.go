package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	KindExpense Kind = "Expense"
	KindIncome  Kind = "Income"
)

const (
	// DateLayout is the wire and storage format for entry dates.
	DateLayout = "2006-01-02"

	// DefaultCreatedBy is applied when a caller omits the owner tag.
	DefaultCreatedBy = "Anonymous"
)

type (
	// Kind marks whether money leaves (Expense) or arrives (Income).
	Kind string

	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Entry is one expense or transaction record.
	Entry struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Kind        Kind      `json:"kind"`
		Date        Date      `json:"entry_date"`
		CreatedBy   string    `json:"created_by"`
		Wallet      string    `json:"wallet,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	// User is the public view of an account. The stored credential never
	// travels on this type.
	User struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Variant describes one record-store instance. The expense and
	// transaction stores share every operation; only the table, the
	// allowed category set and the optional wallet label differ.
	Variant struct {
		Name       string
		Table      string
		Categories []string
		HasWallet  bool
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrInvalidDescription = errors.New("description must be 2-255 characters")
	ErrInvalidWallet      = errors.New("wallet must be 2-100 characters")
)

var (
	ExpenseVariant = Variant{
		Name:  "expense",
		Table: "expenses",
		Categories: []string{
			"Food", "Transport", "Shopping", "Entertainment", "Bills", "Health", "Other",
		},
	}

	TransactionVariant = Variant{
		Name:  "transaction",
		Table: "transactions",
		Categories: []string{
			"Food", "Transport", "Shopping", "Entertainment", "Bills", "Health",
			"Send Transfer", "Salary", "Bonus", "Get Transfer", "Other",
		},
		HasWallet: true,
	}
)

// NormalizeEmail trims surrounding whitespace and lowercases, producing the
// uniqueness and lookup key for accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// NewDate builds a Date pinned to UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ContainsCategory reports whether name is in the variant's closed set.
func (v Variant) ContainsCategory(name string) bool {
	for _, c := range v.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks an entry against the variant's contract: description
// 2-255 chars after trimming, amount at least one cent, category in the
// closed set, a real calendar date, and a 2-100 char wallet where the
// variant carries one.
func (e Entry) Validate(v Variant) error {
	// Length bounds count characters, not bytes.
	desc := strings.TrimSpace(e.Description)
	if n := utf8.RuneCountInString(desc); n < 2 || n > 255 {
		return ErrInvalidDescription
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !v.ContainsCategory(e.Category) {
		return ErrInvalidCategory
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if v.HasWallet {
		if n := utf8.RuneCountInString(strings.TrimSpace(e.Wallet)); n < 2 || n > 100 {
			return ErrInvalidWallet
		}
	}
	return nil
}

// WithDefaults returns a copy with the normative defaults applied: kind
// falls back to Expense and the owner tag to "Anonymous" when omitted.
func (e Entry) WithDefaults() Entry {
	if e.Kind == "" {
		e.Kind = KindExpense
	}
	if strings.TrimSpace(e.CreatedBy) == "" {
		e.CreatedBy = DefaultCreatedBy
	}
	return e
}
