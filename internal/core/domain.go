package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
	Investment AccountType = "investment"
	Cash       AccountType = "cash"
)

// UncategorizedLabel is assigned to transactions whose category is blank.
const UncategorizedLabel = "Uncategorized"

// DefaultAlertThreshold applies when a budget does not specify one.
const DefaultAlertThreshold = 80

type (
	AccountType string

	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. Amounts are signed:
	// positive = inflow/credit, negative = outflow/expense.
	// Immutable once imported except for Category.
	Transaction struct {
		ID            int64
		AccountID     int64
		Date          Date
		Description   string
		Amount        decimal.Decimal
		Category      string
		IsVerified    bool
		ImportBatchID string
		CreatedAt     time.Time
	}

	Account struct {
		ID             int64
		Name           string
		AccountType    AccountType
		InitialBalance decimal.Decimal
		IsActive       bool
	}

	// Budget is a monthly spending limit for one category. The category
	// name references the free-text category space; nothing enforces it.
	Budget struct {
		CategoryName   string
		MonthlyLimit   decimal.Decimal
		AlertThreshold int // percentage 0-100
		IsActive       bool
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrEmptyAccountName   = errors.New("empty account name")
	ErrEmptyCategory      = errors.New("empty budget category")
)

func (t AccountType) Valid() bool {
	switch t {
	case Checking, Savings, CreditCard, Investment, Cash:
		return true
	}
	return false
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the YYYY-MM identifier of the date's calendar month.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

// CategoryLabel returns the transaction category, defaulting blank values
// to UncategorizedLabel. Aggregations must group by this, never by the raw
// field.
func (t Transaction) CategoryLabel() string {
	c := strings.TrimSpace(t.Category)
	if c == "" {
		return UncategorizedLabel
	}
	return c
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyAccountName
	}
	if !a.AccountType.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

// Balance derives the current account balance from the initial balance plus
// the sum of this account's transaction amounts. Always derived, never stored.
func (a Account) Balance(txs []Transaction) decimal.Decimal {
	total := a.InitialBalance
	for _, t := range txs {
		if t.AccountID == a.ID {
			total = total.Add(t.Amount)
		}
	}
	return total
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.CategoryName) == "" {
		return ErrEmptyCategory
	}
	if b.AlertThreshold < 0 || b.AlertThreshold > 100 {
		return errors.New("alert threshold must be between 0 and 100")
	}
	return nil
}

// Threshold returns the alert threshold, defaulting to DefaultAlertThreshold
// when unset.
func (b Budget) Threshold() int {
	if b.AlertThreshold <= 0 {
		return DefaultAlertThreshold
	}
	return b.AlertThreshold
}
