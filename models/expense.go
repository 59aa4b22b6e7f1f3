package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultExpenseCategories are offered as suggestions; any label is accepted.
var DefaultExpenseCategories = []string{"Food", "Travel", "Utilities", "Other"}

type Expense struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes"`
}

func (e Expense) RecordID() string              { return e.ID }
func (e Expense) RecordKind() Kind              { return KindExpense }
func (e Expense) RecordAmount() decimal.Decimal { return e.Amount }
func (e Expense) RecordDate() time.Time         { return e.Date }

func (e Expense) ToTransaction() Transaction {
	description := e.Category
	if description == "" {
		description = "Expense"
	}
	return Transaction{
		Kind:        KindExpense,
		RecordID:    e.ID,
		Description: description,
		Date:        e.Date,
		Amount:      e.Amount,
		Notes:       e.Notes,
	}
}
