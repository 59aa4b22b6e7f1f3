package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentMethods are offered as suggestions; any label is accepted.
var DefaultPaymentMethods = []string{"Cash", "Venmo", "Zelle", "Jobber"}

type Payment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes"`
}

func (p Payment) RecordID() string              { return p.ID }
func (p Payment) RecordKind() Kind              { return KindPayment }
func (p Payment) RecordAmount() decimal.Decimal { return p.Amount }
func (p Payment) RecordDate() time.Time         { return p.Date }

func (p Payment) ToTransaction() Transaction {
	return Transaction{
		Kind:        KindPayment,
		RecordID:    p.ID,
		Description: p.Method,
		Date:        p.Date,
		Amount:      p.Amount,
		Notes:       p.Notes,
	}
}
