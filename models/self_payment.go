package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SelfPayment is money the owner paid to themselves out of the business.
type SelfPayment struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	Notes  string          `json:"notes"`
}

func (s SelfPayment) RecordID() string              { return s.ID }
func (s SelfPayment) RecordKind() Kind              { return KindSelfPayment }
func (s SelfPayment) RecordAmount() decimal.Decimal { return s.Amount }
func (s SelfPayment) RecordDate() time.Time         { return s.Date }

func (s SelfPayment) ToTransaction() Transaction {
	return Transaction{
		Kind:        KindSelfPayment,
		RecordID:    s.ID,
		Description: "Paid to Myself",
		Date:        s.Date,
		Amount:      s.Amount,
		Notes:       s.Notes,
	}
}
