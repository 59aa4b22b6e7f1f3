package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the display projection of any record kind. It is never stored.
type Transaction struct {
	Kind        Kind            `json:"type"`
	RecordID    string          `json:"id"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes"`
}
