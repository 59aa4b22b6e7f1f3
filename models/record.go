package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the collection a record lives in.
type Kind string

const (
	KindPayment     Kind = "payments"
	KindExpense     Kind = "expenses"
	KindSelfPayment Kind = "self_payments"
)

// Kinds lists every record collection in display order.
var Kinds = []Kind{KindPayment, KindExpense, KindSelfPayment}

func (k Kind) Valid() bool {
	switch k {
	case KindPayment, KindExpense, KindSelfPayment:
		return true
	}
	return false
}

// Record is the shape shared by payments, expenses and self payments.
type Record interface {
	RecordID() string
	RecordKind() Kind
	RecordAmount() decimal.Decimal
	RecordDate() time.Time
	ToTransaction() Transaction
}

// Pending reports whether the record has not been assigned an id by the store yet.
func Pending(r Record) bool {
	return r.RecordID() == ""
}
