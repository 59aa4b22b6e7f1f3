package remote

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

// Document field names.
const (
	fieldAmount   = "amount"
	fieldDate     = "date"
	fieldNotes    = "notes"
	fieldMethod   = "method"
	fieldCategory = "category"
)

func baseFields(amount decimal.Decimal, date time.Time, notes string) map[string]any {
	return map[string]any{
		fieldAmount: amount.String(),
		fieldDate:   date.UTC().Format(time.RFC3339Nano),
		fieldNotes:  notes,
	}
}

func encodePayment(p models.Payment) map[string]any {
	data := baseFields(p.Amount, p.Date, p.Notes)
	data[fieldMethod] = p.Method
	return data
}

func encodeExpense(e models.Expense) map[string]any {
	data := baseFields(e.Amount, e.Date, e.Notes)
	data[fieldCategory] = e.Category
	return data
}

func encodeSelfPayment(s models.SelfPayment) map[string]any {
	return baseFields(s.Amount, s.Date, s.Notes)
}

// decodeBase reads the fields every record kind requires.
func decodeBase(data map[string]any) (amount decimal.Decimal, date time.Time, notes string, ok bool) {
	if amount, ok = decodeAmount(data[fieldAmount]); !ok {
		return
	}
	if date, ok = decodeDate(data[fieldDate]); !ok {
		return
	}
	// notes is optional; a present value must still be a string
	switch v := data[fieldNotes].(type) {
	case nil:
		notes, ok = "", true
	case string:
		notes, ok = v, true
	default:
		ok = false
	}
	return
}

func decodePayment(doc database.Document) (models.Payment, bool) {
	amount, date, notes, ok := decodeBase(doc.Data)
	if !ok {
		return models.Payment{}, false
	}
	method, ok := doc.Data[fieldMethod].(string)
	if !ok {
		return models.Payment{}, false
	}
	return models.Payment{ID: doc.ID, Amount: amount, Method: method, Date: date, Notes: notes}, true
}

func decodeExpense(doc database.Document) (models.Expense, bool) {
	amount, date, notes, ok := decodeBase(doc.Data)
	if !ok {
		return models.Expense{}, false
	}
	category, ok := doc.Data[fieldCategory].(string)
	if !ok {
		return models.Expense{}, false
	}
	return models.Expense{ID: doc.ID, Amount: amount, Category: category, Date: date, Notes: notes}, true
}

func decodeSelfPayment(doc database.Document) (models.SelfPayment, bool) {
	amount, date, notes, ok := decodeBase(doc.Data)
	if !ok {
		return models.SelfPayment{}, false
	}
	return models.SelfPayment{ID: doc.ID, Amount: amount, Date: date, Notes: notes}, true
}

// decodeAmount accepts the decimal strings this package writes and plain
// numbers written by older clients. Negative amounts are rejected.
func decodeAmount(v any) (decimal.Decimal, bool) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case string:
		d, err = decimal.NewFromString(x)
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case json.Number:
		d, err = decimal.NewFromString(x.String())
	case decimal.Decimal:
		d = x
	default:
		return decimal.Decimal{}, false
	}
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

func decodeDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// decodeAll keeps the documents that decode and drops the rest.
func decodeAll[T any](kind models.Kind, docs []database.Document, decode func(database.Document) (T, bool)) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, ok := decode(doc)
		if !ok {
			logDecodeFailure(kind, doc.ID)
			continue
		}
		out = append(out, rec)
	}
	return out
}
