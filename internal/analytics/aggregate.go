// Package analytics derives totals, breakdowns and series from record
// snapshots. Every function is pure and leaves its input untouched.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

type Summary struct {
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	TotalSelfPayments decimal.Decimal `json:"total_self_payments"`
	NetProfit         decimal.Decimal `json:"net_profit"`
}

type LabelTotal struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type DayTotal struct {
	Day    time.Time       `json:"day"`
	Amount decimal.Decimal `json:"amount"`
}

type MonthTotal struct {
	Year   int             `json:"year"`
	Month  time.Month      `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Total sums the amounts of a collection.
func Total[R models.Record](records []R) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.RecordAmount())
	}
	return sum
}

// Summarize computes the dashboard totals; NetProfit is always derived from the other three.
func Summarize(payments []models.Payment, expenses []models.Expense, selfPayments []models.SelfPayment) Summary {
	s := Summary{
		TotalEarnings:     Total(payments),
		TotalExpenses:     Total(expenses),
		TotalSelfPayments: Total(selfPayments),
	}
	s.NetProfit = s.TotalEarnings.Sub(s.TotalExpenses).Sub(s.TotalSelfPayments)
	return s
}

// ByMethod groups payments by method, sorted by label.
func ByMethod(payments []models.Payment) []LabelTotal {
	return byLabel(payments, func(p models.Payment) string { return p.Method })
}

// ByCategory groups expenses by category, sorted by label.
func ByCategory(expenses []models.Expense) []LabelTotal {
	return byLabel(expenses, func(e models.Expense) string { return e.Category })
}

func byLabel[R models.Record](records []R, label func(R) string) []LabelTotal {
	totals := make(map[string]decimal.Decimal)
	for _, r := range records {
		l := label(r)
		totals[l] = totals[l].Add(r.RecordAmount())
	}

	out := make([]LabelTotal, 0, len(totals))
	for l, amount := range totals {
		out = append(out, LabelTotal{Label: l, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// DailySeries sums amounts per local calendar day, oldest day first.
func DailySeries[R models.Record](records []R, cal Calendar) []DayTotal {
	totals := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		day := cal.StartOfDay(r.RecordDate())
		totals[day] = totals[day].Add(r.RecordAmount())
	}

	out := make([]DayTotal, 0, len(totals))
	for day, amount := range totals {
		out = append(out, DayTotal{Day: day, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

// MonthlySeries sums amounts per local calendar month, oldest month first.
func MonthlySeries[R models.Record](records []R, cal Calendar) []MonthTotal {
	totals := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		month := cal.StartOfMonth(r.RecordDate())
		totals[month] = totals[month].Add(r.RecordAmount())
	}

	months := make([]time.Time, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthTotal, 0, len(months))
	for _, m := range months {
		out = append(out, MonthTotal{Year: m.Year(), Month: m.Month(), Amount: totals[m]})
	}
	return out
}
