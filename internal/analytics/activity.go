package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/models"
)

// Filter is a named quick filter evaluated against "now".
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterThisWeek  Filter = "week"
	FilterThisMonth Filter = "month"
	FilterThisYear  Filter = "year"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterToday, FilterThisWeek, FilterThisMonth, FilterThisYear:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("неизвестный фильтр %q", s)
}

// Transactions projects all three collections into one list, newest first.
// Records with the same date keep payment, expense, self payment order.
func Transactions(payments []models.Payment, expenses []models.Expense, selfPayments []models.SelfPayment) []models.Transaction {
	out := make([]models.Transaction, 0, len(payments)+len(expenses)+len(selfPayments))
	for _, p := range payments {
		out = append(out, p.ToTransaction())
	}
	for _, e := range expenses {
		out = append(out, e.ToTransaction())
	}
	for _, s := range selfPayments {
		out = append(out, s.ToTransaction())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Recent returns the n newest transactions.
func Recent(txs []models.Transaction, n int) []models.Transaction {
	if n <= 0 {
		return []models.Transaction{}
	}
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// FilterRange keeps transactions with start <= date <= end.
func FilterRange(txs []models.Transaction, start, end time.Time) []models.Transaction {
	out := []models.Transaction{}
	for _, tx := range txs {
		if !tx.Date.Before(start) && !tx.Date.After(end) {
			out = append(out, tx)
		}
	}
	return out
}

// FilterQuick keeps transactions that fall in the same day, week, month or
// year as now on the given calendar.
func FilterQuick(txs []models.Transaction, f Filter, now time.Time, cal Calendar) []models.Transaction {
	var bucket func(time.Time) time.Time
	switch f {
	case FilterToday:
		bucket = cal.StartOfDay
	case FilterThisWeek:
		bucket = cal.StartOfWeek
	case FilterThisMonth:
		bucket = cal.StartOfMonth
	case FilterThisYear:
		bucket = cal.StartOfYear
	default:
		out := make([]models.Transaction, len(txs))
		copy(out, txs)
		return out
	}

	current := bucket(now)
	out := []models.Transaction{}
	for _, tx := range txs {
		if bucket(tx.Date).Equal(current) {
			out = append(out, tx)
		}
	}
	return out
}
