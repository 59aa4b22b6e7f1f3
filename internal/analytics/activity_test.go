package analytics_test

import (
	"testing"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

func day(d, h int) time.Time {
	return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC)
}

func sampleTransactions() []models.Transaction {
	payments := []models.Payment{
		{ID: "p1", Amount: dec("10"), Method: "Cash", Date: day(1, 9)},
		{ID: "p2", Amount: dec("20"), Method: "Venmo", Date: day(5, 9)},
	}
	expenses := []models.Expense{{ID: "e1", Amount: dec("7"), Category: "Food", Date: day(3, 9)}}
	selfPayments := []models.SelfPayment{{ID: "s1", Amount: dec("5"), Date: day(4, 9)}}
	return analytics.Transactions(payments, expenses, selfPayments)
}

func ids(txs []models.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.RecordID)
	}
	return out
}

func equalIDs(got []models.Transaction, want ...string) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range want {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestTransactionsNewestFirst(t *testing.T) {
	txs := sampleTransactions()
	if !equalIDs(txs, "p2", "s1", "e1", "p1") {
		t.Errorf("получили %v, хотели [p2 s1 e1 p1]", ids(txs))
	}
	if txs[1].Description != "Paid to Myself" || txs[2].Description != "Food" || txs[0].Description != "Venmo" {
		t.Errorf("неожиданные описания: %+v", txs)
	}
	if txs[0].Kind != models.KindPayment || txs[2].Kind != models.KindExpense {
		t.Errorf("неожиданные типы: %+v", txs)
	}
}

func TestTransactionsTieKeepsKindOrder(t *testing.T) {
	same := day(2, 12)
	txs := analytics.Transactions(
		[]models.Payment{{ID: "p", Amount: dec("1"), Method: "Cash", Date: same}},
		[]models.Expense{{ID: "e", Amount: dec("1"), Category: "Food", Date: same}},
		[]models.SelfPayment{{ID: "s", Amount: dec("1"), Date: same}},
	)
	if !equalIDs(txs, "p", "e", "s") {
		t.Errorf("получили %v, хотели [p e s]", ids(txs))
	}
}

func TestRecent(t *testing.T) {
	txs := sampleTransactions()
	if got := analytics.Recent(txs, 2); !equalIDs(got, "p2", "s1") {
		t.Errorf("получили %v, хотели [p2 s1]", ids(got))
	}
	if got := analytics.Recent(txs, 10); len(got) != 4 {
		t.Errorf("получили %d, хотели 4", len(got))
	}
	if got := analytics.Recent(txs, 0); got == nil || len(got) != 0 {
		t.Errorf("получили %v, хотели пустой список", got)
	}
}

func TestFilterRangeInclusive(t *testing.T) {
	txs := sampleTransactions()
	got := analytics.FilterRange(txs, day(3, 9), day(4, 9))
	if !equalIDs(got, "s1", "e1") {
		t.Errorf("получили %v, хотели [s1 e1]", ids(got))
	}
	if got := analytics.FilterRange(txs, day(6, 0), day(7, 0)); len(got) != 0 {
		t.Errorf("получили %v, хотели пустой список", ids(got))
	}
}

func TestFilterQuick(t *testing.T) {
	cal := analytics.Calendar{Location: time.UTC, FirstWeekday: time.Sunday}
	// 2024-03-05 is a Tuesday; the week starts Sunday 2024-03-03.
	now := day(5, 18)
	txs := sampleTransactions()

	cases := []struct {
		filter analytics.Filter
		want   []string
	}{
		{analytics.FilterAll, []string{"p2", "s1", "e1", "p1"}},
		{analytics.FilterToday, []string{"p2"}},
		{analytics.FilterThisWeek, []string{"p2", "s1", "e1"}},
		{analytics.FilterThisMonth, []string{"p2", "s1", "e1", "p1"}},
		{analytics.FilterThisYear, []string{"p2", "s1", "e1", "p1"}},
	}
	for _, c := range cases {
		got := analytics.FilterQuick(txs, c.filter, now, cal)
		if !equalIDs(got, c.want...) {
			t.Errorf("%s: получили %v, хотели %v", c.filter, ids(got), c.want)
		}
	}

	monday := analytics.Calendar{Location: time.UTC, FirstWeekday: time.Monday}
	if got := analytics.FilterQuick(txs, analytics.FilterThisWeek, now, monday); !equalIDs(got, "p2", "s1") {
		t.Errorf("неделя с понедельника: получили %v, хотели [p2 s1]", ids(got))
	}
}

func TestParseFilter(t *testing.T) {
	if f, err := analytics.ParseFilter(""); err != nil || f != analytics.FilterAll {
		t.Errorf("получили %q %v, хотели all", f, err)
	}
	if f, err := analytics.ParseFilter(" Month "); err != nil || f != analytics.FilterThisMonth {
		t.Errorf("получили %q %v, хотели month", f, err)
	}
	if _, err := analytics.ParseFilter("decade"); err == nil {
		t.Errorf("ожидали ошибку для неизвестного фильтра")
	}
}
