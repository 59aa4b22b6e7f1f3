package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/export"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

func sample() []models.Transaction {
	return analytics.Transactions(
		[]models.Payment{{ID: "p1", Amount: decimal.RequireFromString("120"), Method: "Jobber", Date: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), Notes: "mowing, front yard"}},
		[]models.Expense{{ID: "e1", Amount: decimal.RequireFromString("15.5"), Category: "", Date: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}},
		nil,
	)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, sample(), time.UTC); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ошибка разбора CSV: %v", err)
	}
	want := [][]string{
		{"type", "description", "date", "amount", "notes"},
		{"payments", "Jobber", "2024-03-02", "120.00", "mowing, front yard"},
		{"expenses", "Expense", "2024-03-01", "15.50", ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("получили %v, хотели %v", rows, want)
	}
	for i := range want {
		if strings.Join(rows[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("строка %d: получили %v, хотели %v", i, rows[i], want[i])
		}
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, nil, time.UTC); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}
	if got := buf.String(); got != "type,description,date,amount,notes\n" {
		t.Errorf("получили %q, хотели только заголовок", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, sample(), time.UTC); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("ошибка разбора JSON: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("получили %d элементов, хотели 2", len(got))
	}
	if got[0]["type"] != "payments" || got[0]["id"] != "p1" || got[0]["amount"] != "120.00" {
		t.Errorf("получили %+v", got[0])
	}
	if got[1]["description"] != "Expense" {
		t.Errorf("получили %+v, хотели описание Expense", got[1])
	}
}

func TestWriteJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, nil, time.UTC); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("получили %q, хотели []", got)
	}
}

func TestWritePDF(t *testing.T) {
	txs := sample()
	report := export.Report{
		BusinessName: "Jo's Lawn Care",
		ProfileName:  "Jo",
		GeneratedAt:  time.Date(2024, 3, 3, 9, 0, 0, 0, time.UTC),
		Summary:      analytics.Summary{TotalEarnings: decimal.NewFromInt(120), TotalExpenses: decimal.RequireFromString("15.5"), NetProfit: decimal.RequireFromString("104.5")},
		Transactions: txs,
	}
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, report); err != nil {
		t.Fatalf("ошибка экспорта PDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("вывод не похож на PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestDatesUseCalendarZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("нет базы часовых поясов: %v", err)
	}
	// evening of March 1 in New York
	txs := analytics.Transactions(
		[]models.Payment{{ID: "p1", Amount: decimal.NewFromInt(50), Method: "Cash", Date: time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)}},
		nil, nil,
	)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, txs, ny); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ошибка разбора CSV: %v", err)
	}
	if got := rows[1][2]; got != "2024-03-01" {
		t.Errorf("CSV: получили %s, хотели 2024-03-01", got)
	}

	buf.Reset()
	if err := export.WriteJSON(&buf, txs, ny); err != nil {
		t.Fatalf("ошибка экспорта: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("ошибка разбора JSON: %v", err)
	}
	if date, _ := got[0]["date"].(string); !strings.HasPrefix(date, "2024-03-01T22:00:00-05:00") {
		t.Errorf("JSON: получили %v, хотели 2024-03-01T22:00:00-05:00", got[0]["date"])
	}
}
