package export

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

type Report struct {
	BusinessName string
	ProfileName  string
	GeneratedAt  time.Time
	// Location is the zone dates are printed in; nil means the local zone.
	Location     *time.Location
	Summary      analytics.Summary
	Transactions []models.Transaction
}

// WritePDF renders an A4 statement: header, totals, then every transaction.
func WritePDF(w io.Writer, r Report) error {
	title := r.BusinessName
	if title == "" {
		title = "Business Tracker"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title+" Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	if r.ProfileName != "" {
		pdf.Cell(0, 7, "Owner: "+r.ProfileName)
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, "Generated: "+inZone(r.GeneratedAt, r.Location).Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []struct {
		label string
		value string
	}{
		{"Earnings", r.Summary.TotalEarnings.StringFixed(2)},
		{"Expenses", r.Summary.TotalExpenses.StringFixed(2)},
		{"Paid to Myself", r.Summary.TotalSelfPayments.StringFixed(2)},
		{"Net Profit", r.Summary.NetProfit.StringFixed(2)},
	} {
		pdf.Cell(60, 7, line.label)
		pdf.Cell(40, 7, "$"+line.value)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Transactions")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(28, 7, "Date")
	pdf.Cell(32, 7, "Type")
	pdf.Cell(50, 7, "Description")
	pdf.Cell(30, 7, "Amount")
	pdf.Cell(50, 7, "Notes")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 10)
	for _, tx := range r.Transactions {
		pdf.Cell(28, 6, inZone(tx.Date, r.Location).Format(dateLayout))
		pdf.Cell(32, 6, kindLabel(tx.Kind))
		pdf.Cell(50, 6, truncate(tx.Description, 28))
		pdf.Cell(30, 6, fmt.Sprintf("$%s", tx.Amount.StringFixed(2)))
		pdf.Cell(50, 6, truncate(tx.Notes, 28))
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func kindLabel(k models.Kind) string {
	switch k {
	case models.KindPayment:
		return "Payment"
	case models.KindExpense:
		return "Expense"
	case models.KindSelfPayment:
		return "Self Payment"
	}
	return string(k)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
