// Package export renders the transaction list for sharing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

const dateLayout = "2006-01-02"

var csvHeader = []string{"type", "description", "date", "amount", "notes"}

// inZone falls back to the machine's zone when loc is nil.
func inZone(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc)
}

// WriteCSV writes one row per transaction after a header row. Dates are the
// calendar day in loc.
func WriteCSV(w io.Writer, txs []models.Transaction, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		row := []string{
			string(tx.Kind),
			tx.Description,
			inZone(tx.Date, loc).Format(dateLayout),
			tx.Amount.StringFixed(2),
			tx.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("ошибка записи строки %s: %w", tx.RecordID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonTransaction struct {
	Type        string    `json:"type"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Amount      string    `json:"amount"`
	Notes       string    `json:"notes"`
}

// WriteJSON writes the transactions as an indented JSON array, with dates
// carrying loc's offset.
func WriteJSON(w io.Writer, txs []models.Transaction, loc *time.Location) error {
	out := make([]jsonTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, jsonTransaction{
			Type:        string(tx.Kind),
			ID:          tx.RecordID,
			Description: tx.Description,
			Date:        inZone(tx.Date, loc),
			Amount:      tx.Amount.StringFixed(2),
			Notes:       tx.Notes,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
