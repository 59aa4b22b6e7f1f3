package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/export"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
)

func attachment(w http.ResponseWriter, contentType, ext string, now time.Time) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transactions-%s.%s"`, now.Format("20060102"), ext))
}

func ExportCSVHandler(store *appdata.Store, cal analytics.Calendar, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, store.Transactions(), cal.Location); err != nil {
			log.Printf("Ошибка экспорта CSV: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to export CSV")
			return
		}
		attachment(w, "text/csv", "csv", now())
		_, _ = w.Write(buf.Bytes())
	}
}

func ExportJSONHandler(store *appdata.Store, cal analytics.Calendar, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, store.Transactions(), cal.Location); err != nil {
			log.Printf("Ошибка экспорта JSON: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to export JSON")
			return
		}
		attachment(w, "application/json", "json", now())
		_, _ = w.Write(buf.Bytes())
	}
}

// ExportPDFHandler renders a statement headed with the saved business settings.
func ExportPDFHandler(store *appdata.Store, adapter *remote.Adapter, cal analytics.Calendar, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		settings, err := adapter.FetchSettings(r.Context(), snap.UserID)
		if err != nil {
			writeStoreError(w, err)
			return
		}

		ts := now()
		report := export.Report{
			BusinessName: settings.BusinessName,
			ProfileName:  settings.ProfileName,
			GeneratedAt:  ts,
			Location:     cal.Location,
			Summary:      snap.Summary(),
			Transactions: snap.Transactions(),
		}
		var buf bytes.Buffer
		if err := export.WritePDF(&buf, report); err != nil {
			log.Printf("Ошибка экспорта PDF: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to export PDF")
			return
		}
		attachment(w, "application/pdf", "pdf", ts)
		_, _ = w.Write(buf.Bytes())
	}
}
