package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

type recordRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"method"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
}

// ListRecordsHandler returns the current collection of one kind.
func ListRecordsHandler(store *appdata.Store, kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch kind {
		case models.KindPayment:
			writeJSON(w, http.StatusOK, nonNil(store.Payments()))
		case models.KindExpense:
			writeJSON(w, http.StatusOK, nonNil(store.Expenses()))
		default:
			writeJSON(w, http.StatusOK, nonNil(store.SelfPayments()))
		}
	}
}

// CreateRecordHandler writes a new record. The response carries the assigned
// id; the collection changes once the store echoes the record back.
func CreateRecordHandler(store *appdata.Store, kind models.Kind, cal analytics.Calendar, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input data")
			return
		}

		date := now()
		if req.Date != "" {
			parsed, err := parseDate(req.Date, cal)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid date")
				return
			}
			date = parsed
		}

		var add func(ctx context.Context) (string, error)
		switch kind {
		case models.KindPayment:
			if req.Method == "" {
				writeError(w, http.StatusBadRequest, "Payment method is required")
				return
			}
			add = func(ctx context.Context) (string, error) {
				return store.AddPayment(ctx, req.Amount, req.Method, date, req.Notes)
			}
		case models.KindExpense:
			if req.Category == "" {
				writeError(w, http.StatusBadRequest, "Expense category is required")
				return
			}
			add = func(ctx context.Context) (string, error) {
				return store.AddExpense(ctx, req.Amount, req.Category, date, req.Notes)
			}
		default:
			add = func(ctx context.Context) (string, error) {
				return store.AddSelfPayment(ctx, req.Amount, date, req.Notes)
			}
		}

		id, err := add(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
	}
}

func DeleteRecordHandler(store *appdata.Store, kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if err := store.Delete(r.Context(), kind, id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted successfully"})
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
