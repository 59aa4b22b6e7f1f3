package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
)

const defaultRecentLimit = 5

// RecentActivityHandler returns the newest transactions across all kinds.
func RecentActivityHandler(store *appdata.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = n
		}
		writeJSON(w, http.StatusOK, analytics.Recent(store.Transactions(), limit))
	}
}

// ActivityHandler filters all transactions by ?filter= or by ?start=&end=.
// A date-only end includes that whole day. Without start the range is open
// at the beginning; without end it stops at the end of today.
func ActivityHandler(store *appdata.Store, cal analytics.Calendar, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		txs := store.Transactions()

		if q.Get("start") != "" || q.Get("end") != "" {
			start, end, ok := parseRange(w, q.Get("start"), q.Get("end"), cal, now())
			if !ok {
				return
			}
			writeJSON(w, http.StatusOK, analytics.FilterRange(txs, start, end))
			return
		}

		filter, err := analytics.ParseFilter(q.Get("filter"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, analytics.FilterQuick(txs, filter, now(), cal))
	}
}

// parseRange writes a 400 and reports false when a given bound is malformed.
func parseRange(w http.ResponseWriter, rawStart, rawEnd string, cal analytics.Calendar, now time.Time) (start, end time.Time, ok bool) {
	if rawStart != "" {
		var err error
		if start, err = parseDate(rawStart, cal); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date")
			return start, end, false
		}
	}
	if rawEnd == "" {
		return start, cal.StartOfDay(now).AddDate(0, 0, 1).Add(-time.Nanosecond), true
	}
	end, err := parseDate(rawEnd, cal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date")
		return start, end, false
	}
	if len(strings.TrimSpace(rawEnd)) == len("2006-01-02") {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, true
}
