package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mindlog/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// referenceDay reads the optional local_date query param used as the
// user's "today", defaulting to the current UTC day.
func referenceDay(r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("local_date")
	if s == "" {
		return models.DayOf(time.Now().UTC()), true
	}
	d, err := models.ParseDay(s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// latestLocalDay is the calendar day at now in UTC+14, the latest any user
// can be in.
func latestLocalDay(now time.Time) time.Time {
	return models.DayOf(now.UTC().Add(14 * time.Hour))
}
