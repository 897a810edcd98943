package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	mw "mindlog/internal/middleware"
	"mindlog/internal/models"
	"mindlog/internal/store"
)

type HabitHandler struct {
	habits store.HabitStore
	log    *zap.Logger
}

func NewHabitHandler(habits store.HabitStore, log *zap.Logger) *HabitHandler {
	return &HabitHandler{habits: habits, log: log}
}

type habitRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    models.Category  `json:"category"`
	Frequency   models.Frequency `json:"frequency"`
	TimeOfDay   models.TimeOfDay `json:"time_of_day"`
	Source      models.Source    `json:"source"`
}

func (req *habitRequest) normalize() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title required"
	}
	if req.Category == "" {
		req.Category = models.CategoryOther
	}
	if req.Frequency == "" {
		req.Frequency = models.FrequencyDaily
	}
	if req.TimeOfDay == "" {
		req.TimeOfDay = models.TimeOfDayAnytime
	}
	if req.Source == "" {
		req.Source = models.SourceManual
	}
	switch {
	case !req.Category.Valid():
		return "invalid category"
	case !req.Frequency.Valid():
		return "invalid frequency"
	case !req.TimeOfDay.Valid():
		return "invalid time_of_day"
	case !req.Source.Valid():
		return "invalid source"
	}
	return ""
}

// List returns habits with stats as of local_date. Archived habits are
// included only with include_archived=true.
func (h *HabitHandler) List(w http.ResponseWriter, r *http.Request) {
	today, ok := referenceDay(r)
	if !ok {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	habits, err := h.habits.List(r.Context(), mw.UserID(r.Context()), includeArchived)
	if err != nil {
		h.log.Error("list habits", zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	out := make([]HabitDTO, 0, len(habits))
	for _, hb := range habits {
		out = append(out, ToHabitDTO(hb, today))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HabitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if msg := req.normalize(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	habit, err := h.habits.Create(r.Context(), models.Habit{
		UserID:      mw.UserID(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Frequency:   req.Frequency,
		TimeOfDay:   req.TimeOfDay,
		Source:      req.Source,
	})
	if err != nil {
		h.log.Error("create habit", zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToHabitDTO(habit, models.DayOf(habit.CreatedAt)))
}

func (h *HabitHandler) Get(w http.ResponseWriter, r *http.Request) {
	today, ok := referenceDay(r)
	if !ok {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	habit, err := h.habits.Get(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if !h.ok(w, err, "get habit") {
		return
	}
	writeJSON(w, http.StatusOK, ToHabitDTO(habit, today))
}

// Complete records the habit as done for local_date (default today).
// A second completion for the same day is rejected with 409 and days after
// the caller's today with 400. Without a local_date query param the limit is
// the current day in the easternmost time zone.
func (h *HabitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LocalDate string `json:"local_date"`
		Note      string `json:"note"`
	}
	// an empty body completes the habit for today
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	today, ok := referenceDay(r)
	day := today
	if body.LocalDate != "" {
		var err error
		day, err = models.ParseDay(body.LocalDate)
		ok = err == nil
	}
	if !ok {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !r.URL.Query().Has("local_date") {
		today = latestLocalDay(time.Now())
	}
	if day.After(today) {
		http.Error(w, "local_date is in the future", http.StatusBadRequest)
		return
	}

	userID := mw.UserID(r.Context())
	id := chi.URLParam(r, "id")
	err := h.habits.Complete(r.Context(), userID, id, models.HabitCompletion{Date: day, Note: body.Note})
	if errors.Is(err, store.ErrAlreadyCompleted) {
		http.Error(w, "already completed for this day", http.StatusConflict)
		return
	}
	if !h.ok(w, err, "complete habit") {
		return
	}

	habit, err := h.habits.Get(r.Context(), userID, id)
	if !h.ok(w, err, "get habit") {
		return
	}
	writeJSON(w, http.StatusCreated, ToHabitDTO(habit, day))
}

// Uncomplete removes the completion recorded for the {date} URL param.
func (h *HabitHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	day, err := models.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	err = h.habits.Uncomplete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"), day)
	if !h.ok(w, err, "uncomplete habit") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) Archive(w http.ResponseWriter, r *http.Request) {
	err := h.habits.Archive(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrAlreadyArchived) {
		http.Error(w, "already archived", http.StatusConflict)
		return
	}
	if !h.ok(w, err, "archive habit") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HabitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.habits.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if !h.ok(w, err, "delete habit") {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ok writes 404 or 500 for a non-nil err and reports whether the handler
// may continue.
func (h *HabitHandler) ok(w http.ResponseWriter, err error, op string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.log.Error(op, zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
	return false
}
