package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mindlog/internal/entryfilter"
	mw "mindlog/internal/middleware"
	"mindlog/internal/models"
	"mindlog/internal/mood"
	"mindlog/internal/store"
	"mindlog/internal/taskview"
)

type JournalHandler struct {
	entries store.JournalStore
	log     *zap.Logger
}

func NewJournalHandler(entries store.JournalStore, log *zap.Logger) *JournalHandler {
	return &JournalHandler{entries: entries, log: log}
}

type taskRequest struct {
	Title       string          `json:"title"`
	IsCompleted bool            `json:"is_completed"`
	Priority    models.Priority `json:"priority"`
}

// entryRequest is the processed brain dump handed over by the AI service.
type entryRequest struct {
	Date              *time.Time    `json:"date"`
	LocalDate         string        `json:"local_date"`
	Mood              string        `json:"mood"`
	Reflection        string        `json:"reflection"`
	ProgressNotes     string        `json:"progress_notes"`
	ExtractedTasks    []taskRequest `json:"extracted_tasks"`
	OriginalBrainDump string        `json:"original_brain_dump"`
}

// Create stores an already-processed journal entry.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.OriginalBrainDump) == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	entry := models.JournalEntry{
		UserID:            mw.UserID(r.Context()),
		Mood:              mood.Parse(req.Mood),
		Reflection:        req.Reflection,
		ProgressNotes:     req.ProgressNotes,
		OriginalBrainDump: req.OriginalBrainDump,
		ExtractedTasks:    make([]models.TaskItem, 0, len(req.ExtractedTasks)),
	}
	if req.Date != nil {
		entry.Date = *req.Date
	}
	if req.LocalDate != "" {
		day, err := models.ParseDay(req.LocalDate)
		if err != nil {
			http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		entry.LocalDate = day
	}
	for _, t := range req.ExtractedTasks {
		if strings.TrimSpace(t.Title) == "" {
			http.Error(w, "task title required", http.StatusBadRequest)
			return
		}
		if t.Priority != "" && !t.Priority.Valid() {
			http.Error(w, "invalid task priority", http.StatusBadRequest)
			return
		}
		entry.ExtractedTasks = append(entry.ExtractedTasks, models.TaskItem{
			Title:       t.Title,
			IsCompleted: t.IsCompleted,
			Priority:    t.Priority,
		})
	}

	saved, err := h.entries.Create(r.Context(), entry)
	if err != nil {
		h.log.Error("create entry", zap.Error(err))
		http.Error(w, "could not save", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, ToEntryDTO(saved))
}

// List returns the user's entries filtered by the optional q (free text)
// and mood query params, most recent first.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	moodFilter := mood.None
	if raw := q.Get("mood"); raw != "" {
		if moodFilter = mood.Parse(raw); moodFilter == mood.None {
			http.Error(w, "unknown mood", http.StatusBadRequest)
			return
		}
	}

	all, err := h.entries.List(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		h.log.Error("list entries", zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}

	filtered := entryfilter.Filter(all, q.Get("q"), moodFilter)
	out := make([]EntryDTO, 0, len(filtered))
	for _, e := range filtered {
		out = append(out, ToEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.entries.Get(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("get entry", zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, EntryDetailDTO{
		EntryDTO: ToEntryDTO(e),
		Tasks:    taskview.Group(taskview.SortByPriority(e.ExtractedTasks)),
	})
}

func (h *JournalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.entries.Delete(r.Context(), mw.UserID(r.Context()), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("delete entry", zap.Error(err))
		http.Error(w, "could not delete", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTask toggles completion of one extracted task.
func (h *JournalHandler) SetTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IsCompleted *bool `json:"is_completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IsCompleted == nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	err := h.entries.SetTaskCompleted(r.Context(), mw.UserID(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "taskID"), *body.IsCompleted)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("update task", zap.Error(err))
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type taskSummary struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// TaskSummary counts extracted tasks across every entry.
func (h *JournalHandler) TaskSummary(w http.ResponseWriter, r *http.Request) {
	all, err := h.entries.List(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		h.log.Error("list entries", zap.Error(err))
		http.Error(w, "could not fetch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, taskSummary{
		Pending:   taskview.CountPending(all),
		Completed: taskview.CountCompleted(all),
	})
}

// Moods lists the closed mood set for pickers.
func Moods(w http.ResponseWriter, r *http.Request) {
	all := mood.All()
	out := make([]MoodDTO, 0, len(all))
	for _, m := range all {
		out = append(out, ToMoodDTO(m))
	}
	writeJSON(w, http.StatusOK, out)
}
