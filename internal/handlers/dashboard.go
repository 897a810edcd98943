package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"mindlog/internal/habitstats"
	mw "mindlog/internal/middleware"
	"mindlog/internal/models"
	"mindlog/internal/store"
	"mindlog/internal/taskview"
)

type DashboardHandler struct {
	entries store.JournalStore
	habits  store.HabitStore
	log     *zap.Logger
}

func NewDashboardHandler(entries store.JournalStore, habits store.HabitStore, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{entries: entries, habits: habits, log: log}
}

type dashboardResponse struct {
	ReferenceDate     string   `json:"reference_date"`
	HasTodayEntry     bool     `json:"has_today_entry"`
	EntriesThisWeek   int      `json:"entries_this_week"`
	ActiveHabits      int      `json:"active_habits"`
	HabitsDoneToday   int      `json:"habits_done_today"`
	BestCurrentStreak int      `json:"best_current_streak"`
	BestStreakHabit   string   `json:"best_streak_habit,omitempty"`
	PendingTasks      int      `json:"pending_tasks"`
	CompletedTasks    int      `json:"completed_tasks"`
	LatestMood        *MoodDTO `json:"latest_mood,omitempty"`
}

// Get summarizes the user's day. Accepts optional query param
// local_date=YYYY-MM-DD to use as the user's "today".
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	refDate, ok := referenceDay(r)
	if !ok {
		http.Error(w, "invalid local_date format; expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	userID := mw.UserID(r.Context())

	entries, err := h.entries.List(r.Context(), userID)
	if err != nil {
		h.log.Error("list entries", zap.Error(err))
		http.Error(w, "could not fetch entries", http.StatusInternalServerError)
		return
	}
	habits, err := h.habits.List(r.Context(), userID, false)
	if err != nil {
		h.log.Error("list habits", zap.Error(err))
		http.Error(w, "could not fetch habits", http.StatusInternalServerError)
		return
	}

	resp := dashboardResponse{
		ReferenceDate:  refDate.Format(models.DateLayout),
		ActiveHabits:   len(habits),
		PendingTasks:   taskview.CountPending(entries),
		CompletedTasks: taskview.CountCompleted(entries),
	}

	// Weeks start on Monday, matching weekly habit streaks.
	weekStart := refDate.AddDate(0, 0, -((int(refDate.Weekday()) + 6) % 7))
	var latest time.Time
	for _, e := range entries {
		day := e.LocalDate
		if day.After(refDate) {
			continue
		}
		if day.Equal(refDate) {
			resp.HasTodayEntry = true
		}
		if !day.Before(weekStart) {
			resp.EntriesThisWeek++
		}
		if e.Mood.IsSet() && e.Date.After(latest) {
			latest = e.Date
			m := ToMoodDTO(e.Mood)
			resp.LatestMood = &m
		}
	}

	for _, hb := range habits {
		if habitstats.CompletedInPeriod(hb.CompletionHistory, hb.Frequency, refDate) {
			resp.HabitsDoneToday++
		}
		s := habitstats.Compute(hb.CompletionHistory, hb.Frequency, refDate)
		if s.CurrentStreak > resp.BestCurrentStreak {
			resp.BestCurrentStreak = s.CurrentStreak
			resp.BestStreakHabit = hb.Title
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
