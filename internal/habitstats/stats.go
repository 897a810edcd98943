// Package habitstats derives streaks and completion rates from a habit's
// completion history.
//
// A streak counts consecutive periods with at least one completion, where the
// period is a calendar day for daily habits, an ISO week (Monday to Sunday)
// for weekly habits and a calendar month for monthly habits. The current
// streak survives while the latest completed period is the current one or
// the one right before it, so a habit not yet done today still shows
// yesterday's streak. Missing one whole period resets it.
package habitstats

import (
	"slices"
	"time"

	"mindlog/internal/models"
)

type Stats struct {
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
	CompletionRate float64 `json:"completion_rate"`
}

// Compute is ComputeSince with the first completion as the start of the
// tracking window.
func Compute(history []models.HabitCompletion, freq models.Frequency, today time.Time) Stats {
	return ComputeSince(history, freq, time.Time{}, today)
}

// ComputeSince derives Stats as of today. Completions dated after today are
// ignored. since, usually the habit's creation time, widens the window used
// for the completion rate when it predates the first completion; the zero
// time leaves it at the first completion.
func ComputeSince(history []models.HabitCompletion, freq models.Frequency, since, today time.Time) Stats {
	now := PeriodOf(freq, today)
	periods := completedPeriods(history, freq, today)
	if len(periods) == 0 {
		return Stats{}
	}

	var s Stats
	run := 0
	for i, p := range periods {
		if i > 0 && p == periods[i-1]+1 {
			run++
		} else {
			run = 1
		}
		s.LongestStreak = max(s.LongestStreak, run)
	}

	if last := periods[len(periods)-1]; last >= now-1 {
		// run already holds the length of the trailing run
		s.CurrentStreak = run
	}

	start := periods[0]
	if !since.IsZero() {
		start = min(start, PeriodOf(freq, since))
	}
	expected := now - start + 1
	s.CompletionRate = min(1, float64(len(periods))/float64(expected))
	return s
}

// completedPeriods returns the distinct periods holding a completion dated
// on or before today, ascending.
func completedPeriods(history []models.HabitCompletion, freq models.Frequency, today time.Time) []int {
	periods := make([]int, 0, len(history))
	for _, c := range history {
		if !after(c.Date, today) {
			periods = append(periods, PeriodOf(freq, c.Date))
		}
	}
	slices.Sort(periods)
	return slices.Compact(periods)
}

// PeriodOf maps the calendar day of t to a sequential period number for
// freq, so consecutive periods differ by exactly one. Unknown frequencies
// are treated as daily.
func PeriodOf(freq models.Frequency, t time.Time) int {
	day := models.DayOf(t)
	switch freq {
	case models.FrequencyWeekly:
		// 1970-01-01 was a Thursday; shift so weeks start on Monday.
		return floorDiv(dayNumber(day)+3, 7)
	case models.FrequencyMonthly:
		return day.Year()*12 + int(day.Month()) - 1
	default:
		return dayNumber(day)
	}
}

func dayNumber(day time.Time) int {
	return floorDiv(int(day.Unix()), 86400)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Normalize drops same-day duplicates, keeping the first completion seen
// for each day, and orders the rest most recent first.
func Normalize(history []models.HabitCompletion) []models.HabitCompletion {
	seen := make(map[time.Time]bool, len(history))
	out := make([]models.HabitCompletion, 0, len(history))
	for _, c := range history {
		d := models.DayOf(c.Date)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, models.HabitCompletion{Date: d, Note: c.Note})
	}
	slices.SortStableFunc(out, func(a, b models.HabitCompletion) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// after reports whether the calendar day of t falls after that of day.
func after(t, day time.Time) bool {
	return models.DayOf(t).After(models.DayOf(day))
}

// CompletedInPeriod reports whether the period containing day has a
// completion dated on or before day, e.g. whether a weekly habit is already
// done this week.
func CompletedInPeriod(history []models.HabitCompletion, freq models.Frequency, day time.Time) bool {
	p := PeriodOf(freq, day)
	for _, c := range history {
		if !after(c.Date, day) && PeriodOf(freq, c.Date) == p {
			return true
		}
	}
	return false
}
