// Package entryfilter narrows a user's journal entries for the entries list.
package entryfilter

import (
	"slices"
	"strings"

	"mindlog/internal/models"
	"mindlog/internal/mood"
)

// Filter returns the entries matching searchText and moodFilter, most recent
// first. Entries with equal dates keep their input order. The input slice is
// not modified.
//
// A blank searchText matches everything; otherwise it must appear, ignoring
// case, in the reflection, progress notes, brain dump or a task title.
// mood.None disables the mood filter.
func Filter(entries []models.JournalEntry, searchText string, moodFilter mood.Mood) []models.JournalEntry {
	needle := strings.ToLower(strings.TrimSpace(searchText))

	out := make([]models.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if moodFilter != mood.None && e.Mood != moodFilter {
			continue
		}
		if needle != "" && !Matches(e, needle) {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b models.JournalEntry) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// Matches reports whether the lowercased needle occurs in any searchable
// field of e.
func Matches(e models.JournalEntry, needle string) bool {
	if containsFold(e.Reflection, needle) ||
		containsFold(e.ProgressNotes, needle) ||
		containsFold(e.OriginalBrainDump, needle) {
		return true
	}
	for _, t := range e.ExtractedTasks {
		if containsFold(t.Title, needle) {
			return true
		}
	}
	return false
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
