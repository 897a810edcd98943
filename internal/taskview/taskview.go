// Package taskview orders and counts the tasks extracted from journal entries.
package taskview

import (
	"slices"

	"mindlog/internal/models"
)

// Groups splits tasks by completion state. Both slices keep the input order.
type Groups struct {
	Pending   []models.TaskItem `json:"pending"`
	Completed []models.TaskItem `json:"completed"`
}

func Group(tasks []models.TaskItem) Groups {
	g := Groups{
		Pending:   make([]models.TaskItem, 0, len(tasks)),
		Completed: make([]models.TaskItem, 0),
	}
	for _, t := range tasks {
		if t.IsCompleted {
			g.Completed = append(g.Completed, t)
		} else {
			g.Pending = append(g.Pending, t)
		}
	}
	return g
}

// PriorityRank orders priorities high > medium > low. Unknown values rank
// below low.
func PriorityRank(p models.Priority) int {
	switch p {
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	case models.PriorityLow:
		return 1
	}
	return 0
}

// SortByPriority returns a copy of tasks with the highest priority first,
// keeping input order among equal priorities.
func SortByPriority(tasks []models.TaskItem) []models.TaskItem {
	out := slices.Clone(tasks)
	slices.SortStableFunc(out, func(a, b models.TaskItem) int {
		return PriorityRank(b.Priority) - PriorityRank(a.Priority)
	})
	return out
}

func CountPending(entries []models.JournalEntry) int {
	n := 0
	for _, e := range entries {
		for _, t := range e.ExtractedTasks {
			if !t.IsCompleted {
				n++
			}
		}
	}
	return n
}

func CountCompleted(entries []models.JournalEntry) int {
	n := 0
	for _, e := range entries {
		for _, t := range e.ExtractedTasks {
			if t.IsCompleted {
				n++
			}
		}
	}
	return n
}
