package handlers

import (
	"time"

	"mindlog/internal/habitstats"
	"mindlog/internal/models"
	"mindlog/internal/mood"
	"mindlog/internal/taskview"
)

// UserDTO keeps created_at as an RFC3339 string.
type UserDTO struct {
	ID        int     `json:"id"`
	Email     string  `json:"email"`
	CreatedAt string  `json:"created_at"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	AvatarID  *int    `json:"avatar_id,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarID:  u.AvatarID,
		Timezone:  u.Timezone,
	}
}

type MoodDTO struct {
	ID    string `json:"id"`
	Glyph string `json:"glyph"`
	Label string `json:"label"`
}

func ToMoodDTO(m mood.Mood) MoodDTO {
	return MoodDTO{ID: m.String(), Glyph: m.Glyph(), Label: m.Label()}
}

type EntryDTO struct {
	ID                string            `json:"id"`
	Date              string            `json:"date"`
	LocalDate         string            `json:"local_date"`
	Mood              MoodDTO           `json:"mood"`
	Reflection        string            `json:"reflection"`
	ProgressNotes     string            `json:"progress_notes"`
	ExtractedTasks    []models.TaskItem `json:"extracted_tasks"`
	OriginalBrainDump string            `json:"original_brain_dump"`
	CreatedAt         string            `json:"created_at"`
}

func ToEntryDTO(e models.JournalEntry) EntryDTO {
	tasks := e.ExtractedTasks
	if tasks == nil {
		tasks = []models.TaskItem{}
	}
	return EntryDTO{
		ID:                e.ID,
		Date:              e.Date.Format(time.RFC3339),
		LocalDate:         e.LocalDate.Format(models.DateLayout),
		Mood:              ToMoodDTO(e.Mood),
		Reflection:        e.Reflection,
		ProgressNotes:     e.ProgressNotes,
		ExtractedTasks:    tasks,
		OriginalBrainDump: e.OriginalBrainDump,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
	}
}

// EntryDetailDTO adds the grouped task view shown on the entry screen.
type EntryDetailDTO struct {
	EntryDTO
	Tasks taskview.Groups `json:"tasks"`
}

type CompletionDTO struct {
	LocalDate string `json:"local_date"`
	Note      string `json:"note,omitempty"`
}

type HabitDTO struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Category          models.Category  `json:"category"`
	Frequency         models.Frequency `json:"frequency"`
	TimeOfDay         models.TimeOfDay `json:"time_of_day"`
	Source            models.Source    `json:"source"`
	CreatedAt         string           `json:"created_at"`
	Archived          bool             `json:"archived"`
	CompletedToday    bool             `json:"completed_today"`
	CompletionHistory []CompletionDTO  `json:"completion_history"`
	habitstats.Stats
}

// ToHabitDTO attaches stats computed as of today. CompletedToday means the
// current period is done, so a weekly habit done on Monday stays checked
// all week.
func ToHabitDTO(h models.Habit, today time.Time) HabitDTO {
	history := habitstats.Normalize(h.CompletionHistory)
	out := HabitDTO{
		ID:                h.ID,
		Title:             h.Title,
		Description:       h.Description,
		Category:          h.Category,
		Frequency:         h.Frequency,
		TimeOfDay:         h.TimeOfDay,
		Source:            h.Source,
		CreatedAt:         h.CreatedAt.Format(time.RFC3339),
		Archived:          h.IsArchived(),
		CompletedToday:    habitstats.CompletedInPeriod(history, h.Frequency, today),
		CompletionHistory: make([]CompletionDTO, 0, len(history)),
		Stats:             habitstats.ComputeSince(history, h.Frequency, h.CreatedAt, today),
	}
	for _, c := range history {
		out.CompletionHistory = append(out.CompletionHistory, CompletionDTO{
			LocalDate: c.Date.Format(models.DateLayout),
			Note:      c.Note,
		})
	}
	return out
}
