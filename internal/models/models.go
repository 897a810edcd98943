package models

import (
	"time"

	"mindlog/internal/mood"
)

// DateLayout is the wire format for calendar days (local_date).
const DateLayout = "2006-01-02"

type User struct {
	ID              int       `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`         // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"` // HMAC hash for searching
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	FirstName       *string   `db:"first_name" json:"first_name,omitempty"`
	LastName        *string   `db:"last_name" json:"last_name,omitempty"`
	AvatarID        *int      `db:"avatar_id" json:"avatar_id,omitempty"`
	Timezone        *string   `db:"timezone" json:"timezone,omitempty"`
}

// JournalEntry is an AI-processed brain dump. Reflection, ProgressNotes and
// OriginalBrainDump are encrypted in DB.
type JournalEntry struct {
	ID                string     `json:"id"`
	UserID            int        `json:"-"`
	Date              time.Time  `json:"date"`
	LocalDate         time.Time  `json:"local_date"` // calendar day, midnight UTC
	Mood              mood.Mood  `json:"mood"`
	Reflection        string     `json:"reflection"`
	ProgressNotes     string     `json:"progress_notes"`
	ExtractedTasks    []TaskItem `json:"extracted_tasks"`
	OriginalBrainDump string     `json:"original_brain_dump"`
	CreatedAt         time.Time  `json:"created_at"`
}

type TaskItem struct {
	ID          string   `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	IsCompleted bool     `db:"is_completed" json:"is_completed"`
	Priority    Priority `db:"priority" json:"priority"`
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Habit struct {
	ID                string            `json:"id"`
	UserID            int               `json:"-"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Category          Category          `json:"category"`
	Frequency         Frequency         `json:"frequency"`
	TimeOfDay         TimeOfDay         `json:"time_of_day"`
	Source            Source            `json:"source"`
	CreatedAt         time.Time         `json:"created_at"`
	ArchivedAt        *time.Time        `json:"archived_at,omitempty"`
	CompletionHistory []HabitCompletion `json:"completion_history"`
}

func (h Habit) IsArchived() bool { return h.ArchivedAt != nil }

// HabitCompletion marks a habit done for a calendar day, not an instant.
type HabitCompletion struct {
	Date time.Time `json:"local_date"`
	Note string    `json:"note,omitempty"`
}

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryFitness      Category = "fitness"
	CategoryMindfulness  Category = "mindfulness"
	CategoryProductivity Category = "productivity"
	CategoryLearning     Category = "learning"
	CategorySocial       Category = "social"
	CategoryCreativity   Category = "creativity"
	CategoryFinance      Category = "finance"
	CategoryOther        Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategoryFitness, CategoryMindfulness, CategoryProductivity,
		CategoryLearning, CategorySocial, CategoryCreativity, CategoryFinance, CategoryOther:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type TimeOfDay string

const (
	TimeOfDayMorning   TimeOfDay = "morning"
	TimeOfDayAfternoon TimeOfDay = "afternoon"
	TimeOfDayEvening   TimeOfDay = "evening"
	TimeOfDayAnytime   TimeOfDay = "anytime"
)

func (t TimeOfDay) Valid() bool {
	switch t {
	case TimeOfDayMorning, TimeOfDayAfternoon, TimeOfDayEvening, TimeOfDayAnytime:
		return true
	}
	return false
}

type Source string

const (
	SourceManual      Source = "manual"
	SourceAISuggested Source = "ai_suggested"
)

func (s Source) Valid() bool { return s == SourceManual || s == SourceAISuggested }

// DayOf truncates t to its calendar day, keeping t's own wall-clock date,
// and returns it as midnight UTC.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD local_date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
