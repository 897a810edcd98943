// Package store defines the persistence boundary for journal entries,
// habits and users, with an in-memory and a Postgres implementation.
package store

import (
	"context"
	"errors"
	"time"

	"mindlog/internal/models"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("already completed for this day")
	ErrAlreadyArchived  = errors.New("already archived")
	ErrEmailTaken       = errors.New("email already registered")
)

// JournalStore holds AI-processed journal entries. Entries are append-only
// apart from task completion and deletion.
type JournalStore interface {
	List(ctx context.Context, userID int) ([]models.JournalEntry, error)
	Get(ctx context.Context, userID int, id string) (models.JournalEntry, error)
	Create(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error)
	Delete(ctx context.Context, userID int, id string) error
	SetTaskCompleted(ctx context.Context, userID int, entryID, taskID string, done bool) error
}

// HabitStore owns habit mutations. Complete enforces at most one completion
// per habit per calendar day and returns ErrAlreadyCompleted otherwise.
type HabitStore interface {
	List(ctx context.Context, userID int, includeArchived bool) ([]models.Habit, error)
	Get(ctx context.Context, userID int, id string) (models.Habit, error)
	Create(ctx context.Context, habit models.Habit) (models.Habit, error)
	Complete(ctx context.Context, userID int, habitID string, c models.HabitCompletion) error
	Uncomplete(ctx context.Context, userID int, habitID string, day time.Time) error
	Archive(ctx context.Context, userID int, habitID string) error
	Delete(ctx context.Context, userID int, habitID string) error
}

type UserStore interface {
	Create(ctx context.Context, email, passwordHash string) (models.User, error)
	Get(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id int, p ProfileUpdate) error
}

// ProfileUpdate carries optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarID  *int
	Timezone  *string
}

func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.AvatarID == nil && p.Timezone == nil
}
