package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"mindlog/internal/models"
	"mindlog/internal/mood"
)

func TestMemoryHabitCompleteOncePerDay(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().Habits

	h, err := s.Create(ctx, models.Habit{UserID: 1, Title: "Meditate", Frequency: models.FrequencyDaily})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	morning := time.Date(2025, time.May, 2, 7, 0, 0, 0, time.UTC)
	if err := s.Complete(ctx, 1, h.ID, models.HabitCompletion{Date: morning}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	err = s.Complete(ctx, 1, h.ID, models.HabitCompletion{Date: morning.Add(10 * time.Hour)})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	got, err := s.Get(ctx, 1, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.CompletionHistory) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(got.CompletionHistory))
	}
	if !got.CompletionHistory[0].Date.Equal(models.DayOf(morning)) {
		t.Fatalf("completion not stored as a calendar day: %v", got.CompletionHistory[0].Date)
	}

	if err := s.Uncomplete(ctx, 1, h.ID, morning); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if err := s.Complete(ctx, 1, h.ID, models.HabitCompletion{Date: morning}); err != nil {
		t.Fatalf("complete after undo: %v", err)
	}
}

func TestMemoryHabitOwnershipAndArchive(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().Habits

	h, _ := s.Create(ctx, models.Habit{UserID: 1, Title: "Read"})
	other, _ := s.Create(ctx, models.Habit{UserID: 2, Title: "Run"})

	if _, err := s.Get(ctx, 1, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's habit, got %v", err)
	}
	if err := s.Complete(ctx, 1, other.ID, models.HabitCompletion{Date: time.Now()}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound completing another user's habit, got %v", err)
	}

	if err := s.Archive(ctx, 1, h.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := s.Archive(ctx, 1, h.ID); !errors.Is(err, ErrAlreadyArchived) {
		t.Fatalf("expected ErrAlreadyArchived, got %v", err)
	}

	active, _ := s.List(ctx, 1, false)
	if len(active) != 0 {
		t.Fatalf("archived habit listed as active")
	}
	all, _ := s.List(ctx, 1, true)
	if len(all) != 1 || !all[0].IsArchived() {
		t.Fatalf("expected archived habit when including archived, got %+v", all)
	}

	if err := s.Delete(ctx, 1, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, 1, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().Journal

	e, err := s.Create(ctx, models.JournalEntry{
		UserID:     7,
		Mood:       mood.Calm,
		Reflection: "slow morning",
		ExtractedTasks: []models.TaskItem{
			{Title: "water plants"},
			{Title: "renew passport", Priority: models.PriorityHigh},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" || e.Date.IsZero() {
		t.Fatalf("id and date should be assigned: %+v", e)
	}
	if e.ExtractedTasks[0].ID == "" || e.ExtractedTasks[0].Priority != models.PriorityMedium {
		t.Fatalf("task defaults not applied: %+v", e.ExtractedTasks[0])
	}

	taskID := e.ExtractedTasks[1].ID
	if err := s.SetTaskCompleted(ctx, 7, e.ID, taskID, true); err != nil {
		t.Fatalf("set task completed: %v", err)
	}
	if err := s.SetTaskCompleted(ctx, 7, e.ID, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown task, got %v", err)
	}

	got, err := s.Get(ctx, 7, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.ExtractedTasks[1].IsCompleted {
		t.Fatalf("task completion not persisted")
	}
	// Mutating a returned copy must not leak into the store.
	got.ExtractedTasks[0].Title = "changed"
	again, _ := s.Get(ctx, 7, e.ID)
	if again.ExtractedTasks[0].Title != "water plants" {
		t.Fatalf("store returned shared task slice")
	}

	if _, err := s.Get(ctx, 8, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	list, _ := s.List(ctx, 7)
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	if err := s.Delete(ctx, 7, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list, _ := s.List(ctx, 7); len(list) != 0 {
		t.Fatalf("entry not deleted")
	}
}

func TestMemoryJournalLocalDate(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().Journal

	est := time.FixedZone("EST", -5*3600)
	e, err := s.Create(ctx, models.JournalEntry{UserID: 1, Date: time.Date(2025, time.March, 12, 23, 30, 0, 0, est)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)
	if !e.LocalDate.Equal(want) {
		t.Fatalf("local date = %v, want %v", e.LocalDate, want)
	}

	// An explicit day wins over the timestamp's own date.
	e, _ = s.Create(ctx, models.JournalEntry{
		UserID:    1,
		Date:      time.Date(2025, time.March, 13, 1, 0, 0, 0, time.UTC),
		LocalDate: want,
	})
	if !e.LocalDate.Equal(want) {
		t.Fatalf("explicit local date replaced: %v", e.LocalDate)
	}
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().Users

	u, err := s.Create(ctx, "sam@example.com", "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "sam@example.com", "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	name := "Sam"
	if err := s.UpdateProfile(ctx, u.ID, ProfileUpdate{FirstName: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.FirstName == nil || *got.FirstName != "Sam" {
		t.Fatalf("profile not updated: %+v", got)
	}
	if _, err := s.Get(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
