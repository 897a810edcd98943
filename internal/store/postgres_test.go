package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"mindlog/internal/crypto"
	"mindlog/internal/db"
	"mindlog/internal/models"
	"mindlog/internal/mood"
)

// newPostgresStores connects to DATABASE_URL and migrates it. Tests that
// need it are skipped when no database is configured.
func newPostgresStores(t *testing.T) (Stores, *sqlx.DB) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	conn, err := sqlx.Open("pgx", url)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.RunMigrations(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	box, err := crypto.NewBox([]byte(strings.Repeat("e", 32)), []byte(strings.Repeat("b", 32)))
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return NewPostgres(conn, box), conn
}

// newPostgresUser signs up a throwaway user so rows satisfy the users FK.
func newPostgresUser(t *testing.T, s Stores) models.User {
	t.Helper()
	u, err := s.Users.Create(context.Background(), uuid.NewString()+"@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestPostgresUsers(t *testing.T) {
	s, conn := newPostgresStores(t)
	ctx := context.Background()

	email := uuid.NewString() + "@example.com"
	u, err := s.Users.Create(ctx, email, "hash")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Users.Create(ctx, email, "hash"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	var stored string
	if err := conn.GetContext(ctx, &stored, `SELECT email FROM users WHERE id=$1`, u.ID); err != nil {
		t.Fatalf("read raw email: %v", err)
	}
	if stored == email {
		t.Fatalf("email stored in plaintext")
	}

	tz := "Europe/Berlin"
	if err := s.Users.UpdateProfile(ctx, u.ID, ProfileUpdate{Timezone: &tz}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID || got.Email != email || got.Timezone == nil || *got.Timezone != tz {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := s.Users.Get(ctx, -1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresJournal(t *testing.T) {
	s, conn := newPostgresStores(t)
	ctx := context.Background()
	u := newPostgresUser(t, s)

	est := time.FixedZone("EST", -5*3600)
	e, err := s.Journal.Create(ctx, models.JournalEntry{
		UserID:            u.ID,
		Date:              time.Date(2025, time.March, 12, 23, 30, 0, 0, est),
		Mood:              mood.Calm,
		Reflection:        "slow evening",
		OriginalBrainDump: "so many thoughts",
		ExtractedTasks: []models.TaskItem{
			{Title: "water plants"},
			{Title: "renew passport", Priority: models.PriorityHigh},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var raw string
	if err := conn.GetContext(ctx, &raw, `SELECT brain_dump FROM journal_entries WHERE id=$1`, e.ID); err != nil {
		t.Fatalf("read raw entry: %v", err)
	}
	if raw == "so many thoughts" {
		t.Fatalf("brain dump stored in plaintext")
	}

	list, err := s.Journal.List(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	got := list[0]
	if got.OriginalBrainDump != "so many thoughts" || got.Reflection != "slow evening" || got.Mood != mood.Calm {
		t.Fatalf("entry not decrypted: %+v", got)
	}
	if day := got.LocalDate.Format(models.DateLayout); day != "2025-03-12" {
		t.Fatalf("local date = %s, want 2025-03-12", day)
	}
	if len(got.ExtractedTasks) != 2 || got.ExtractedTasks[0].Title != "water plants" ||
		got.ExtractedTasks[0].Priority != models.PriorityMedium {
		t.Fatalf("tasks not stored in order with defaults: %+v", got.ExtractedTasks)
	}

	if err := s.Journal.SetTaskCompleted(ctx, u.ID, e.ID, got.ExtractedTasks[1].ID, true); err != nil {
		t.Fatalf("set task completed: %v", err)
	}
	if err := s.Journal.SetTaskCompleted(ctx, u.ID, e.ID, "missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown task, got %v", err)
	}
	one, err := s.Journal.Get(ctx, u.ID, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !one.ExtractedTasks[1].IsCompleted {
		t.Fatalf("task completion not persisted")
	}

	if err := s.Journal.Delete(ctx, u.ID, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Journal.Get(ctx, u.ID, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresHabits(t *testing.T) {
	s, _ := newPostgresStores(t)
	ctx := context.Background()
	u := newPostgresUser(t, s)
	other := newPostgresUser(t, s)

	h, err := s.Habits.Create(ctx, models.Habit{
		UserID:    u.ID,
		Title:     "Meditate",
		Category:  models.CategoryMindfulness,
		Frequency: models.FrequencyDaily,
		TimeOfDay: models.TimeOfDayMorning,
		Source:    models.SourceManual,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	morning := time.Date(2025, time.May, 2, 7, 0, 0, 0, time.UTC)
	if err := s.Habits.Complete(ctx, u.ID, h.ID, models.HabitCompletion{Date: morning, Note: "10 min"}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	err = s.Habits.Complete(ctx, u.ID, h.ID, models.HabitCompletion{Date: morning.Add(10 * time.Hour)})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if err := s.Habits.Complete(ctx, other.ID, h.ID, models.HabitCompletion{Date: morning}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's habit, got %v", err)
	}

	got, err := s.Habits.Get(ctx, u.ID, h.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.CompletionHistory) != 1 || !got.CompletionHistory[0].Date.Equal(models.DayOf(morning)) ||
		got.CompletionHistory[0].Note != "10 min" {
		t.Fatalf("unexpected history: %+v", got.CompletionHistory)
	}

	if err := s.Habits.Uncomplete(ctx, u.ID, h.ID, morning); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	if err := s.Habits.Uncomplete(ctx, u.ID, h.ID, morning); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second uncomplete, got %v", err)
	}

	if err := s.Habits.Archive(ctx, u.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound archiving unknown habit, got %v", err)
	}
	if err := s.Habits.Archive(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if err := s.Habits.Archive(ctx, u.ID, h.ID); !errors.Is(err, ErrAlreadyArchived) {
		t.Fatalf("expected ErrAlreadyArchived, got %v", err)
	}
	if active, _ := s.Habits.List(ctx, u.ID, false); len(active) != 0 {
		t.Fatalf("archived habit listed as active")
	}
	if all, _ := s.Habits.List(ctx, u.ID, true); len(all) != 1 || !all[0].IsArchived() {
		t.Fatalf("expected archived habit when including archived, got %+v", all)
	}

	if err := s.Habits.Delete(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Habits.Delete(ctx, u.ID, h.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
