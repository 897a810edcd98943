package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mindlog/internal/models"
)

// Stores bundles the three stores a server needs.
type Stores struct {
	Journal JournalStore
	Habits  HabitStore
	Users   UserStore
}

// NewMemory returns empty in-memory stores, used for tests and for running
// without a database.
func NewMemory() Stores {
	return Stores{
		Journal: &MemoryJournalStore{entries: make(map[string]models.JournalEntry)},
		Habits:  &MemoryHabitStore{habits: make(map[string]models.Habit)},
		Users:   &MemoryUserStore{users: make(map[int]models.User)},
	}
}

type MemoryJournalStore struct {
	mu      sync.RWMutex
	entries map[string]models.JournalEntry
}

func (s *MemoryJournalStore) List(_ context.Context, userID int) ([]models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.JournalEntry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, cloneEntry(e))
		}
	}
	// map order is random; keep List deterministic like the SQL store
	slices.SortFunc(out, func(a, b models.JournalEntry) int {
		if c := b.LocalDate.Compare(a.LocalDate); c != 0 {
			return c
		}
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *MemoryJournalStore) Get(_ context.Context, userID int, id string) (models.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return models.JournalEntry{}, ErrNotFound
	}
	return cloneEntry(e), nil
}

func (s *MemoryJournalStore) Create(_ context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	prepareEntry(&entry, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = cloneEntry(entry)
	return entry, nil
}

func (s *MemoryJournalStore) Delete(_ context.Context, userID int, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryJournalStore) SetTaskCompleted(_ context.Context, userID int, entryID, taskID string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entryID]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	for i := range e.ExtractedTasks {
		if e.ExtractedTasks[i].ID == taskID {
			e.ExtractedTasks[i].IsCompleted = done
			return nil
		}
	}
	return ErrNotFound
}

type MemoryHabitStore struct {
	mu     sync.RWMutex
	habits map[string]models.Habit
}

func (s *MemoryHabitStore) List(_ context.Context, userID int, includeArchived bool) ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Habit{}
	for _, h := range s.habits {
		if h.UserID != userID || (h.IsArchived() && !includeArchived) {
			continue
		}
		out = append(out, cloneHabit(h))
	}
	slices.SortFunc(out, func(a, b models.Habit) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryHabitStore) Get(_ context.Context, userID int, id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.habits[id]
	if !ok || h.UserID != userID {
		return models.Habit{}, ErrNotFound
	}
	return cloneHabit(h), nil
}

func (s *MemoryHabitStore) Create(_ context.Context, habit models.Habit) (models.Habit, error) {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}
	habit.CompletionHistory = []models.HabitCompletion{}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[habit.ID] = cloneHabit(habit)
	return habit, nil
}

func (s *MemoryHabitStore) Complete(_ context.Context, userID int, habitID string, c models.HabitCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	day := models.DayOf(c.Date)
	for _, existing := range h.CompletionHistory {
		if existing.Date.Equal(day) {
			return ErrAlreadyCompleted
		}
	}
	h.CompletionHistory = append(h.CompletionHistory, models.HabitCompletion{Date: day, Note: c.Note})
	s.habits[habitID] = h
	return nil
}

func (s *MemoryHabitStore) Uncomplete(_ context.Context, userID int, habitID string, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	d := models.DayOf(day)
	i := slices.IndexFunc(h.CompletionHistory, func(c models.HabitCompletion) bool { return c.Date.Equal(d) })
	if i < 0 {
		return ErrNotFound
	}
	h.CompletionHistory = slices.Delete(h.CompletionHistory, i, i+1)
	s.habits[habitID] = h
	return nil
}

func (s *MemoryHabitStore) Archive(_ context.Context, userID int, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	if h.IsArchived() {
		return ErrAlreadyArchived
	}
	now := time.Now().UTC()
	h.ArchivedAt = &now
	s.habits[habitID] = h
	return nil
}

func (s *MemoryHabitStore) Delete(_ context.Context, userID int, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.habits[habitID]
	if !ok || h.UserID != userID {
		return ErrNotFound
	}
	delete(s.habits, habitID)
	return nil
}

type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]models.User
}

func (s *MemoryUserStore) Create(_ context.Context, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return models.User{}, ErrEmailTaken
		}
	}
	s.nextID++
	u := models.User{ID: s.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryUserStore) Get(_ context.Context, id int) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id int, p ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	if p.FirstName != nil {
		u.FirstName = p.FirstName
	}
	if p.LastName != nil {
		u.LastName = p.LastName
	}
	if p.AvatarID != nil {
		u.AvatarID = p.AvatarID
	}
	if p.Timezone != nil {
		u.Timezone = p.Timezone
	}
	s.users[id] = u
	return nil
}

// prepareEntry fills IDs and timestamps the caller left empty.
func prepareEntry(e *models.JournalEntry, now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now.UTC()
	}
	if e.Date.IsZero() {
		e.Date = e.CreatedAt
	}
	// the day as the writer saw it, before any zone conversion on read
	if e.LocalDate.IsZero() {
		e.LocalDate = e.Date
	}
	e.LocalDate = models.DayOf(e.LocalDate)
	if e.ExtractedTasks == nil {
		e.ExtractedTasks = []models.TaskItem{}
	}
	for i := range e.ExtractedTasks {
		if e.ExtractedTasks[i].ID == "" {
			e.ExtractedTasks[i].ID = uuid.NewString()
		}
		if !e.ExtractedTasks[i].Priority.Valid() {
			e.ExtractedTasks[i].Priority = models.PriorityMedium
		}
	}
}

func cloneEntry(e models.JournalEntry) models.JournalEntry {
	e.ExtractedTasks = slices.Clone(e.ExtractedTasks)
	if e.ExtractedTasks == nil {
		e.ExtractedTasks = []models.TaskItem{}
	}
	return e
}

func cloneHabit(h models.Habit) models.Habit {
	h.CompletionHistory = slices.Clone(h.CompletionHistory)
	if h.CompletionHistory == nil {
		h.CompletionHistory = []models.HabitCompletion{}
	}
	if h.ArchivedAt != nil {
		t := *h.ArchivedAt
		h.ArchivedAt = &t
	}
	return h
}
