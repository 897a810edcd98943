package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"mindlog/internal/crypto"
	"mindlog/internal/models"
	"mindlog/internal/mood"
)

// NewPostgres returns stores backed by db. Free text and emails are sealed
// with box before they are written.
func NewPostgres(db *sqlx.DB, box *crypto.Box) Stores {
	return Stores{
		Journal: &PostgresJournalStore{db: db, box: box},
		Habits:  &PostgresHabitStore{db: db},
		Users:   &PostgresUserStore{db: db, box: box},
	}
}

type PostgresJournalStore struct {
	db  *sqlx.DB
	box *crypto.Box
}

type entryRow struct {
	ID            string    `db:"id"`
	UserID        int       `db:"user_id"`
	EntryDate     time.Time `db:"entry_date"`
	LocalDate     time.Time `db:"local_date"`
	Mood          string    `db:"mood"`
	Reflection    string    `db:"reflection"`
	ProgressNotes string    `db:"progress_notes"`
	BrainDump     string    `db:"brain_dump"`
	CreatedAt     time.Time `db:"created_at"`
}

type taskRow struct {
	EntryID     string `db:"entry_id"`
	ID          string `db:"id"`
	Title       string `db:"title"`
	IsCompleted bool   `db:"is_completed"`
	Priority    string `db:"priority"`
}

const entryColumns = `id, user_id, entry_date, local_date, mood, reflection, progress_notes, brain_dump, created_at`

func (s *PostgresJournalStore) toEntry(r entryRow) (models.JournalEntry, error) {
	e := models.JournalEntry{
		ID:                r.ID,
		UserID:            r.UserID,
		Date:              r.EntryDate,
		LocalDate:         models.DayOf(r.LocalDate),
		Mood:              mood.Parse(r.Mood),
		Reflection:        r.Reflection,
		ProgressNotes:     r.ProgressNotes,
		OriginalBrainDump: r.BrainDump,
		CreatedAt:         r.CreatedAt,
		ExtractedTasks:    []models.TaskItem{},
	}
	if err := s.box.OpenAll(&e.Reflection, &e.ProgressNotes, &e.OriginalBrainDump); err != nil {
		return models.JournalEntry{}, fmt.Errorf("decrypt entry %s: %w", r.ID, err)
	}
	return e, nil
}

func (s *PostgresJournalStore) List(ctx context.Context, userID int) ([]models.JournalEntry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id=$1 ORDER BY local_date DESC, entry_date DESC, created_at DESC`, userID); err != nil {
		return nil, err
	}

	var tasks []taskRow
	if err := s.db.SelectContext(ctx, &tasks, `
		SELECT t.entry_id, t.id, t.title, t.is_completed, t.priority
		FROM journal_tasks t JOIN journal_entries e ON e.id = t.entry_id
		WHERE e.user_id=$1
		ORDER BY t.entry_id, t.position`, userID); err != nil {
		return nil, err
	}
	byEntry := make(map[string][]models.TaskItem, len(rows))
	for _, t := range tasks {
		byEntry[t.EntryID] = append(byEntry[t.EntryID], t.item())
	}

	out := make([]models.JournalEntry, 0, len(rows))
	for _, r := range rows {
		e, err := s.toEntry(r)
		if err != nil {
			return nil, err
		}
		if ts, ok := byEntry[e.ID]; ok {
			e.ExtractedTasks = ts
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *PostgresJournalStore) Get(ctx context.Context, userID int, id string) (models.JournalEntry, error) {
	var r entryRow
	err := s.db.GetContext(ctx, &r, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 AND user_id=$2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, err
	}
	e, err := s.toEntry(r)
	if err != nil {
		return models.JournalEntry{}, err
	}

	var tasks []taskRow
	if err := s.db.SelectContext(ctx, &tasks,
		`SELECT entry_id, id, title, is_completed, priority FROM journal_tasks WHERE entry_id=$1 ORDER BY position`, id); err != nil {
		return models.JournalEntry{}, err
	}
	for _, t := range tasks {
		e.ExtractedTasks = append(e.ExtractedTasks, t.item())
	}
	return e, nil
}

func (s *PostgresJournalStore) Create(ctx context.Context, entry models.JournalEntry) (models.JournalEntry, error) {
	prepareEntry(&entry, time.Now())

	sealed := entryRow{
		Reflection:    entry.Reflection,
		ProgressNotes: entry.ProgressNotes,
		BrainDump:     entry.OriginalBrainDump,
	}
	if err := s.box.SealAll(&sealed.Reflection, &sealed.ProgressNotes, &sealed.BrainDump); err != nil {
		return models.JournalEntry{}, fmt.Errorf("encrypt entry: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.JournalEntry{}, err
	}
	defer tx.Rollback() // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.UserID, entry.Date, entry.LocalDate, entry.Mood.String(),
		sealed.Reflection, sealed.ProgressNotes, sealed.BrainDump, entry.CreatedAt); err != nil {
		return models.JournalEntry{}, err
	}

	if len(entry.ExtractedTasks) > 0 {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO journal_tasks (id, entry_id, position, title, is_completed, priority)
			VALUES ($1, $2, $3, $4, $5, $6)`)
		if err != nil {
			return models.JournalEntry{}, err
		}
		defer stmt.Close()
		for i, t := range entry.ExtractedTasks {
			if _, err := stmt.ExecContext(ctx, t.ID, entry.ID, i, t.Title, t.IsCompleted, string(t.Priority)); err != nil {
				return models.JournalEntry{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return models.JournalEntry{}, err
	}
	return entry, nil
}

func (s *PostgresJournalStore) Delete(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *PostgresJournalStore) SetTaskCompleted(ctx context.Context, userID int, entryID, taskID string, done bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_tasks t SET is_completed=$1
		FROM journal_entries e
		WHERE t.entry_id = e.id AND e.id=$2 AND e.user_id=$3 AND t.id=$4`,
		done, entryID, userID, taskID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (t taskRow) item() models.TaskItem {
	return models.TaskItem{ID: t.ID, Title: t.Title, IsCompleted: t.IsCompleted, Priority: models.Priority(t.Priority)}
}

type PostgresHabitStore struct {
	db *sqlx.DB
}

type habitRow struct {
	ID          string     `db:"id"`
	UserID      int        `db:"user_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Category    string     `db:"category"`
	Frequency   string     `db:"frequency"`
	TimeOfDay   string     `db:"time_of_day"`
	Source      string     `db:"source"`
	CreatedAt   time.Time  `db:"created_at"`
	ArchivedAt  *time.Time `db:"archived_at"`
}

type completionRow struct {
	HabitID   string    `db:"habit_id"`
	LocalDate time.Time `db:"local_date"`
	Note      string    `db:"note"`
}

const habitColumns = `id, user_id, title, description, category, frequency, time_of_day, source, created_at, archived_at`

func (r habitRow) habit() models.Habit {
	return models.Habit{
		ID:                r.ID,
		UserID:            r.UserID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          models.Category(r.Category),
		Frequency:         models.Frequency(r.Frequency),
		TimeOfDay:         models.TimeOfDay(r.TimeOfDay),
		Source:            models.Source(r.Source),
		CreatedAt:         r.CreatedAt,
		ArchivedAt:        r.ArchivedAt,
		CompletionHistory: []models.HabitCompletion{},
	}
}

func (s *PostgresHabitStore) List(ctx context.Context, userID int, includeArchived bool) ([]models.Habit, error) {
	where := "WHERE user_id=$1"
	if !includeArchived {
		where += " AND archived_at IS NULL"
	}
	var rows []habitRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+habitColumns+` FROM habits `+where+` ORDER BY created_at, id`, userID); err != nil {
		return nil, err
	}

	var completions []completionRow
	if err := s.db.SelectContext(ctx, &completions, `
		SELECT c.habit_id, c.local_date, c.note
		FROM habit_completions c JOIN habits h ON h.id = c.habit_id
		WHERE h.user_id=$1
		ORDER BY c.local_date DESC`, userID); err != nil {
		return nil, err
	}
	byHabit := make(map[string][]models.HabitCompletion, len(rows))
	for _, c := range completions {
		byHabit[c.HabitID] = append(byHabit[c.HabitID], models.HabitCompletion{Date: models.DayOf(c.LocalDate), Note: c.Note})
	}

	out := make([]models.Habit, 0, len(rows))
	for _, r := range rows {
		h := r.habit()
		if cs, ok := byHabit[h.ID]; ok {
			h.CompletionHistory = cs
		}
		out = append(out, h)
	}
	return out, nil
}

func (s *PostgresHabitStore) Get(ctx context.Context, userID int, id string) (models.Habit, error) {
	var r habitRow
	err := s.db.GetContext(ctx, &r, `SELECT `+habitColumns+` FROM habits WHERE id=$1 AND user_id=$2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}
	h := r.habit()

	var completions []completionRow
	if err := s.db.SelectContext(ctx, &completions,
		`SELECT habit_id, local_date, note FROM habit_completions WHERE habit_id=$1 ORDER BY local_date DESC`, id); err != nil {
		return models.Habit{}, err
	}
	for _, c := range completions {
		h.CompletionHistory = append(h.CompletionHistory, models.HabitCompletion{Date: models.DayOf(c.LocalDate), Note: c.Note})
	}
	return h, nil
}

func (s *PostgresHabitStore) Create(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if habit.ID == "" {
		habit.ID = uuid.NewString()
	}
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now().UTC()
	}
	habit.CompletionHistory = []models.HabitCompletion{}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		habit.ID, habit.UserID, habit.Title, habit.Description, string(habit.Category),
		string(habit.Frequency), string(habit.TimeOfDay), string(habit.Source), habit.CreatedAt, habit.ArchivedAt)
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (s *PostgresHabitStore) owned(ctx context.Context, userID int, habitID string) error {
	var ok bool
	if err := s.db.QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM habits WHERE id=$1 AND user_id=$2)`, habitID, userID).Scan(&ok); err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresHabitStore) Complete(ctx context.Context, userID int, habitID string, c models.HabitCompletion) error {
	if err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_completions (habit_id, local_date, note)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id, local_date) DO NOTHING`,
		habitID, models.DayOf(c.Date), c.Note)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrAlreadyCompleted
	}
	return nil
}

func (s *PostgresHabitStore) Uncomplete(ctx context.Context, userID int, habitID string, day time.Time) error {
	if err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM habit_completions WHERE habit_id=$1 AND local_date=$2`, habitID, models.DayOf(day))
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *PostgresHabitStore) Archive(ctx context.Context, userID int, habitID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE habits SET archived_at=NOW() WHERE id=$1 AND user_id=$2 AND archived_at IS NULL`, habitID, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		if err := s.owned(ctx, userID, habitID); err != nil {
			return err
		}
		return ErrAlreadyArchived
	}
	return nil
}

func (s *PostgresHabitStore) Delete(ctx context.Context, userID int, habitID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id=$1 AND user_id=$2`, habitID, userID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

type PostgresUserStore struct {
	db  *sqlx.DB
	box *crypto.Box
}

const userColumns = `id, email, email_blind_index, password_hash, created_at, first_name, last_name, avatar_id, timezone`

func (s *PostgresUserStore) Create(ctx context.Context, email, passwordHash string) (models.User, error) {
	sealed, err := s.box.Seal(email)
	if err != nil {
		return models.User{}, fmt.Errorf("encrypt email: %w", err)
	}
	var u models.User
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO users (email, email_blind_index, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, sealed, s.box.BlindIndex(email), passwordHash).StructScan(&u)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}
	u.Email = email
	return u, nil
}

func (s *PostgresUserStore) get(ctx context.Context, where string, arg any) (models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Email, err = s.box.Open(u.Email); err != nil {
		return models.User{}, fmt.Errorf("decrypt email: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) Get(ctx context.Context, id int) (models.User, error) {
	return s.get(ctx, "id=$1", id)
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.get(ctx, "email_blind_index=$1", s.box.BlindIndex(email))
}

func (s *PostgresUserStore) UpdateProfile(ctx context.Context, id int, p ProfileUpdate) error {
	if p.Empty() {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			avatar_id = COALESCE($3, avatar_id),
			timezone = COALESCE($4, timezone)
		WHERE id=$5`, p.FirstName, p.LastName, p.AvatarID, p.Timezone, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
