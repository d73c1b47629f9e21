package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	sqliteTimeLayout = time.RFC3339Nano
	sqliteDayLayout  = "2006-01-02"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateReminder(ctx context.Context, in Reminder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reminders (id, title, notes, due_at, completed, priority, category_id, frequency, group_id, notification_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Notes, mustTime(in.DueAt), boolInt(in.Completed), in.Priority,
		nullString(in.CategoryID), in.Frequency, nullString(in.GroupID), in.NotificationID, mustTime(in.CreatedAt),
	)
	if err != nil {
		return err
	}
	if err := insertExclusions(ctx, tx, in.ID, in.ExcludedDays); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetReminder(ctx context.Context, id string) (Reminder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, notes, due_at, completed, priority, category_id, frequency, group_id, notification_id, created_at
		FROM reminders WHERE id = ?`, id)
	item, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Reminder{}, ErrNotFound
		}
		return Reminder{}, err
	}
	days, err := r.listExclusions(ctx, id)
	if err != nil {
		return Reminder{}, err
	}
	item.ExcludedDays = days
	return item, nil
}

func (r *SQLiteRepository) UpdateReminder(ctx context.Context, in Reminder) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE reminders
		SET title = ?, notes = ?, due_at = ?, completed = ?, priority = ?, category_id = ?, frequency = ?, group_id = ?, notification_id = ?
		WHERE id = ?`,
		in.Title, in.Notes, mustTime(in.DueAt), boolInt(in.Completed), in.Priority,
		nullString(in.CategoryID), in.Frequency, nullString(in.GroupID), in.NotificationID, in.ID,
	)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exclusions WHERE reminder_id = ?`, in.ID); err != nil {
		return err
	}
	if err := insertExclusions(ctx, tx, in.ID, in.ExcludedDays); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, filter ReminderListFilter) ([]Reminder, error) {
	query := `SELECT id, title, notes, due_at, completed, priority, category_id, frequency, group_id, notification_id, created_at FROM reminders`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.CategoryID != "" {
		clauses = append(clauses, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if filter.Frequency != "" {
		clauses = append(clauses, "frequency = ?")
		args = append(args, filter.Frequency)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY due_at ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Reminder, 0)
	for rows.Next() {
		item, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		days, exErr := r.listExclusions(ctx, out[i].ID)
		if exErr != nil {
			return nil, exErr
		}
		out[i].ExcludedDays = days
	}
	return out, nil
}

// AddExclusion records one suppressed calendar day for a series. Re-adding an
// already excluded day is a no-op.
func (r *SQLiteRepository) AddExclusion(ctx context.Context, reminderID string, day time.Time) error {
	if _, err := r.GetReminder(ctx, reminderID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO exclusions (reminder_id, day) VALUES (?, ?)`,
		reminderID, day.Format(sqliteDayLayout),
	)
	return err
}

func (r *SQLiteRepository) listExclusions(ctx context.Context, reminderID string) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT day FROM exclusions WHERE reminder_id = ? ORDER BY day ASC`, reminderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		day, err := time.Parse(sqliteDayLayout, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, day)
	}
	return out, rows.Err()
}

func insertExclusions(ctx context.Context, tx *sql.Tx, reminderID string, days []time.Time) error {
	for _, day := range days {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO exclusions (reminder_id, day) VALUES (?, ?)`,
			reminderID, day.Format(sqliteDayLayout),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, in Category) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Name, in.Color, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, color, created_at FROM categories WHERE id = ?`, id)
	item, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Category{}, ErrNotFound
		}
		return Category{}, err
	}
	return item, nil
}

// DeleteCategory nullifies the category reference on dependent reminders
// before removing the row.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE reminders SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, filter CategoryListFilter) ([]Category, error) {
	args := make([]any, 0, 2)
	query := `SELECT id, name, color, created_at FROM categories ORDER BY name ASC` + applyPagination(&args, filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		item, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetSettings(ctx context.Context) (Settings, error) {
	row := r.db.QueryRowContext(ctx, `SELECT notifications_enabled, paused_until FROM settings WHERE id = 1`)
	var enabled int
	var paused sql.NullString
	if err := row.Scan(&enabled, &paused); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{NotificationsEnabled: true}, nil
		}
		return Settings{}, err
	}
	pausedUntil, err := parseNullableTime(paused)
	if err != nil {
		return Settings{}, err
	}
	return Settings{NotificationsEnabled: enabled == 1, PausedUntil: pausedUntil}, nil
}

func (r *SQLiteRepository) SaveSettings(ctx context.Context, in Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, notifications_enabled, paused_until) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET notifications_enabled = excluded.notifications_enabled, paused_until = excluded.paused_until`,
		boolInt(in.NotificationsEnabled), nullTime(in.PausedUntil),
	)
	return err
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(s scanner) (Reminder, error) {
	var out Reminder
	var due string
	var completed int
	var category sql.NullString
	var group sql.NullString
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Notes, &due, &completed, &out.Priority, &category, &out.Frequency, &group, &out.NotificationID, &created); err != nil {
		return Reminder{}, err
	}
	dueAt, err := parseRequiredTime(due)
	if err != nil {
		return Reminder{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Reminder{}, err
	}
	out.DueAt = dueAt
	out.CreatedAt = createdAt
	out.Completed = completed == 1
	out.CategoryID = category.String
	out.GroupID = group.String
	return out, nil
}

func scanCategory(s scanner) (Category, error) {
	var out Category
	var created string
	if err := s.Scan(&out.ID, &out.Name, &out.Color, &created); err != nil {
		return Category{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Category{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
