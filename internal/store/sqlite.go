package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"countdown/internal/logger"
	"countdown/pkg/models"
)

// DBFile is the SQLite database name inside the data directory.
const DBFile = "countdown.db"

// SQLiteStore keeps events and settings in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if missing) the database in dir and migrates it.
func OpenSQLite(ctx context.Context, dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	// One writer at a time; keeps modernc from reporting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debugf("sqlite store at %s", path)
	return &SQLiteStore{db: db}, nil
}

// Migrate creates the schema. Safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			target_date TEXT NOT NULL,
			is_all_day INTEGER NOT NULL DEFAULT 0,
			color_id INTEGER NOT NULL DEFAULT 0,
			emoji TEXT,
			notify_day_before INTEGER NOT NULL DEFAULT 0,
			notify_hour_before INTEGER NOT NULL DEFAULT 0,
			notify_morning_of INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			completed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			is_pro INTEGER NOT NULL DEFAULT 0,
			widget_policy TEXT NOT NULL,
			post_due_display TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_target_date ON events(target_date);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a SQL transaction.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// LoadEvents returns events in their saved order.
func (s *SQLiteStore) LoadEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, target_date, is_all_day, color_id, emoji,
			notify_day_before, notify_hour_before, notify_morning_of,
			created_at, updated_at, completed_at
		FROM events
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("events query: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("events rows: %w", err)
	}
	return events, nil
}

// SaveEvents replaces the whole collection in one transaction.
func (s *SQLiteStore) SaveEvents(ctx context.Context, events []models.Event) error {
	defer logger.Timer("save events")()
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
			return fmt.Errorf("events clear: %w", err)
		}
		for i, e := range events {
			var completed *string
			if e.CompletedAt != nil {
				v := formatTime(*e.CompletedAt)
				completed = &v
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO events (
					id, position, title, target_date, is_all_day, color_id, emoji,
					notify_day_before, notify_hour_before, notify_morning_of,
					created_at, updated_at, completed_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, e.ID, i, e.Title, formatTime(e.TargetDate), boolToInt(e.IsAllDay), e.ColorID, e.Emoji,
				boolToInt(e.NotifyPolicy.OneDayBefore), boolToInt(e.NotifyPolicy.OneHourBefore), boolToInt(e.NotifyPolicy.MorningOfDay),
				formatTime(e.CreatedAt), formatTime(e.UpdatedAt), completed)
			if err != nil {
				return fmt.Errorf("event insert %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// LoadSettings returns the stored settings, or the defaults when none exist.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (models.Settings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT is_pro, widget_policy, post_due_display FROM settings WHERE key = 'app'
	`)
	var (
		isPro           int
		widget, postDue string
	)
	if err := row.Scan(&isPro, &widget, &postDue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultSettings(), nil
		}
		return models.DefaultSettings(), fmt.Errorf("settings scan: %w", err)
	}
	st := models.Settings{
		IsPro:                  isPro != 0,
		WidgetAutoSelectPolicy: models.WidgetSelectPolicy(widget),
		PostDueDisplay:         models.PostDueDisplayPolicy(postDue),
	}
	st.Normalize()
	return st, nil
}

// SaveSettings upserts the settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, st models.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, is_pro, widget_policy, post_due_display)
		VALUES ('app', ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			is_pro = excluded.is_pro,
			widget_policy = excluded.widget_policy,
			post_due_display = excluded.post_due_display
	`, boolToInt(st.IsPro), string(st.WidgetAutoSelectPolicy), string(st.PostDueDisplay))
	if err != nil {
		return fmt.Errorf("settings upsert: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanEvent(rows *sql.Rows) (models.Event, error) {
	var (
		e                                      models.Event
		target, created, updated               string
		emoji, completed                       sql.NullString
		allDay, dayBefore, hourBefore, morning int
	)
	if err := rows.Scan(&e.ID, &e.Title, &target, &allDay, &e.ColorID, &emoji,
		&dayBefore, &hourBefore, &morning, &created, &updated, &completed); err != nil {
		return e, fmt.Errorf("event scan: %w", err)
	}

	var err error
	if e.TargetDate, err = parseTime(target); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, err
	}
	if completed.Valid {
		t, err := parseTime(completed.String)
		if err != nil {
			return e, err
		}
		e.CompletedAt = &t
	}
	if emoji.Valid {
		v := emoji.String
		e.Emoji = &v
	}
	e.IsAllDay = allDay != 0
	e.NotifyPolicy = models.NotificationPolicy{
		OneDayBefore:  dayBefore != 0,
		OneHourBefore: hourBefore != 0,
		MorningOfDay:  morning != 0,
	}
	return e, nil
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
