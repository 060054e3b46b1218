// Package storage keeps the review history in SQLite.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/conorfennell/flashdeck/internal/domain"
	"github.com/conorfennell/flashdeck/internal/knol"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and applies pending migrations.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &DB{conn: conn}, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(slogGooseLogger{})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, conn, "migrations")
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RecordReviews stores the reviews of a sitting in a single transaction.
func (db *DB) RecordReviews(ctx context.Context, reviews []domain.ReviewLog) error {
	if len(reviews) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reviews (session_id, card_hash, front, grade, reviewed_at, interval_days, easiness, due)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reviews {
		_, err := stmt.ExecContext(ctx,
			r.SessionID,
			knol.Hash(r.Front, r.Back),
			r.Front,
			int(r.Grade),
			r.ReviewedAt,
			int(r.Interval),
			float64(r.Easiness),
			int64(r.Due),
		)
		if err != nil {
			return fmt.Errorf("failed to insert review for %q: %w", r.Front, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reviews: %w", err)
	}
	return nil
}

// Summary aggregates the whole review history.
type Summary struct {
	Sessions int
	Reviews  int
	ByGrade  map[domain.Grade]int
}

// Summarize returns review counts overall, per sitting and per grade.
func (db *DB) Summarize(ctx context.Context) (Summary, error) {
	s := Summary{ByGrade: make(map[domain.Grade]int)}

	row := db.conn.QueryRowContext(ctx, `SELECT COUNT(DISTINCT session_id), COUNT(*) FROM reviews`)
	if err := row.Scan(&s.Sessions, &s.Reviews); err != nil {
		return Summary{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT grade, COUNT(*) FROM reviews GROUP BY grade`)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count grades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var grade, count int
		if err := rows.Scan(&grade, &count); err != nil {
			return Summary{}, fmt.Errorf("failed to scan grade row: %w", err)
		}
		s.ByGrade[domain.Grade(grade)] = count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}
	return s, nil
}

// slogGooseLogger routes goose output through slog.
type slogGooseLogger struct{}

func (slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...), "component", "migrations")
}

func (slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrations")
}
