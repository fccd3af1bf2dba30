package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joescharf/sprint/internal/board"
	"github.com/joescharf/sprint/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// dateOnly is the storage layout for iteration boundaries.
const dateOnly = "2006-01-02"

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all DB access through Go's connection pool.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var applied int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullIfEmpty maps "" to NULL for nullable text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SaveBoard replaces the stored board wholesale inside one transaction.
// The board is the unit of persistence; partial writes would leave
// iterations and issues out of sync.
func (s *SQLiteStore) SaveBoard(ctx context.Context, b *board.Board) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM issues"); err != nil {
		return fmt.Errorf("clear issues: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM iterations"); err != nil {
		return fmt.Errorf("clear iterations: %w", err)
	}

	for pos, it := range b.Iterations() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO iterations (name, start_date, end_date, goal, position)
			VALUES (?, ?, ?, ?, ?)`,
			it.Name, it.StartDate.UTC().Format(dateOnly), it.EndDate.UTC().Format(dateOnly),
			it.Goal, pos,
		)
		if err != nil {
			return fmt.Errorf("save iteration %s: %w", it.Name, err)
		}
	}

	for pos, issue := range b.AllIssues() {
		labels, err := json.Marshal(issue.Labels)
		if err != nil {
			return fmt.Errorf("marshal labels for %s: %w", issue.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO issues (id, title, description, status, type, priority,
				assignee, author, iteration, labels, story_points,
				created_at, updated_at, closed_at, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			issue.ID, issue.Title, issue.Description,
			string(issue.Status), string(issue.Type), string(issue.Priority),
			nullIfEmpty(issue.Assignee), nullIfEmpty(issue.Author), nullIfEmpty(issue.Iteration),
			string(labels), issue.StoryPoints,
			issue.CreatedAt.UTC(), issue.UpdatedAt.UTC(), issue.ClosedAt, pos,
		)
		if err != nil {
			return fmt.Errorf("save issue %s: %w", issue.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadBoard reconstructs the board from storage. A fresh database yields an
// empty board, not an error.
func (s *SQLiteStore) LoadBoard(ctx context.Context) (*board.Board, error) {
	b := board.New()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, start_date, end_date, goal FROM iterations ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("load iterations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var name, startStr, endStr, goal string
		if err := rows.Scan(&name, &startStr, &endStr, &goal); err != nil {
			return nil, fmt.Errorf("scan iteration: %w", err)
		}
		start, err := time.ParseInLocation(dateOnly, startStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse start date for %s: %w", name, err)
		}
		end, err := time.ParseInLocation(dateOnly, endStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse end date for %s: %w", name, err)
		}
		if _, err := b.CreateIteration(name, start, end, goal); err != nil {
			return nil, fmt.Errorf("restore iteration %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate iterations: %w", err)
	}

	issueRows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, type, priority,
			assignee, author, iteration, labels, story_points,
			created_at, updated_at, closed_at
		FROM issues ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}
	defer func() { _ = issueRows.Close() }()

	for issueRows.Next() {
		issue := &models.Issue{}
		var status, issueType, priority, labelsJSON string
		var assignee, author, iteration sql.NullString
		var closedAt sql.NullTime

		if err := issueRows.Scan(&issue.ID, &issue.Title, &issue.Description,
			&status, &issueType, &priority,
			&assignee, &author, &iteration, &labelsJSON, &issue.StoryPoints,
			&issue.CreatedAt, &issue.UpdatedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}

		issue.Status = models.IssueStatus(status)
		issue.Type = models.IssueType(issueType)
		issue.Priority = models.IssuePriority(priority)
		issue.Assignee = assignee.String
		issue.Author = author.String
		issue.Iteration = iteration.String
		if closedAt.Valid {
			t := closedAt.Time.UTC()
			issue.ClosedAt = &t
		}
		issue.CreatedAt = issue.CreatedAt.UTC()
		issue.UpdatedAt = issue.UpdatedAt.UTC()
		if err := json.Unmarshal([]byte(labelsJSON), &issue.Labels); err != nil {
			return nil, fmt.Errorf("unmarshal labels for %s: %w", issue.ID, err)
		}

		if err := b.AddIssue(issue); err != nil {
			return nil, fmt.Errorf("restore issue %s: %w", issue.ID, err)
		}
	}
	if err := issueRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issues: %w", err)
	}

	return b, nil
}
