// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/binding/conversation persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// The UNIQUE constraints on user_id in assistant_bindings and conversations
// enforce the one-binding, one-conversation-per-user cardinality.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id    TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

		CREATE TABLE IF NOT EXISTS assistant_bindings (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			assistant_id TEXT NOT NULL UNIQUE,
			user_id      TEXT NOT NULL UNIQUE REFERENCES users(user_id),
			label        TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bindings_user ON assistant_bindings(user_id);

		CREATE TABLE IF NOT EXISTS conversations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			thread_id    TEXT NOT NULL UNIQUE,
			user_id      TEXT NOT NULL UNIQUE REFERENCES users(user_id),
			assistant_id TEXT NOT NULL REFERENCES assistant_bindings(assistant_id),
			label        TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// constraintColumn reports whether the constraint error names the given column
func constraintColumn(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), column)
}

// CreateUser inserts a new user row.
// Returns ErrUserExists if the user id or email is already registered.
// The existence check and the insert run inside a single transaction so a
// crash mid-operation leaves no partial row.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id = ? OR email = ?`,
		user.UserID, user.Email,
	).Scan(&exists)
	if err == nil {
		return ErrUserExists
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking user existence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (user_id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		user.UserID,
		user.Name,
		user.Email,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing user insert: %w", err)
	}

	s.logger.Debug("created user", "user_id", user.UserID)
	return nil
}

// GetUser retrieves a user by id.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*User, error) {
	return s.getUserWhere(ctx, "user_id = ?", userID)
}

// GetUserByEmail retrieves a user by email.
// Returns ErrNotFound if no user has the given email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.getUserWhere(ctx, "email = ?", email)
}

func (s *SQLiteStore) getUserWhere(ctx context.Context, where string, arg any) (*User, error) {
	query := `SELECT user_id, name, email, created_at FROM users WHERE ` + where

	var user User
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &user, nil
}
