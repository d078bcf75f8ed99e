// ABOUTME: Assistant binding store operations
// ABOUTME: Enforces one binding per user and global uniqueness of remote assistant handles

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateBinding inserts a new assistant binding and fills in the generated row id.
// Returns ErrBindingExists if the user already has a binding, and
// ErrDuplicateAssistant if the remote handle is already registered to someone.
func (s *SQLiteStore) CreateBinding(ctx context.Context, binding *AssistantBinding) error {
	query := `
		INSERT INTO assistant_bindings (assistant_id, user_id, label, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		binding.AssistantID,
		binding.UserID,
		binding.Label,
		binding.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			if constraintColumn(err, "assistant_bindings.user_id") {
				return ErrBindingExists
			}
			return ErrDuplicateAssistant
		}
		return fmt.Errorf("inserting binding: %w", err)
	}

	binding.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting binding id: %w", err)
	}

	s.logger.Debug("created binding",
		"id", binding.ID,
		"user_id", binding.UserID,
		"assistant_id", binding.AssistantID)
	return nil
}

// GetBindingByUser retrieves the user's assistant binding.
// Returns ErrNotFound if the user has no binding.
func (s *SQLiteStore) GetBindingByUser(ctx context.Context, userID string) (*AssistantBinding, error) {
	query := `
		SELECT id, assistant_id, user_id, label, created_at
		FROM assistant_bindings
		WHERE user_id = ?
	`

	var binding AssistantBinding
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&binding.ID,
		&binding.AssistantID,
		&binding.UserID,
		&binding.Label,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying binding: %w", err)
	}

	binding.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &binding, nil
}
