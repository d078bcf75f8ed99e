// ABOUTME: Conversation store operations
// ABOUTME: Enforces one conversation per user and global uniqueness of remote thread handles

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateConversation inserts a new conversation and fills in the generated row id.
// Returns ErrConversationExists if the user already has a conversation, and
// ErrDuplicateThread if the remote thread handle is already registered.
func (s *SQLiteStore) CreateConversation(ctx context.Context, conv *Conversation) error {
	query := `
		INSERT INTO conversations (thread_id, user_id, assistant_id, label, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		conv.ThreadID,
		conv.UserID,
		conv.AssistantID,
		conv.Label,
		conv.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			if constraintColumn(err, "conversations.user_id") {
				return ErrConversationExists
			}
			return ErrDuplicateThread
		}
		return fmt.Errorf("inserting conversation: %w", err)
	}

	conv.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting conversation id: %w", err)
	}

	s.logger.Debug("created conversation",
		"id", conv.ID,
		"user_id", conv.UserID,
		"thread_id", conv.ThreadID)
	return nil
}

// GetConversationByUser retrieves the user's conversation.
// Returns ErrNotFound if the user has no conversation.
func (s *SQLiteStore) GetConversationByUser(ctx context.Context, userID string) (*Conversation, error) {
	query := `
		SELECT id, thread_id, user_id, assistant_id, label, created_at
		FROM conversations
		WHERE user_id = ?
	`

	var conv Conversation
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&conv.ID,
		&conv.ThreadID,
		&conv.UserID,
		&conv.AssistantID,
		&conv.Label,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	conv.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &conv, nil
}
