// ABOUTME: Tests for the conversation store operations
// ABOUTME: Covers creation, uniqueness constraints, and referential integrity

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestBinding registers a user and binds an assistant to them
func createTestBinding(t *testing.T, store *SQLiteStore, userID, assistantID string) {
	t.Helper()
	createTestUser(t, store, userID)
	binding := &AssistantBinding{
		AssistantID: assistantID,
		UserID:      userID,
		Label:       "helper",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateBinding(context.Background(), binding))
}

func TestConversationStore_Create(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestBinding(t, store, "u1", "asst_001")

	conv := &Conversation{
		ThreadID:    "thread_001",
		UserID:      "u1",
		AssistantID: "asst_001",
		Label:       "first-chat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	err := store.CreateConversation(ctx, conv)
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)

	retrieved, err := store.GetConversationByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "thread_001", retrieved.ThreadID)
	assert.Equal(t, "asst_001", retrieved.AssistantID)
	assert.Equal(t, "first-chat", retrieved.Label)
}

func TestConversationStore_Create_SecondConversationForUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestBinding(t, store, "u1", "asst_001")

	first := &Conversation{
		ThreadID:    "thread_001",
		UserID:      "u1",
		AssistantID: "asst_001",
		Label:       "first-chat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateConversation(ctx, first))

	second := &Conversation{
		ThreadID:    "thread_002",
		UserID:      "u1",
		AssistantID: "asst_001",
		Label:       "second-chat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	err := store.CreateConversation(ctx, second)
	assert.ErrorIs(t, err, ErrConversationExists)

	retrieved, err := store.GetConversationByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "thread_001", retrieved.ThreadID)
}

func TestConversationStore_Create_DuplicateThreadHandle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestBinding(t, store, "u1", "asst_001")
	createTestBinding(t, store, "u2", "asst_002")

	first := &Conversation{
		ThreadID:    "thread_001",
		UserID:      "u1",
		AssistantID: "asst_001",
		Label:       "chat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateConversation(ctx, first))

	second := &Conversation{
		ThreadID:    "thread_001",
		UserID:      "u2",
		AssistantID: "asst_002",
		Label:       "chat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	err := store.CreateConversation(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateThread)
}

func TestConversationStore_GetByUser_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConversationByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
