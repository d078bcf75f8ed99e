// ABOUTME: Tests for the assistant binding store operations
// ABOUTME: Covers creation, uniqueness constraints, and lookup by user

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestUser registers a user for binding and conversation tests
func createTestUser(t *testing.T, store *SQLiteStore, userID string) {
	t.Helper()
	user := &User{
		UserID:    userID,
		Name:      "Test User " + userID,
		Email:     userID + "@example.com",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
}

func TestBindingStore_Create(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "u1")

	binding := &AssistantBinding{
		AssistantID: "asst_001",
		UserID:      "u1",
		Label:       "helper",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	err := store.CreateBinding(ctx, binding)
	require.NoError(t, err)
	assert.NotZero(t, binding.ID, "store should fill in the generated id")

	retrieved, err := store.GetBindingByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, binding.ID, retrieved.ID)
	assert.Equal(t, "asst_001", retrieved.AssistantID)
	assert.Equal(t, "u1", retrieved.UserID)
	assert.Equal(t, "helper", retrieved.Label)
}

func TestBindingStore_Create_SecondBindingForUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "u1")

	first := &AssistantBinding{
		AssistantID: "asst_001",
		UserID:      "u1",
		Label:       "helper",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateBinding(ctx, first))

	// A second binding for the same user must be rejected even with a
	// fresh assistant handle
	second := &AssistantBinding{
		AssistantID: "asst_002",
		UserID:      "u1",
		Label:       "another",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	err := store.CreateBinding(ctx, second)
	assert.ErrorIs(t, err, ErrBindingExists)

	// The first binding survives
	retrieved, err := store.GetBindingByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "asst_001", retrieved.AssistantID)
}

func TestBindingStore_Create_DuplicateAssistantHandle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, store, "u1")
	createTestUser(t, store, "u2")

	first := &AssistantBinding{
		AssistantID: "asst_001",
		UserID:      "u1",
		Label:       "helper",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateBinding(ctx, first))

	// Another user registering the same remote handle must be rejected,
	// not duplicated
	second := &AssistantBinding{
		AssistantID: "asst_001",
		UserID:      "u2",
		Label:       "copycat",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	err := store.CreateBinding(ctx, second)
	assert.ErrorIs(t, err, ErrDuplicateAssistant)
}

func TestBindingStore_GetByUser_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetBindingByUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}
