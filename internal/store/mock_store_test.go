// ABOUTME: Tests that MockStore matches the SQLite store's invariant behavior
// ABOUTME: Duplicate rejection and sentinel errors must be identical across implementations

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_MatchesSQLiteInvariants(t *testing.T) {
	ctx := context.Background()

	stores := map[string]Store{
		"mock":   NewMockStore(),
		"sqlite": newTestStore(t),
	}

	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			user := &User{UserID: "u1", Name: "Ann", Email: "ann@example.com", CreatedAt: time.Now()}
			require.NoError(t, st.CreateUser(ctx, user))
			assert.ErrorIs(t, st.CreateUser(ctx, &User{UserID: "u1", Email: "x@example.com"}), ErrUserExists)
			assert.ErrorIs(t, st.CreateUser(ctx, &User{UserID: "u2", Email: "ann@example.com"}), ErrUserExists)

			binding := &AssistantBinding{AssistantID: "asst_1", UserID: "u1", Label: "helper", CreatedAt: time.Now()}
			require.NoError(t, st.CreateBinding(ctx, binding))
			assert.NotZero(t, binding.ID)
			assert.ErrorIs(t, st.CreateBinding(ctx, &AssistantBinding{AssistantID: "asst_2", UserID: "u1"}), ErrBindingExists)

			_, err := st.GetBindingByUser(ctx, "nobody")
			assert.ErrorIs(t, err, ErrNotFound)

			conv := &Conversation{ThreadID: "thread_1", UserID: "u1", AssistantID: "asst_1", Label: "chat", CreatedAt: time.Now()}
			require.NoError(t, st.CreateConversation(ctx, conv))
			assert.ErrorIs(t, st.CreateConversation(ctx, &Conversation{ThreadID: "thread_2", UserID: "u1", AssistantID: "asst_1"}), ErrConversationExists)

			_, err = st.GetConversationByUser(ctx, "nobody")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
