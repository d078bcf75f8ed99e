// ABOUTME: Tests for the session orchestrator
// ABOUTME: Covers registration, lazy provisioning, sequencing errors, and transcript ordering

package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextgenius/recall-gateway/internal/remote"
	"github.com/nextgenius/recall-gateway/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore, *remote.FakeGateway) {
	t.Helper()
	st := store.NewMockStore()
	gw := remote.NewFakeGateway()
	return New(st, gw, nil), st, gw
}

func registerAnn(t *testing.T, svc *Service) {
	t.Helper()
	_, err := svc.RegisterUser(context.Background(), "u1", "Ann", "ann@example.com")
	require.NoError(t, err)
}

func TestRegisterUser(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, "u1", "Ann", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)

	stored, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", stored.Email)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)

	// Same email, different user id
	_, err := svc.RegisterUser(ctx, "u2", "Ann Again", "ann@example.com")
	assert.ErrorIs(t, err, store.ErrUserExists)

	// Nothing written for the loser
	_, err = st.GetUser(ctx, "u2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegisterUser_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RegisterUser(context.Background(), "", "Ann", "ann@example.com")
	assert.Error(t, err)

	_, err = svc.RegisterUser(context.Background(), "u1", "Ann", "")
	assert.Error(t, err)
}

func TestEnsureAssistant_ProvisionsOnce(t *testing.T) {
	svc, _, gw := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)

	first, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)
	assert.NotEmpty(t, first.AssistantID)
	assert.Equal(t, "helper", first.Label)

	// A repeated ensure returns the same binding without touching the remote
	second, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)
	assert.Equal(t, first.AssistantID, second.AssistantID)
	assert.Equal(t, 1, gw.CreateAssistantCalls, "existing binding must not provision a new remote assistant")
}

func TestEnsureAssistant_UnknownUser(t *testing.T) {
	svc, _, gw := newTestService(t)

	_, err := svc.EnsureAssistant(context.Background(), "ghost", "helper")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, gw.CreateAssistantCalls, "no remote resource may be provisioned for an unknown user")
}

func TestEnsureAssistant_GatewayFailureWritesNothing(t *testing.T) {
	svc, st, gw := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)
	gw.Fail = true

	_, err := svc.EnsureAssistant(ctx, "u1", "helper")
	assert.ErrorIs(t, err, remote.ErrUpstream)

	_, err = st.GetBindingByUser(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnsureAssistant_ConcurrentCallsYieldOneBinding(t *testing.T) {
	svc, st, gw := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			binding, err := svc.EnsureAssistant(ctx, "u1", "helper")
			if err == nil {
				results[i] = binding.AssistantID
			}
		}(i)
	}
	wg.Wait()

	binding, err := st.GetBindingByUser(ctx, "u1")
	require.NoError(t, err)
	for i, id := range results {
		assert.Equal(t, binding.AssistantID, id, "caller %d saw a different binding", i)
	}
	assert.Equal(t, 1, gw.CreateAssistantCalls, "only one remote assistant may be provisioned")
}

func TestEnsureConversation_RequiresBinding(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)

	_, err := svc.EnsureConversation(ctx, "u1", "first-chat")
	assert.ErrorIs(t, err, ErrNoBinding)

	// Nothing written
	_, err = st.GetConversationByUser(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEnsureConversation_ProvisionsOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)
	binding, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)

	first, err := svc.EnsureConversation(ctx, "u1", "first-chat")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ThreadID)
	assert.Equal(t, binding.AssistantID, first.AssistantID, "conversation must reference the bound assistant")

	second, err := svc.EnsureConversation(ctx, "u1", "first-chat")
	require.NoError(t, err)
	assert.Equal(t, first.ThreadID, second.ThreadID)
}

func TestSendTurn_RequiresConversation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)
	_, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)

	// No conversation yet: no auto-create on the send path
	_, err = svc.SendTurn(ctx, "u1", "hello")
	assert.ErrorIs(t, err, ErrNoConversation)
}

func TestTranscript_RequiresConversation(t *testing.T) {
	svc, _, _ := newTestService(t)

	registerAnn(t, svc)
	_, err := svc.Transcript(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoConversation)
}

func TestTranscript_EmptyConversation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registerAnn(t, svc)
	_, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)
	_, err = svc.EnsureConversation(ctx, "u1", "first-chat")
	require.NoError(t, err)

	turns, err := svc.Transcript(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

// TestSessionLifecycle walks the full register/bind/open/send/read sequence
// and checks transcript ordering end to end.
func TestSessionLifecycle(t *testing.T) {
	svc, _, gw := newTestService(t)
	ctx := context.Background()

	gw.Reply = "hi Ann"

	user, err := svc.RegisterUser(ctx, "u1", "Ann", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)

	// Re-registration with the same email fails and changes nothing
	_, err = svc.RegisterUser(ctx, "u9", "Imposter", "ann@example.com")
	assert.ErrorIs(t, err, store.ErrUserExists)

	binding, err := svc.EnsureAssistant(ctx, "u1", "helper")
	require.NoError(t, err)

	conv, err := svc.EnsureConversation(ctx, "u1", "first-chat")
	require.NoError(t, err)
	assert.Equal(t, binding.AssistantID, conv.AssistantID)

	run, err := svc.SendTurn(ctx, "u1", "hello")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	turns, err := svc.Transcript(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, remote.Turn{Role: remote.RoleUser, Content: "hello"}, turns[0])
	assert.Equal(t, remote.Turn{Role: remote.RoleAssistant, Content: "hi Ann"}, turns[1])

	// A second exchange extends the transcript in order
	_, err = svc.SendTurn(ctx, "u1", "how are you?")
	require.NoError(t, err)

	turns, err = svc.Transcript(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, turns, 4)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, "hi Ann", turns[1].Content)
	assert.Equal(t, "how are you?", turns[2].Content)
	assert.Equal(t, remote.RoleAssistant, turns[3].Role)
}
