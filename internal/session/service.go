// ABOUTME: Session orchestrator binding users to assistants and conversations
// ABOUTME: Resolves or provisions remote resources local-first and relays turns

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nextgenius/recall-gateway/internal/remote"
	"github.com/nextgenius/recall-gateway/internal/store"
)

// ErrUserNotFound means the supplied user id has never been registered.
var ErrUserNotFound = errors.New("user not registered")

// ErrNoBinding means the user has no assistant binding yet; the caller must
// create one before opening a conversation.
var ErrNoBinding = errors.New("no assistant binding for user")

// ErrNoConversation means the user has no conversation yet; the caller must
// create one before sending turns.
var ErrNoConversation = errors.New("no conversation for user")

// SessionStore defines what the orchestrator needs from storage
type SessionStore interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUser(ctx context.Context, userID string) (*store.User, error)
	CreateBinding(ctx context.Context, binding *store.AssistantBinding) error
	GetBindingByUser(ctx context.Context, userID string) (*store.AssistantBinding, error)
	CreateConversation(ctx context.Context, conv *store.Conversation) error
	GetConversationByUser(ctx context.Context, userID string) (*store.Conversation, error)
}

// Service is the session orchestrator. It owns the binding and conversation
// lifecycle: local state is always checked before the remote service is asked
// to provision anything, so repeated ensure calls never leak remote resources.
type Service struct {
	store   SessionStore
	gateway remote.Gateway
	logger  *slog.Logger

	// Per-user serialization of check-then-provision regions. The store's
	// UNIQUE constraints are the hard backstop; the locks keep the common
	// path from provisioning a remote resource it would then have to orphan.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a session Service with its dependencies injected.
func New(st SessionStore, gw remote.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		gateway: gw,
		logger:  logger.With("component", "session"),
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing ensure operations for one user.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	return mu
}

// RegisterUser creates a user record. Registration is an idempotent no-op on
// failure: a duplicate id or email returns store.ErrUserExists and writes
// nothing, never an upsert.
func (s *Service) RegisterUser(ctx context.Context, userID, name, email string) (*store.User, error) {
	if userID == "" || email == "" {
		return nil, fmt.Errorf("user id and email are required")
	}

	user := &store.User{
		UserID:    userID,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", userID)
	return user, nil
}

// EnsureAssistant resolves the user's assistant binding, provisioning one
// through the gateway only when none exists. The local lookup happens before
// the remote call, so an existing binding never triggers remote provisioning.
func (s *Service) EnsureAssistant(ctx context.Context, userID, label string) (*store.AssistantBinding, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	binding, err := s.store.GetBindingByUser(ctx, userID)
	if err == nil {
		s.logger.Debug("binding already exists", "user_id", userID, "assistant_id", binding.AssistantID)
		return binding, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up binding: %w", err)
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	assistantID, err := s.gateway.CreateAssistant(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("provisioning assistant: %w", err)
	}

	binding = &store.AssistantBinding{
		AssistantID: assistantID,
		UserID:      userID,
		Label:       label,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateBinding(ctx, binding); err != nil {
		if errors.Is(err, store.ErrBindingExists) {
			// Lost a race with a concurrent ensure. Return the winner's row;
			// the assistant provisioned above is orphaned on the remote side.
			s.logger.Warn("binding creation lost race, remote assistant orphaned",
				"user_id", userID,
				"assistant_id", assistantID)
			return s.store.GetBindingByUser(ctx, userID)
		}
		return nil, fmt.Errorf("saving binding: %w", err)
	}

	s.logger.Info("assistant bound", "user_id", userID, "assistant_id", assistantID)
	return binding, nil
}

// EnsureConversation resolves the user's conversation, provisioning a remote
// thread only when none exists. Fails with ErrNoBinding when the user has no
// assistant binding; nothing is provisioned in that case.
func (s *Service) EnsureConversation(ctx context.Context, userID, label string) (*store.Conversation, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	conv, err := s.store.GetConversationByUser(ctx, userID)
	if err == nil {
		s.logger.Debug("conversation already exists", "user_id", userID, "thread_id", conv.ThreadID)
		return conv, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("looking up conversation: %w", err)
	}

	binding, err := s.store.GetBindingByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoBinding
		}
		return nil, fmt.Errorf("looking up binding: %w", err)
	}

	threadID, err := s.gateway.CreateThread(ctx)
	if err != nil {
		return nil, fmt.Errorf("provisioning thread: %w", err)
	}

	conv = &store.Conversation{
		ThreadID:    threadID,
		UserID:      userID,
		AssistantID: binding.AssistantID,
		Label:       label,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateConversation(ctx, conv); err != nil {
		if errors.Is(err, store.ErrConversationExists) {
			s.logger.Warn("conversation creation lost race, remote thread orphaned",
				"user_id", userID,
				"thread_id", threadID)
			return s.store.GetConversationByUser(ctx, userID)
		}
		return nil, fmt.Errorf("saving conversation: %w", err)
	}

	s.logger.Info("conversation opened",
		"user_id", userID,
		"thread_id", threadID,
		"assistant_id", binding.AssistantID)
	return conv, nil
}

// SendTurn appends a user turn to the conversation and triggers a run of the
// bound assistant. The returned run handle is opaque; the assistant's reply
// is produced asynchronously by the remote service and is not awaited here.
// Fails with ErrNoConversation when the user has no conversation; there is
// deliberately no auto-create on this path.
func (s *Service) SendTurn(ctx context.Context, userID, content string) (*remote.Run, error) {
	conv, err := s.store.GetConversationByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoConversation
		}
		return nil, fmt.Errorf("looking up conversation: %w", err)
	}

	if err := s.gateway.AddMessage(ctx, conv.ThreadID, remote.RoleUser, content); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	run, err := s.gateway.CreateRun(ctx, conv.ThreadID, conv.AssistantID)
	if err != nil {
		return nil, fmt.Errorf("triggering run: %w", err)
	}

	s.logger.Debug("turn sent",
		"user_id", userID,
		"thread_id", conv.ThreadID,
		"run_id", run.ID)
	return run, nil
}

// Transcript returns the user's full conversation in ascending chronological
// order, fetched fresh from the remote service on every call. An empty
// conversation yields an empty slice without error.
func (s *Service) Transcript(ctx context.Context, userID string) ([]remote.Turn, error) {
	conv, err := s.store.GetConversationByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoConversation
		}
		return nil, fmt.Errorf("looking up conversation: %w", err)
	}

	turns, err := s.gateway.ListMessages(ctx, conv.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	if turns == nil {
		turns = []remote.Turn{}
	}
	return turns, nil
}
