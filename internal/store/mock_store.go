// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
// It enforces the same uniqueness invariants as the SQLite schema.
type MockStore struct {
	mu            sync.RWMutex
	users         map[string]*User             // keyed by user ID
	usersByEmail  map[string]string            // email -> user ID
	bindings      map[string]*AssistantBinding // keyed by user ID
	assistants    map[string]string            // assistant handle -> user ID
	conversations map[string]*Conversation     // keyed by user ID
	threads       map[string]string            // thread handle -> user ID
	nextID        int64

	// FailWith, when set, is returned by every write operation.
	FailWith error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:         make(map[string]*User),
		usersByEmail:  make(map[string]string),
		bindings:      make(map[string]*AssistantBinding),
		assistants:    make(map[string]string),
		conversations: make(map[string]*Conversation),
		threads:       make(map[string]string),
	}
}

// CreateUser stores a new user, rejecting duplicate ids and emails.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.users[user.UserID]; ok {
		return ErrUserExists
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return ErrUserExists
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[u.UserID] = &u
	m.usersByEmail[u.Email] = u.UserID
	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, userID string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	result := *u
	return &result, nil
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	result := *m.users[id]
	return &result, nil
}

// CreateBinding stores a new assistant binding, enforcing one per user and
// handle uniqueness.
func (m *MockStore) CreateBinding(ctx context.Context, binding *AssistantBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.bindings[binding.UserID]; ok {
		return ErrBindingExists
	}
	if _, ok := m.assistants[binding.AssistantID]; ok {
		return ErrDuplicateAssistant
	}

	m.nextID++
	binding.ID = m.nextID
	b := *binding
	m.bindings[b.UserID] = &b
	m.assistants[b.AssistantID] = b.UserID
	return nil
}

// GetBindingByUser retrieves the binding for a user.
func (m *MockStore) GetBindingByUser(ctx context.Context, userID string) (*AssistantBinding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bindings[userID]
	if !ok {
		return nil, ErrNotFound
	}
	result := *b
	return &result, nil
}

// CreateConversation stores a new conversation, enforcing one per user and
// handle uniqueness.
func (m *MockStore) CreateConversation(ctx context.Context, conv *Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	if _, ok := m.conversations[conv.UserID]; ok {
		return ErrConversationExists
	}
	if _, ok := m.threads[conv.ThreadID]; ok {
		return ErrDuplicateThread
	}

	m.nextID++
	conv.ID = m.nextID
	c := *conv
	m.conversations[c.UserID] = &c
	m.threads[c.ThreadID] = c.UserID
	return nil
}

// GetConversationByUser retrieves the conversation for a user.
func (m *MockStore) GetConversationByUser(ctx context.Context, userID string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[userID]
	if !ok {
		return nil, ErrNotFound
	}
	result := *c
	return &result, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
