// ABOUTME: Store interface and data types for recall-gateway persistence
// ABOUTME: Defines User, AssistantBinding, Conversation structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when registering a user whose id or email is already taken
var ErrUserExists = errors.New("user id or email already exists")

// ErrBindingExists is returned when the user already has an assistant binding
var ErrBindingExists = errors.New("assistant binding already exists for user")

// ErrDuplicateAssistant is returned when the remote assistant handle is already registered
var ErrDuplicateAssistant = errors.New("assistant handle already registered")

// ErrConversationExists is returned when the user already has a conversation
var ErrConversationExists = errors.New("conversation already exists for user")

// ErrDuplicateThread is returned when the remote thread handle is already registered
var ErrDuplicateThread = errors.New("thread handle already registered")

// User is a registered identity. The id is externally supplied and immutable;
// the email is unique across users.
type User struct {
	UserID    string
	Name      string
	Email     string
	CreatedAt time.Time
}

// AssistantBinding associates a user with exactly one remote assistant.
// AssistantID is the handle minted by the remote service and is globally unique.
type AssistantBinding struct {
	ID          int64
	AssistantID string
	UserID      string
	Label       string
	CreatedAt   time.Time
}

// Conversation associates a user and their bound assistant with exactly one
// remote thread. ThreadID is the handle minted by the remote service.
type Conversation struct {
	ID          int64
	ThreadID    string
	UserID      string
	AssistantID string
	Label       string
	CreatedAt   time.Time
}

// Store defines the interface for user, binding, and conversation persistence.
// One binding and one conversation per user are store-enforced invariants.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Assistant bindings
	CreateBinding(ctx context.Context, binding *AssistantBinding) error
	GetBindingByUser(ctx context.Context, userID string) (*AssistantBinding, error)

	// Conversations
	CreateConversation(ctx context.Context, conv *Conversation) error
	GetConversationByUser(ctx context.Context, userID string) (*Conversation, error)

	// Close releases any resources held by the store
	Close() error
}
