// Package store provides persistent storage for recall-gateway using SQLite.
//
// # Architecture
//
// The package exposes a single Store interface covering the three durable
// entities and two implementations:
//
//   - SQLiteStore: the production store backed by modernc.org/sqlite
//   - MockStore: an in-memory implementation for tests
//
// # Data Models
//
//   - User: a registered identity, keyed by an externally supplied id with a
//     unique email
//   - AssistantBinding: the association between a user and the remote
//     assistant provisioned for them
//   - Conversation: the association between a user/assistant pair and the
//     remote thread holding their chat history
//
// Chat turns themselves are never persisted here; they live entirely in the
// remote conversation service.
//
// # Invariants
//
// The schema enforces the cardinality the orchestrator depends on: one
// binding and one conversation per user (UNIQUE on user_id), and global
// uniqueness of remote assistant and thread handles. Violations surface as
// sentinel errors (ErrUserExists, ErrBindingExists, ErrDuplicateAssistant,
// ErrConversationExists, ErrDuplicateThread) so callers can distinguish a
// lost creation race from a real failure.
package store
