// ABOUTME: Gateway interface to the external conversation/completion service
// ABOUTME: Defines Turn and the operations the session orchestrator depends on

package remote

import (
	"context"
	"errors"
)

// ErrUpstream wraps any failure talking to the remote service. Callers treat
// it as a terminal failure for the current operation; nothing is retried.
var ErrUpstream = errors.New("upstream conversation service unavailable")

// Turn roles as stored by the remote service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one role-tagged message within a remote conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Run identifies a triggered assistant execution. The status is whatever the
// remote service reported at creation time; this package never polls it.
type Run struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway is the external conversation/completion capability. Every call is
// one request against the remote service with no retries and no local state.
// Creation calls are not idempotent: each invocation provisions a fresh
// remote resource, so callers must check local state before calling them.
type Gateway interface {
	// CreateAssistant provisions a new assistant configuration and returns
	// its handle.
	CreateAssistant(ctx context.Context, name string) (string, error)

	// CreateThread provisions a new empty conversation and returns its handle.
	CreateThread(ctx context.Context) (string, error)

	// AddMessage appends a turn to the conversation.
	AddMessage(ctx context.Context, threadID, role, content string) error

	// CreateRun triggers the assistant against the conversation's current
	// state. The assistant's reply arrives asynchronously on the remote side.
	CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error)

	// ListMessages returns the full conversation transcript in ascending
	// chronological order. An empty conversation yields an empty slice.
	ListMessages(ctx context.Context, threadID string) ([]Turn, error)

	// Complete performs a stateless single-turn completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteCode performs a stateless completion with a fixed system
	// instruction constraining output to commented code blocks.
	CompleteCode(ctx context.Context, prompt string) (string, error)

	// Ping reports whether the remote service is reachable with the
	// configured credential.
	Ping(ctx context.Context) error
}
