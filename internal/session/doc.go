// Package session is the conversation-session orchestrator.
//
// It maps a stable user identity to exactly one remote assistant and one live
// conversation thread, creating both lazily and idempotently: local store
// state is always consulted before the remote gateway is asked to provision
// anything, so repeated ensure calls return the existing association instead
// of leaking fresh remote resources.
//
// The check-then-provision region is serialized per user with an in-process
// lock, and the store's uniqueness constraints close the remaining window:
// a creation race loses cleanly and returns the winning row.
//
// Turn relay is thin by design. SendTurn appends one user message and
// triggers a run without polling it; Transcript fetches a fresh snapshot of
// the remote history in ascending chronological order. No turn content is
// ever stored locally.
package session
