// Package gateway assembles the recall-gateway server.
//
// It constructs the SQLite store, the remote conversation client, and the
// session orchestrator, and exposes them over a plain net/http mux:
//
//	POST /create_user            register an identity (no-op on duplicate)
//	POST /create_assistant       resolve or provision the user's assistant
//	POST /create_thread          resolve or provision the user's conversation
//	POST /chat_with_memory       append a turn and trigger a run
//	GET  /messages_with_memory   full transcript, oldest first
//	POST /api/chat               stateless single-turn completion
//	POST /api/code               stateless code-constrained completion
//	GET  /api/connection         remote service liveness, bare boolean
//	GET  /healthz                process liveness
//
// Failures are always structured JSON naming the failed precondition; raw
// store or remote errors never reach a response body.
package gateway
