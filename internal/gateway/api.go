// ABOUTME: HTTP API handlers for the session broker and stateless completion routes
// ABOUTME: JSON request/response contracts with structured error payloads

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nextgenius/recall-gateway/internal/remote"
	"github.com/nextgenius/recall-gateway/internal/session"
	"github.com/nextgenius/recall-gateway/internal/store"
)

// CreateUserRequest is the JSON request body for POST /create_user.
type CreateUserRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// CreateAssistantRequest is the JSON request body for POST /create_assistant.
type CreateAssistantRequest struct {
	UserID        string `json:"user_id"`
	AssistantName string `json:"assistant_name"`
}

// CreateThreadRequest is the JSON request body for POST /create_thread.
type CreateThreadRequest struct {
	UserID      string `json:"user_id"`
	ThreadLabel string `json:"thread_label"`
}

// ChatWithMemoryRequest is the JSON request body for POST /chat_with_memory.
type ChatWithMemoryRequest struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt"`
}

// RunResponse is the opaque run handle returned by POST /chat_with_memory.
type RunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// ChatRequest is the JSON request body for the stateless completion routes.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the JSON response for POST /api/chat.
// Field names mirror the public contract.
type ChatResponse struct {
	Prompt         string `json:"Prompt"`
	SystemResponse string `json:"System_Response"`
}

// CodeResponse is the JSON response for POST /api/code.
type CodeResponse struct {
	Prompt  string `json:"prompt"`
	Message string `json:"message"`
}

// createdResponse is the JSON body for successful creation routes.
type createdResponse struct {
	Created string `json:"created"`
}

// errorResponse is the JSON body for all failure paths. The message names the
// failed precondition; internal fault detail stays in the logs.
type errorResponse struct {
	Error string `json:"error"`
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("encoding response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses and structured bodies.
// Duplicate registration is reported in-band with a 200, matching the
// published contract for /create_user.
func (g *Gateway) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUserExists):
		g.writeJSON(w, http.StatusOK, errorResponse{Error: "user id or email already exists"})
	case errors.Is(err, session.ErrUserNotFound):
		g.writeJSON(w, http.StatusConflict, errorResponse{Error: "user is not registered"})
	case errors.Is(err, session.ErrNoBinding):
		g.writeJSON(w, http.StatusConflict, errorResponse{Error: "no assistant binding for user; create an assistant first"})
	case errors.Is(err, session.ErrNoConversation):
		g.writeJSON(w, http.StatusConflict, errorResponse{Error: "no conversation for user; create a thread first"})
	case errors.Is(err, remote.ErrUpstream):
		g.writeJSON(w, http.StatusBadGateway, errorResponse{Error: "upstream conversation service unavailable"})
	default:
		g.logger.Error("request failed", "error", err)
		g.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (g *Gateway) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

// handleCreateUser handles POST /create_user.
// Registration is a no-op on duplicates: the existing row is left untouched
// and the error is reported in the body.
func (g *Gateway) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Email == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and email are required"})
		return
	}

	if _, err := g.session.RegisterUser(r.Context(), req.UserID, req.Name, req.Email); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, createdResponse{Created: "user created"})
}

// handleCreateAssistant handles POST /create_assistant.
// The remote assistant is provisioned only when the user has no binding yet;
// a repeated call returns the existing binding without touching the remote
// service.
func (g *Gateway) handleCreateAssistant(w http.ResponseWriter, r *http.Request) {
	var req CreateAssistantRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	if _, err := g.session.EnsureAssistant(r.Context(), req.UserID, req.AssistantName); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, createdResponse{Created: "assistant created"})
}

// handleCreateThread handles POST /create_thread.
// Requires an existing assistant binding; no binding is auto-created here.
func (g *Gateway) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.UserID == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	if _, err := g.session.EnsureConversation(r.Context(), req.UserID, req.ThreadLabel); err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, createdResponse{Created: "thread created"})
}

// handleChatWithMemory handles POST /chat_with_memory.
// Appends the prompt to the user's conversation and triggers a run. The run
// status is whatever the remote service reported; it is not polled.
func (g *Gateway) handleChatWithMemory(w http.ResponseWriter, r *http.Request) {
	var req ChatWithMemoryRequest
	if !g.decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Prompt == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and prompt are required"})
		return
	}

	run, err := g.session.SendTurn(r.Context(), req.UserID, req.Prompt)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, RunResponse{RunID: run.ID, Status: run.Status})
}

// handleMessagesWithMemory handles GET /messages_with_memory?user_id=X.
// Returns the full transcript snapshot in ascending chronological order.
func (g *Gateway) handleMessagesWithMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	turns, err := g.session.Transcript(r.Context(), userID)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, turns)
}

// handleChat handles POST /api/chat, a stateless single-turn completion.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !g.decode(w, r, &req) {
		return
	}

	answer, err := g.remote.Complete(r.Context(), req.Prompt)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, ChatResponse{Prompt: req.Prompt, SystemResponse: answer})
}

// handleCode handles POST /api/code, a stateless completion constrained to
// commented code output.
func (g *Gateway) handleCode(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !g.decode(w, r, &req) {
		return
	}

	answer, err := g.remote.CompleteCode(r.Context(), req.Prompt)
	if err != nil {
		g.writeError(w, err)
		return
	}
	g.writeJSON(w, http.StatusOK, CodeResponse{Prompt: req.Prompt, Message: answer})
}

// handleConnection handles GET /api/connection, a liveness probe against the
// remote service. The body is a bare JSON boolean.
func (g *Gateway) handleConnection(w http.ResponseWriter, r *http.Request) {
	ok := g.remote.Ping(r.Context()) == nil
	g.writeJSON(w, http.StatusOK, ok)
}

// handleHealthz handles GET /healthz for the process itself.
func (g *Gateway) handleHealthz(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
