// ABOUTME: In-memory fake Gateway implementation for testing
// ABOUTME: Mints handles with uuid and replays appended turns in insertion order

package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// FakeGateway is an in-memory Gateway for tests. It mints fresh handles on
// every creation call, mirroring the non-idempotent remote service, and keeps
// per-thread transcripts in insertion order.
type FakeGateway struct {
	mu         sync.Mutex
	assistants map[string]string // assistant ID -> name
	threads    map[string][]Turn // thread ID -> transcript, oldest first
	runs       []string

	// Reply, when non-empty, is appended as an assistant turn on CreateRun,
	// simulating the remote service completing the run out-of-band.
	Reply string

	// Fail, when set, makes every call return ErrUpstream.
	Fail bool

	// CreateAssistantCalls counts provisioning calls for orphan-leak assertions.
	CreateAssistantCalls int
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		assistants: make(map[string]string),
		threads:    make(map[string][]Turn),
	}
}

func (f *FakeGateway) err() error {
	if f.Fail {
		return fmt.Errorf("%w: fake failure", ErrUpstream)
	}
	return nil
}

// CreateAssistant mints a fresh assistant handle.
func (f *FakeGateway) CreateAssistant(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.err(); err != nil {
		return "", err
	}
	f.CreateAssistantCalls++
	id := "asst_" + uuid.New().String()
	f.assistants[id] = name
	return id, nil
}

// CreateThread mints a fresh thread handle.
func (f *FakeGateway) CreateThread(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.err(); err != nil {
		return "", err
	}
	id := "thread_" + uuid.New().String()
	f.threads[id] = []Turn{}
	return id, nil
}

// AddMessage appends a turn to the thread.
func (f *FakeGateway) AddMessage(ctx context.Context, threadID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.err(); err != nil {
		return err
	}
	turns, ok := f.threads[threadID]
	if !ok {
		return fmt.Errorf("%w: unknown thread %s", ErrUpstream, threadID)
	}
	f.threads[threadID] = append(turns, Turn{Role: role, Content: content})
	return nil
}

// CreateRun records a run and, if Reply is set, appends the assistant's answer.
func (f *FakeGateway) CreateRun(ctx context.Context, threadID, assistantID string) (*Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.err(); err != nil {
		return nil, err
	}
	if _, ok := f.assistants[assistantID]; !ok {
		return nil, fmt.Errorf("%w: unknown assistant %s", ErrUpstream, assistantID)
	}
	if _, ok := f.threads[threadID]; !ok {
		return nil, fmt.Errorf("%w: unknown thread %s", ErrUpstream, threadID)
	}

	id := "run_" + uuid.New().String()
	f.runs = append(f.runs, id)
	if f.Reply != "" {
		f.threads[threadID] = append(f.threads[threadID], Turn{Role: RoleAssistant, Content: f.Reply})
	}
	return &Run{ID: id, Status: "queued"}, nil
}

// ListMessages returns the transcript oldest first.
func (f *FakeGateway) ListMessages(ctx context.Context, threadID string) ([]Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.err(); err != nil {
		return nil, err
	}
	turns, ok := f.threads[threadID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown thread %s", ErrUpstream, threadID)
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Complete echoes the prompt back with a fixed prefix.
func (f *FakeGateway) Complete(ctx context.Context, prompt string) (string, error) {
	if err := f.err(); err != nil {
		return "", err
	}
	return "echo: " + prompt, nil
}

// CompleteCode echoes the prompt back as a code block.
func (f *FakeGateway) CompleteCode(ctx context.Context, prompt string) (string, error) {
	if err := f.err(); err != nil {
		return "", err
	}
	return "```\n// " + prompt + "\n```", nil
}

// Ping reports the configured failure state.
func (f *FakeGateway) Ping(ctx context.Context) error {
	return f.err()
}
