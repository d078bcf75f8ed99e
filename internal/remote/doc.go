// Package remote defines the Gateway interface to the external conversation
// and completion service, plus its implementations.
//
// The session core treats the remote service as an opaque capability: create
// an assistant, create a thread, append a message, trigger a run, list the
// transcript. Nothing is cached or persisted on this side, every call is a
// single request with no retries, and failures surface wrapped in ErrUpstream.
//
// OpenAIClient is the production implementation against the Assistants v2
// REST API. FakeGateway is the in-memory test double.
package remote
