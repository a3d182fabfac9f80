package solbind

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/solbind/solbind/executor"
)

// Handle is the caller-facing object bound to one loaded artifact and one
// execution context. It is the sole owner of the context's lifecycle.
// Compile calls on a single Handle are processed one at a time; handles
// are fully independent of each other and may run concurrently.
type Handle struct {
	exec    executor.Context
	binding string

	mu       sync.Mutex
	disposed bool
}

// Binding returns the name of the interface descriptor the artifact
// resolved to.
func (h *Handle) Binding() string { return h.binding }

// CompileRaw forwards standard-JSON text through the execution context and
// returns the compiler's JSON response verbatim.
func (h *Handle) CompileRaw(ctx context.Context, input string) (string, error) {
	h.mu.Lock()
	disposed := h.disposed
	h.mu.Unlock()
	if disposed {
		return "", ErrHandleDisposed
	}

	out, err := h.exec.Send(ctx, input)
	if errors.Is(err, executor.ErrClosed) {
		return "", ErrHandleDisposed
	}
	return out, err
}

// Compile serializes the input, forwards it through the execution context
// and deserializes the response. The input is not validated: malformed
// compiler input comes back as diagnostics in Output.Errors, with Compile
// still resolving normally.
func (h *Handle) Compile(ctx context.Context, input *Input) (*Output, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode compiler input: %w", err)
	}

	outText, err := h.CompileRaw(ctx, string(raw))
	if err != nil {
		return nil, err
	}

	var out Output
	if err := json.Unmarshal([]byte(outText), &out); err != nil {
		return nil, fmt.Errorf("decode compiler output: %w", err)
	}
	return &out, nil
}

// Dispose releases the execution context. Idempotent; a second call is a
// harmless no-op. Disposing a worker-backed handle rejects any compile
// still in flight.
func (h *Handle) Dispose() {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return
	}
	h.disposed = true
	h.mu.Unlock()
	h.exec.Teardown()
}
