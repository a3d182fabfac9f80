package executor

import (
	"context"
	"sync"

	"github.com/solbind/solbind/binding"
	"github.com/solbind/solbind/loader"
)

// InProcess runs the loader, resolver and every compile call on the
// caller's own goroutines. Compile calls are serialized because the
// underlying artifact runtime is single-threaded.
type InProcess struct {
	inst    loader.Instance
	compile loader.CompileFn
	binding string

	mu     sync.Mutex
	closed bool
}

// NewInProcess loads and resolves the artifact in the calling goroutine.
func NewInProcess(ctx context.Context, art loader.Artifact, cfg Config) (*InProcess, error) {
	cfg = cfg.normalized()

	inst, err := loader.Load(ctx, art, cfg.loaderConfig())
	if err != nil {
		return nil, err
	}
	res, err := binding.Resolve(inst, cfg.Disabled)
	if err != nil {
		inst.Close()
		return nil, err
	}
	return &InProcess{inst: inst, compile: res.Compile, binding: res.Name}, nil
}

// Binding returns the name of the resolved interface descriptor.
func (p *InProcess) Binding() string { return p.binding }

// Send invokes the bound compile function directly. An in-flight compile
// cannot be interrupted; the context is only checked before work starts.
func (p *InProcess) Send(ctx context.Context, input string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.compile(input)
}

// Teardown releases the instance. No separate thread of control exists, so
// beyond dropping the module's resources this is a no-op, and calling it
// again is harmless.
func (p *InProcess) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.inst.Close()
}
