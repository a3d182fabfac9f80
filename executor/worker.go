package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solbind/solbind/binding"
	"github.com/solbind/solbind/loader"
)

// Worker runs the loader, resolver and every compile call inside a
// dedicated goroutine with exclusive ownership of the artifact instance.
// Communication is strictly message-based: requests carry a uuid and
// responses are routed back to their caller by that id, so concurrent
// Send calls multiplex safely over the one channel pair.
//
// Locator-backed artifacts are fetched lazily inside the worker; the
// source text never crosses the message boundary.
type Worker struct {
	reqCh  chan request
	respCh chan response
	quit   chan struct{}
	done   chan struct{}
	log    *zap.Logger

	binding string

	mu      sync.Mutex
	pending map[string]chan response
	closed  bool
}

type readyResult struct {
	name string
	err  error
}

// NewWorker spawns the worker goroutine and blocks until the artifact is
// loaded and resolved, or the context is cancelled. No internal timeout is
// imposed on initialization.
func NewWorker(ctx context.Context, art loader.Artifact, cfg Config) (*Worker, error) {
	cfg = cfg.normalized()

	w := &Worker{
		reqCh:   make(chan request),
		respCh:  make(chan response),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		pending: make(map[string]chan response),
		log:     cfg.Logger,
	}

	ready := make(chan readyResult, 1)
	go w.run(art, cfg, ready)
	go w.route()

	select {
	case r := <-ready:
		if r.err != nil {
			w.Teardown()
			return nil, r.err
		}
		w.binding = r.name
		return w, nil
	case <-ctx.Done():
		w.Teardown()
		return nil, ctx.Err()
	}
}

// Binding returns the name of the resolved interface descriptor.
func (w *Worker) Binding() string { return w.binding }

// run owns the artifact instance for the worker's whole lifetime.
func (w *Worker) run(art loader.Artifact, cfg Config, ready chan<- readyResult) {
	defer close(w.done)

	inst, err := loader.Load(context.Background(), art, cfg.loaderConfig())
	if err != nil {
		ready <- readyResult{err: err}
		return
	}
	defer inst.Close()

	res, err := binding.Resolve(inst, cfg.Disabled)
	if err != nil {
		ready <- readyResult{err: err}
		return
	}
	ready <- readyResult{name: res.Name}

	for {
		select {
		case <-w.quit:
			return
		case req := <-w.reqCh:
			resp := response{ID: req.ID}
			if out, cerr := res.Compile(req.Input); cerr != nil {
				resp.Err = envelopeFor(cerr, res.Name)
			} else {
				resp.Output = out
			}
			// A teardown issued while the compile ran wins over the
			// response; the caller gets a transport rejection instead.
			select {
			case <-w.quit:
				return
			default:
			}
			select {
			case w.respCh <- resp:
			case <-w.quit:
				return
			}
		}
	}
}

// route delivers responses to their waiting callers and, once the worker
// exits, rejects everything still in flight so no caller is left hanging.
func (w *Worker) route() {
	for {
		select {
		case resp := <-w.respCh:
			w.deliver(resp)
		case <-w.done:
			for {
				select {
				case resp := <-w.respCh:
					w.deliver(resp)
				default:
					w.failPending()
					return
				}
			}
		}
	}
}

func (w *Worker) deliver(resp response) {
	w.mu.Lock()
	ch, ok := w.pending[resp.ID]
	delete(w.pending, resp.ID)
	w.mu.Unlock()
	if !ok {
		w.log.Debug("dropping response for abandoned request", zap.String("id", resp.ID))
		return
	}
	ch <- resp
}

func (w *Worker) failPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, ch := range w.pending {
		ch <- response{ID: id, Err: &Envelope{
			Kind:    KindTransport,
			Message: "worker terminated with request in flight",
		}}
		delete(w.pending, id)
	}
}

func (w *Worker) forget(id string) {
	w.mu.Lock()
	delete(w.pending, id)
	w.mu.Unlock()
}

// Send forwards one compile input to the worker and waits for the
// correlated response. Failures inside the worker are never swallowed;
// they surface here as the structured envelope.
func (w *Worker) Send(ctx context.Context, input string) (string, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return "", ErrClosed
	}
	id := uuid.NewString()
	ch := make(chan response, 1)
	w.pending[id] = ch
	w.mu.Unlock()

	select {
	case w.reqCh <- request{ID: id, Input: input}:
	case <-w.done:
		w.forget(id)
		return "", fmt.Errorf("%w: worker terminated", ErrTransportFailure)
	case <-ctx.Done():
		w.forget(id)
		return "", ctx.Err()
	}

	select {
	case resp := <-ch:
		if resp.Err != nil {
			return "", resp.Err
		}
		return resp.Output, nil
	case <-ctx.Done():
		w.forget(id)
		return "", ctx.Err()
	}
}

// Teardown terminates the worker and rejects in-flight requests. Calling
// it on an already-terminated worker is a harmless no-op.
func (w *Worker) Teardown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	close(w.quit)
}
