package executor_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/solbind/solbind/binding"
	"github.com/solbind/solbind/executor"
	"github.com/solbind/solbind/internal/fakesolc"
	"github.com/solbind/solbind/loader"
)

const trivialInput = `{"language":"Solidity","sources":{"t.sol":{"content":"pragma solidity ^0.8.0; contract T {}"}},"settings":{"outputSelection":{"*":{"*":["*"]}}}}`

func newContexts(t *testing.T, source string) map[string]executor.Context {
	t.Helper()
	ctx := context.Background()
	art := loader.Artifact{Source: source}

	p, err := executor.NewInProcess(ctx, art, executor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewInProcess: %v", err)
	}
	w, err := executor.NewWorker(ctx, art, executor.DefaultConfig())
	if err != nil {
		p.Teardown()
		t.Fatalf("NewWorker: %v", err)
	}
	return map[string]executor.Context{"in-process": p, "worker": w}
}

func TestContextsSendRoundTrip(t *testing.T) {
	for name, ec := range newContexts(t, fakesolc.Modern()) {
		t.Run(name, func(t *testing.T) {
			defer ec.Teardown()

			out, err := ec.Send(context.Background(), trivialInput)
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			if !strings.Contains(out, `"T"`) {
				t.Errorf("output missing contract: %s", out)
			}

			// A second request on the same context is independent.
			out2, err := ec.Send(context.Background(),
				`{"sources":{"u.sol":{"content":"contract U {}"}}}`)
			if err != nil {
				t.Fatalf("second Send: %v", err)
			}
			if !strings.Contains(out2, `"U"`) || strings.Contains(out2, `"T"`) {
				t.Errorf("second output leaked state: %s", out2)
			}
		})
	}
}

func TestContextsTeardown(t *testing.T) {
	for name, ec := range newContexts(t, fakesolc.Modern()) {
		t.Run(name, func(t *testing.T) {
			ec.Teardown()
			ec.Teardown() // idempotent

			_, err := ec.Send(context.Background(), trivialInput)
			if !errors.Is(err, executor.ErrClosed) && !errors.Is(err, executor.ErrTransportFailure) {
				t.Errorf("Send after teardown: %v", err)
			}
		})
	}
}

func TestContextsResolveFailure(t *testing.T) {
	ctx := context.Background()
	cfg := executor.DefaultConfig()
	cfg.Disabled = binding.Names()
	art := loader.Artifact{Source: fakesolc.Modern()}

	if _, err := executor.NewInProcess(ctx, art, cfg); !errors.Is(err, binding.ErrNoCompatibleInterface) {
		t.Errorf("in-process err = %v, want ErrNoCompatibleInterface", err)
	}
	if _, err := executor.NewWorker(ctx, art, cfg); !errors.Is(err, binding.ErrNoCompatibleInterface) {
		t.Errorf("worker err = %v, want ErrNoCompatibleInterface", err)
	}
}

func TestContextsLoadFailure(t *testing.T) {
	ctx := context.Background()
	art := loader.Artifact{Source: fakesolc.Corrupt()}

	if _, err := executor.NewInProcess(ctx, art, executor.DefaultConfig()); !errors.Is(err, loader.ErrModuleInitializationFailed) {
		t.Errorf("in-process err = %v, want ErrModuleInitializationFailed", err)
	}
	if _, err := executor.NewWorker(ctx, art, executor.DefaultConfig()); !errors.Is(err, loader.ErrModuleInitializationFailed) {
		t.Errorf("worker err = %v, want ErrModuleInitializationFailed", err)
	}
}

func TestWorkerCompileExceptionSurfaces(t *testing.T) {
	w, err := executor.NewWorker(context.Background(),
		loader.Artifact{Source: fakesolc.Throwing()}, executor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	defer w.Teardown()

	_, err = w.Send(context.Background(), trivialInput)
	if err == nil {
		t.Fatal("expected compile exception to surface")
	}
	var env *executor.Envelope
	if !errors.As(err, &env) {
		t.Fatalf("err = %T, want *Envelope", err)
	}
	if env.Kind != executor.KindCompileFailure {
		t.Errorf("kind = %q, want %q", env.Kind, executor.KindCompileFailure)
	}
	if !strings.Contains(env.Message, "internal compiler fault") {
		t.Errorf("message = %q", env.Message)
	}
}

func TestWorkerTeardownRejectsInFlight(t *testing.T) {
	w, err := executor.NewWorker(context.Background(),
		loader.Artifact{Source: fakesolc.Slow(300)}, executor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := w.Send(context.Background(), trivialInput)
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond) // let the request reach the worker
	w.Teardown()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("in-flight Send resolved after teardown")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("in-flight Send left unresolved after teardown")
	}
}

func TestWorkerSendContextCancel(t *testing.T) {
	w, err := executor.NewWorker(context.Background(),
		loader.Artifact{Source: fakesolc.Slow(300)}, executor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	defer w.Teardown()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := w.Send(ctx, trivialInput); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}

func TestWorkerLazyLocator(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(fakesolc.Modern()))
	}))
	defer srv.Close()

	w, err := executor.NewWorker(context.Background(),
		loader.Artifact{Locator: srv.URL + "/soljson.js"}, executor.DefaultConfig())
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	defer w.Teardown()

	if w.Binding() != "solidity-compile" {
		t.Errorf("binding = %q", w.Binding())
	}
	if _, err := w.Send(context.Background(), trivialInput); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if fetches != 1 {
		t.Errorf("artifact fetched %d times, want once", fetches)
	}
}
