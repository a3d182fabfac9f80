package solbind

import (
	"context"

	"github.com/solbind/solbind/executor"
	"github.com/solbind/solbind/loader"
)

// Load instantiates a compiler artifact from source text and returns a
// Handle bound to its best calling convention. The caller owns the Handle
// and must Dispose it.
func Load(ctx context.Context, source string, opts ...Option) (*Handle, error) {
	return load(ctx, loader.Artifact{Source: source}, opts)
}

// LoadURL is Load for a locator-backed artifact. With WithWorker the fetch
// happens lazily inside the worker; otherwise it happens here.
func LoadURL(ctx context.Context, locator string, opts ...Option) (*Handle, error) {
	return load(ctx, loader.Artifact{Locator: locator}, opts)
}

func load(ctx context.Context, art loader.Artifact, opts []Option) (*Handle, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.worker {
		w, err := executor.NewWorker(ctx, art, cfg.executorConfig())
		if err != nil {
			return nil, err
		}
		return &Handle{exec: w, binding: w.Binding()}, nil
	}

	p, err := executor.NewInProcess(ctx, art, cfg.executorConfig())
	if err != nil {
		return nil, err
	}
	return &Handle{exec: p, binding: p.Binding()}, nil
}

// CompileOnce loads an artifact, runs a single compilation and disposes
// the handle again. Convenience for one-shot callers; anything compiling
// more than once should hold a Handle instead.
func CompileOnce(ctx context.Context, source string, input *Input, opts ...Option) (*Output, error) {
	handle, err := Load(ctx, source, opts...)
	if err != nil {
		return nil, err
	}
	defer handle.Dispose()
	return handle.Compile(ctx, input)
}
