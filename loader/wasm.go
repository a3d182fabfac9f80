package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
)

// wasmInstance hosts a raw WebAssembly compiler build under wazero. Strings
// cross the boundary as NUL-terminated buffers allocated through the
// artifact's own allocator export, mirroring what the JavaScript glue would
// have done.
type wasmInstance struct {
	runtime wazero.Runtime
	mod     api.Module
	malloc  api.Function
	free    api.Function
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
}

func newWASMInstance(ctx context.Context, bin []byte, cfg Config) (*wasmInstance, error) {
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: instantiate WASI: %v", ErrModuleInitializationFailed, err)
	}

	compiled, err := rt.CompileModule(ctx, bin)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: compile artifact: %v", ErrModuleInitializationFailed, err)
	}

	// Library builds export _initialize rather than _start; invoke it
	// explicitly instead of letting wazero treat the module as a command.
	modCfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: instantiate artifact: %v", ErrModuleInitializationFailed, err)
	}
	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			rt.Close(ctx)
			return nil, fmt.Errorf("%w: artifact initializer: %v", ErrModuleInitializationFailed, err)
		}
	}

	if mod.Memory() == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: artifact exports no memory", ErrModuleInitializationFailed)
	}
	malloc := mod.ExportedFunction("malloc")
	if malloc == nil {
		malloc = mod.ExportedFunction("stackAlloc")
	}
	if malloc == nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("%w: artifact exposes no allocator binding facility", ErrModuleInitializationFailed)
	}

	cfg.Logger.Debug("wasm artifact initialized", zap.Int("binary_bytes", len(bin)))

	return &wasmInstance{
		runtime: rt,
		mod:     mod,
		malloc:  malloc,
		free:    mod.ExportedFunction("free"),
		log:     cfg.Logger,
	}, nil
}

func (i *wasmInstance) Has(name string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return false
	}
	// WebAssembly exports are unprefixed even when the descriptor catalog
	// names them in the emscripten "_" convention.
	if i.mod.ExportedFunction(strings.TrimPrefix(name, "_")) != nil {
		return true
	}
	return i.mod.ExportedFunction(name) != nil
}

func (i *wasmInstance) Exports() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	names := make([]string, 0, len(i.mod.ExportedFunctionDefinitions()))
	for name := range i.mod.ExportedFunctionDefinitions() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *wasmInstance) Bind(entry string, tail []Arg) (CompileFn, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil, fmt.Errorf("bind %s: instance closed", entry)
	}

	fn := i.mod.ExportedFunction(entry)
	if fn == nil {
		fn = i.mod.ExportedFunction("_" + entry)
	}
	if fn == nil {
		return nil, fmt.Errorf("bind %s: no such export", entry)
	}

	return func(input string) (string, error) {
		i.mu.Lock()
		defer i.mu.Unlock()
		if i.closed {
			return "", fmt.Errorf("compile via %s: instance closed", entry)
		}

		ctx := context.Background()
		var allocated []uint32
		defer func() {
			if i.free == nil {
				return
			}
			for _, ptr := range allocated {
				i.free.Call(ctx, uint64(ptr))
			}
		}()

		inPtr, err := i.writeString(ctx, input)
		if err != nil {
			return "", fmt.Errorf("compile via %s: %w", entry, err)
		}
		allocated = append(allocated, inPtr)

		args := []uint64{uint64(inPtr)}
		for _, a := range tail {
			if a.Kind == ArgNumber {
				args = append(args, uint64(a.Num))
				continue
			}
			ptr, err := i.writeString(ctx, a.Str)
			if err != nil {
				return "", fmt.Errorf("compile via %s: %w", entry, err)
			}
			allocated = append(allocated, ptr)
			args = append(args, uint64(ptr))
		}

		results, err := fn.Call(ctx, args...)
		if err != nil {
			return "", fmt.Errorf("compile via %s: %w", entry, err)
		}
		if len(results) == 0 {
			return "", fmt.Errorf("compile via %s: entry returned no value", entry)
		}

		out, err := i.readString(uint32(results[0]))
		if err != nil {
			return "", fmt.Errorf("compile via %s: %w", entry, err)
		}
		return out, nil
	}, nil
}

func (i *wasmInstance) writeString(ctx context.Context, s string) (uint32, error) {
	results, err := i.malloc.Call(ctx, uint64(len(s)+1))
	if err != nil {
		return 0, fmt.Errorf("allocate %d bytes: %w", len(s)+1, err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("allocator returned no pointer")
	}
	ptr := uint32(results[0])
	if !i.mod.Memory().Write(ptr, append([]byte(s), 0)) {
		return 0, fmt.Errorf("write %d bytes at %d: out of range", len(s)+1, ptr)
	}
	return ptr, nil
}

func (i *wasmInstance) readString(ptr uint32) (string, error) {
	var b []byte
	for off := ptr; ; off++ {
		c, ok := i.mod.Memory().ReadByte(off)
		if !ok {
			return "", fmt.Errorf("read at %d: out of range", off)
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
	}
}

func (i *wasmInstance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	return i.runtime.Close(context.Background())
}
