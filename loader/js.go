package loader

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/solbind/solbind/hostenv"
)

// jsInstance hosts an emscripten JavaScript build inside a dedicated goja
// runtime. The runtime is created fresh per load and never shared.
type jsInstance struct {
	vm     *goja.Runtime
	module *goja.Object
	cwrap  goja.Callable
	log    *zap.Logger

	// goja runtimes are not goroutine-safe; all calls into the artifact
	// are serialized.
	mu sync.Mutex
}

func newJSInstance(src string, cfg Config) (*jsInstance, error) {
	vm := goja.New()

	module := vm.NewObject()
	env := hostenv.New(cfg.Logger)
	if err := env.Install(vm, module); err != nil {
		return nil, fmt.Errorf("%w: installing host bindings: %v", ErrModuleInitializationFailed, err)
	}

	// Optional ready-callback slot. goja evaluation is synchronous, so the
	// artifact either invokes this while the source runs or initialization
	// completed without it.
	ready := false
	module.Set("onRuntimeInitialized", func(goja.FunctionCall) goja.Value {
		ready = true
		return goja.Undefined()
	})
	if err := vm.Set("Module", module); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModuleInitializationFailed, err)
	}

	if _, err := vm.RunString(src); err != nil {
		return nil, fmt.Errorf("%w: evaluating artifact: %v", ErrModuleInitializationFailed, err)
	}

	// The artifact may have replaced the Module global outright.
	modVal := vm.Get("Module")
	if modVal == nil || goja.IsUndefined(modVal) || goja.IsNull(modVal) {
		return nil, fmt.Errorf("%w: artifact removed its module record", ErrModuleInitializationFailed)
	}
	obj := modVal.ToObject(vm)

	cw, ok := goja.AssertFunction(obj.Get("cwrap"))
	if !ok {
		return nil, fmt.Errorf("%w: artifact exposes no cwrap binding facility", ErrModuleInitializationFailed)
	}

	cfg.Logger.Debug("artifact initialized",
		zap.Bool("ready_callback_fired", ready),
		zap.Int("source_bytes", len(src)))

	return &jsInstance{vm: vm, module: obj, cwrap: cw, log: cfg.Logger}, nil
}

func (i *jsInstance) Has(name string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.module == nil {
		return false
	}
	v := i.module.Get(name)
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

func (i *jsInstance) Exports() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.module == nil {
		return nil
	}
	return i.module.Keys()
}

func (i *jsInstance) Bind(entry string, tail []Arg) (CompileFn, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.vm == nil {
		return nil, fmt.Errorf("bind %s: instance closed", entry)
	}

	paramTypes := make([]any, 0, len(tail)+1)
	paramTypes = append(paramTypes, "string")
	for _, a := range tail {
		if a.Kind == ArgNumber {
			paramTypes = append(paramTypes, "number")
		} else {
			paramTypes = append(paramTypes, "string")
		}
	}

	bound, err := i.cwrap(i.module,
		i.vm.ToValue(entry),
		i.vm.ToValue("string"),
		i.vm.ToValue(paramTypes))
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", entry, err)
	}
	fn, ok := goja.AssertFunction(bound)
	if !ok {
		return nil, fmt.Errorf("bind %s: cwrap did not return a function", entry)
	}

	return func(input string) (string, error) {
		i.mu.Lock()
		defer i.mu.Unlock()
		if i.vm == nil {
			return "", fmt.Errorf("compile via %s: instance closed", entry)
		}

		args := make([]goja.Value, 0, len(tail)+1)
		args = append(args, i.vm.ToValue(input))
		for _, a := range tail {
			if a.Kind == ArgNumber {
				args = append(args, i.vm.ToValue(a.Num))
			} else {
				args = append(args, i.vm.ToValue(a.Str))
			}
		}

		out, err := fn(i.module, args...)
		if err != nil {
			return "", fmt.Errorf("compile via %s: %w", entry, err)
		}
		return out.String(), nil
	}, nil
}

func (i *jsInstance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vm = nil
	i.module = nil
	i.cwrap = nil
	return nil
}
