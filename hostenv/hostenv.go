// Package hostenv provides the host bindings injected into an artifact's
// evaluation scope: console-equivalent logging sinks, working-directory
// values some older builds read during initialization, and neutered timers.
//
// An Env is constructed fresh for every load and scoped to that load only;
// it is never a process-wide singleton, so independent loads stay fully
// isolated from each other.
package hostenv

import (
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Env is the capability object handed to one artifact evaluation.
type Env struct {
	log *zap.Logger
	cwd string
}

// New returns an Env that routes artifact console output to the given
// logger. A nil logger discards output.
func New(log *zap.Logger) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	return &Env{log: log, cwd: "/"}
}

// Install wires the host bindings into the runtime. The module object is
// the export record the artifact populates; print sinks live on it because
// emscripten glue looks them up there.
func (e *Env) Install(vm *goja.Runtime, module *goja.Object) error {
	if err := module.Set("print", e.sink(zapcore.InfoLevel)); err != nil {
		return err
	}
	if err := module.Set("printErr", e.sink(zapcore.WarnLevel)); err != nil {
		return err
	}

	console := vm.NewObject()
	console.Set("log", e.sink(zapcore.InfoLevel))
	console.Set("info", e.sink(zapcore.InfoLevel))
	console.Set("warn", e.sink(zapcore.WarnLevel))
	console.Set("error", e.sink(zapcore.ErrorLevel))
	if err := vm.Set("console", console); err != nil {
		return err
	}

	// Timers are meaningless in a synchronous evaluation scope.
	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	vm.Set("setTimeout", noop)
	vm.Set("setInterval", noop)

	// Older builds call process.cwd() eagerly while initializing their
	// virtual filesystem.
	process := vm.NewObject()
	process.Set("cwd", func() string { return e.cwd })
	process.Set("env", vm.NewObject())
	process.Set("platform", "linux")
	if err := vm.Set("process", process); err != nil {
		return err
	}
	vm.Set("__dirname", e.cwd)

	return nil
}

func (e *Env) sink(level zapcore.Level) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if ce := e.log.Check(level, strings.Join(parts, " ")); ce != nil {
			ce.Write(zap.String("origin", "artifact"))
		}
		return goja.Undefined()
	}
}
