package hostenv

import (
	"testing"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newVM(t *testing.T, log *zap.Logger) *goja.Runtime {
	t.Helper()
	vm := goja.New()
	module := vm.NewObject()
	if err := New(log).Install(vm, module); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := vm.Set("Module", module); err != nil {
		t.Fatalf("Set Module: %v", err)
	}
	return vm
}

func TestConsoleRoutesToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	vm := newVM(t, zap.New(core))

	if _, err := vm.RunString(`
		console.log("hello", 42);
		console.error("broken");
		Module.print("from print");
		Module.printErr("from printErr");
	`); err != nil {
		t.Fatalf("RunString: %v", err)
	}

	all := logs.All()
	if len(all) != 4 {
		t.Fatalf("got %d log entries, want 4", len(all))
	}
	if all[0].Message != "hello 42" {
		t.Errorf("first entry = %q", all[0].Message)
	}
	if all[1].Level != zap.ErrorLevel {
		t.Errorf("console.error logged at %v", all[1].Level)
	}
	for _, entry := range all {
		if entry.ContextMap()["origin"] != "artifact" {
			t.Errorf("entry %q missing origin field", entry.Message)
		}
	}
}

func TestTimersAreNeutered(t *testing.T) {
	vm := newVM(t, zap.NewNop())
	v, err := vm.RunString(`typeof setTimeout === "function" && setTimeout(function(){}, 10) === undefined`)
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	if !v.ToBoolean() {
		t.Error("setTimeout is not a neutered function")
	}
}

func TestProcessBindings(t *testing.T) {
	vm := newVM(t, zap.NewNop())
	v, err := vm.RunString(`process.cwd()`)
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	if v.String() != "/" {
		t.Errorf("process.cwd() = %q, want /", v.String())
	}
}

func TestNilLoggerDiscards(t *testing.T) {
	vm := goja.New()
	module := vm.NewObject()
	if err := New(nil).Install(vm, module); err != nil {
		t.Fatalf("Install: %v", err)
	}
	vm.Set("Module", module)
	if _, err := vm.RunString(`Module.print("dropped")`); err != nil {
		t.Fatalf("RunString: %v", err)
	}
}
