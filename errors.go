package solbind

import (
	"errors"

	"github.com/solbind/solbind/binding"
	"github.com/solbind/solbind/executor"
	"github.com/solbind/solbind/loader"
)

// The load/compile failure taxonomy. Compiler-emitted diagnostics are not
// part of it; they are data returned in Output.Errors.
var (
	// ErrModuleInitializationFailed: the artifact failed to instantiate or
	// never exposed its binding facility. Fatal, never retried here.
	ErrModuleInitializationFailed = loader.ErrModuleInitializationFailed

	// ErrNoCompatibleInterface: the artifact instantiated but no usable,
	// non-disabled calling convention was found. Fatal.
	ErrNoCompatibleInterface = binding.ErrNoCompatibleInterface

	// ErrTransportFailure: the execution context died underneath the
	// handle. The handle must be disposed and reconstructed.
	ErrTransportFailure = executor.ErrTransportFailure

	// ErrHandleDisposed: Compile was called after Dispose.
	ErrHandleDisposed = errors.New("compiler handle disposed")
)

// DiagnosticOutput renders a transport or initialization failure in the
// compiler's own error-envelope shape, letting callers that only inspect
// Output.Errors handle every failure class the same way.
func DiagnosticOutput(err error) *Output {
	return &Output{Errors: []Error{{
		Type:             "Error",
		Component:        "general",
		Severity:         "error",
		Message:          err.Error(),
		FormattedMessage: "Error: " + err.Error(),
	}}}
}
