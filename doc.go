// Package solbind loads Solidity compiler artifacts of any version and
// exposes one uniform "standard-JSON in, standard-JSON out" contract.
//
// An artifact is a single compiler build (an emscripten JavaScript file or
// a raw WebAssembly binary) whose native entry-point names and calling
// conventions changed repeatedly across the compiler's release history.
// solbind instantiates the artifact in an isolated evaluation scope,
// detects which of the known calling conventions it exposes, patches
// known-buggy builds on the way in, and returns a Handle bound to the best
// convention found.
//
// # Basic Usage
//
//	src, _ := os.ReadFile("soljson-v0.8.24.js")
//	handle, err := solbind.Load(ctx, string(src))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer handle.Dispose()
//
//	out, err := handle.Compile(ctx, &solbind.Input{
//	    Language: "Solidity",
//	    Sources:  map[string]solbind.Source{"t.sol": {Content: code}},
//	    Settings: solbind.DefaultSettings(),
//	})
//
// # Execution Contexts
//
// By default everything runs in the caller's goroutine. WithWorker moves
// loading, resolution and compilation into an isolated worker goroutine
// reachable only via message passing:
//
//	handle, err := solbind.Load(ctx, string(src), solbind.WithWorker())
//
// Both contexts present identical semantics; disposing a worker-backed
// handle terminates the worker and rejects any compile still in flight.
//
// # Failure Classes
//
// Compiler-emitted diagnostics are data: Compile resolves and the caller
// inspects Output.Errors. Transport and initialization failures are Go
// errors; DiagnosticOutput renders them in the compiler's own error shape
// so callers that only look at Output.Errors can treat both uniformly.
//
// Load imposes no internal timeout on artifact initialization; wrap the
// context with a deadline if one is wanted.
package solbind
