// Package binding selects a calling convention for a loaded compiler
// artifact. The compiler's native entry points changed names and argument
// shapes several times across its release history; the catalog records
// every known convention and Resolve picks the best one the artifact
// actually exposes.
package binding

import "github.com/solbind/solbind/loader"

// Descriptor is one historical calling convention: the export whose
// presence marks the convention as available, the entry point to bind, and
// the fixed trailing arguments its marshaling requires after the input
// text. Static data, never mutated at runtime.
type Descriptor struct {
	// Name identifies the descriptor in diagnostics and disable lists.
	Name string
	// Signature is the export probed to test applicability, in the
	// emscripten "_"-prefixed form.
	Signature string
	// Entry is the native function name handed to the binding facility.
	Entry string
	// Tail is the fixed argument list appended after the input text.
	Tail []loader.Arg
}

// Catalog lists the known conventions in preference order, newest first.
// The marshaling of each entry reproduces the observed behavior of the
// released artifacts; none of it is guesswork.
var Catalog = []Descriptor{
	{
		// Single entry point since 0.5.0; the trailing number selects the
		// callback/version behavior.
		Name:      "solidity-compile",
		Signature: "_solidity_compile",
		Entry:     "solidity_compile",
		Tail:      []loader.Arg{loader.NumberArg(0)},
	},
	{
		// Standard-JSON convention of the 0.4.11+ builds; takes only the
		// JSON text.
		Name:      "compile-standard",
		Signature: "_compileStandard",
		Entry:     "compileStandard",
		Tail:      nil,
	},
	{
		// Multi-file legacy convention: auxiliary path plus a
		// boolean-as-number optimize flag.
		Name:      "compile-json-multi",
		Signature: "_compileJSONMulti",
		Entry:     "compileJSONMulti",
		Tail:      []loader.Arg{loader.StringArg(""), loader.NumberArg(1)},
	},
	{
		// Oldest single-file convention: optimize flag as a number.
		Name:      "compile-json",
		Signature: "_compileJSON",
		Entry:     "compileJSON",
		Tail:      []loader.Arg{loader.NumberArg(1)},
	},
}

// Lookup returns the descriptor with the given name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Catalog {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Names returns the catalog's descriptor names in preference order.
func Names() []string {
	names := make([]string, len(Catalog))
	for i, d := range Catalog {
		names[i] = d.Name
	}
	return names
}
