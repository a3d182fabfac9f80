// Package fakesolc fabricates miniature compiler artifacts for tests: real
// JavaScript sources that instantiate under the loader and answer
// standard-JSON requests with plausible output, shaped export-for-export
// like the historical builds under test.
package fakesolc

import (
	"fmt"
	"strings"
)

// core is a tiny standard-JSON "compiler": every declared contract gets a
// canned ABI and bytecode, and a source with no contract at all yields a
// parser error the way the real compiler would.
const core = `
  function fakeCompile(inputText) {
    var input;
    try {
      input = JSON.parse(inputText);
    } catch (e) {
      return JSON.stringify({errors: [{
        type: "JSONError", component: "general", severity: "error",
        message: "Invalid JSON supplied: " + e.message,
        formattedMessage: "JSONError: invalid input"
      }]});
    }
    var out = {errors: [], contracts: {}, sources: {}};
    var id = 0;
    for (var path in input.sources) {
      var content = input.sources[path].content || "";
      out.sources[path] = {id: id++};
      var re = /contract\s+([A-Za-z_][A-Za-z0-9_]*)/g;
      var m, found = false;
      while ((m = re.exec(content)) !== null) {
        found = true;
        if (!out.contracts[path]) out.contracts[path] = {};
        out.contracts[path][m[1]] = {
          abi: [{inputs: [], stateMutability: "nonpayable", type: "constructor"}],
          metadata: "{\"compiler\":{\"version\":\"0.0.0-fake\"}}",
          evm: {
            bytecode: {object: "6080604052348015600e575f5ffd5b50607b80601a5f395ff3fe"},
            deployedBytecode: {object: "6080604052348015"}
          }
        };
      }
      if (!found) {
        out.errors.push({
          type: "ParserError", component: "general", severity: "error",
          message: "Expected pragma, import directive or contract/interface/library definition.",
          formattedMessage: "ParserError: Expected pragma (" + path + ")",
          sourceLocation: {file: path, start: 0, end: 0}
        });
      }
    }
    return JSON.stringify(out);
  }
`

// New returns artifact source exposing the miniature compiler under each of
// the given export names ("_"-prefixed, emscripten style), with a
// conventional cwrap facility and a ready callback.
func New(exports ...string) string {
	var b strings.Builder
	b.WriteString("(function() {\n")
	b.WriteString("  var M = typeof Module !== \"undefined\" ? Module : {};\n")
	b.WriteString(core)
	for _, name := range exports {
		fmt.Fprintf(&b, "  M[%q] = function(input) { return fakeCompile(input); };\n", name)
	}
	b.WriteString(`  M.cwrap = function(name, ret, params) {
    var fn = M["_" + name];
    if (!fn) throw new Error("cwrap: unknown function " + name);
    return fn;
  };
  if (typeof M.onRuntimeInitialized === "function") { M.onRuntimeInitialized(); }
  Module = M;
})();
`)
	return b.String()
}

// Modern exposes only the newest calling convention.
func Modern() string { return New("_solidity_compile") }

// Buggy reproduces the known defect: the native function is exported under
// an unprefixed name while the lookup helper only checks the prefixed one,
// so every bind fails unless the loader's patch rewrites the lookup.
func Buggy() string {
	return `(function() {
  var M = typeof Module !== "undefined" ? Module : {};
` + core + `
  M["solidity_compile"] = function(input) { return fakeCompile(input); };
  function getCFunc(ident) {
    var func = Module["_" + ident];
    if (!func) throw new Error("Cannot call unknown function " + ident);
    return func;
  }
  M.cwrap = function(name, ret, params) { return getCFunc(name); };
  Module = M;
})();
`
}

// NoCwrap evaluates cleanly but never exposes the binding facility.
func NoCwrap() string {
	return `(function() {
  var M = typeof Module !== "undefined" ? Module : {};
  M["_solidity_compile"] = function(input) { return "{}"; };
  Module = M;
})();
`
}

// Corrupt does not parse.
func Corrupt() string { return "function ( { this is not javascript" }

// Throwing exposes the modern convention but fails at compile time.
func Throwing() string {
	return `(function() {
  var M = typeof Module !== "undefined" ? Module : {};
  M["_solidity_compile"] = function(input) { throw new Error("internal compiler fault"); };
  M.cwrap = function(name, ret, params) {
    var fn = M["_" + name];
    if (!fn) throw new Error("cwrap: unknown function " + name);
    return fn;
  };
  Module = M;
})();
`
}

// Slow busy-waits for roughly the given number of milliseconds before
// compiling, to let tests catch a request in flight.
func Slow(ms int) string {
	return `(function() {
  var M = typeof Module !== "undefined" ? Module : {};
` + core + fmt.Sprintf(`
  M["_solidity_compile"] = function(input) {
    var until = Date.now() + %d;
    while (Date.now() < until) {}
    return fakeCompile(input);
  };
`, ms) + `  M.cwrap = function(name, ret, params) {
    var fn = M["_" + name];
    if (!fn) throw new Error("cwrap: unknown function " + name);
    return fn;
  };
  Module = M;
})();
`
}
