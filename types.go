package solbind

import "encoding/json"

// Input is the compiler's standard-JSON request. The core treats it as
// opaque pass-through: no validation happens here, and malformed input
// surfaces as compiler-emitted errors in the output rather than as a
// failed call.
type Input struct {
	Language string            `json:"language"`
	Sources  map[string]Source `json:"sources"`
	Settings json.RawMessage   `json:"settings,omitempty"`
}

// Source is one source unit of a compilation request.
type Source struct {
	Content string `json:"content"`
}

// DefaultSettings selects every output for every contract.
func DefaultSettings() json.RawMessage {
	return json.RawMessage(`{"outputSelection":{"*":{"*":["*"],"":["*"]}}}`)
}

// Output is the compiler's standard-JSON response. Bodies the core never
// inspects stay raw.
type Output struct {
	Errors    []Error                        `json:"errors,omitempty"`
	Contracts map[string]map[string]Contract `json:"contracts,omitempty"`
	Sources   map[string]json.RawMessage     `json:"sources,omitempty"`
}

// HasErrors reports whether the output carries at least one error-severity
// diagnostic. Warnings do not count.
func (o *Output) HasErrors() bool {
	for _, e := range o.Errors {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// Error is one compiler diagnostic. The same shape doubles as the error
// envelope for transport and initialization failures (see
// DiagnosticOutput), so a caller inspecting only Errors renders both
// failure classes uniformly.
type Error struct {
	Type             string `json:"type"`
	Component        string `json:"component"`
	Severity         string `json:"severity"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage,omitempty"`
	SourceLocation   *struct {
		File  string `json:"file"`
		Start int    `json:"start"`
		End   int    `json:"end"`
	} `json:"sourceLocation,omitempty"`
}

// Contract is one compiled contract entry.
type Contract struct {
	ABI      json.RawMessage `json:"abi,omitempty"`
	Metadata string          `json:"metadata,omitempty"`
	EVM      *EVM            `json:"evm,omitempty"`
}

// EVM holds the EVM-target artifacts of a compiled contract.
type EVM struct {
	Bytecode          *Bytecode       `json:"bytecode,omitempty"`
	DeployedBytecode  *Bytecode       `json:"deployedBytecode,omitempty"`
	MethodIdentifiers json.RawMessage `json:"methodIdentifiers,omitempty"`
}

// Bytecode is a bytecode object with its hex string payload.
type Bytecode struct {
	Object    string          `json:"object"`
	SourceMap string          `json:"sourceMap,omitempty"`
	LinkRefs  json.RawMessage `json:"linkReferences,omitempty"`
}
