package executor

import (
	"errors"

	"github.com/solbind/solbind/binding"
	"github.com/solbind/solbind/loader"
)

// Error envelope kinds carried across the worker message boundary.
const (
	KindModuleInit     = "module-init"
	KindNoInterface    = "no-compatible-interface"
	KindCompileFailure = "compile"
	KindTransport      = "transport"
)

// request is one compile call crossing into the worker. Payloads are plain
// data; nothing live crosses the boundary.
type request struct {
	ID    string `json:"id"`
	Input string `json:"input"`
}

// response answers exactly one request, correlated by ID.
type response struct {
	ID     string    `json:"id"`
	Output string    `json:"output,omitempty"`
	Err    *Envelope `json:"error,omitempty"`
}

// Envelope is the structured error shape used whenever a failure inside
// the worker must surface on the caller side. It implements error and
// unwraps to the matching sentinel so errors.Is works across the boundary.
type Envelope struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *Envelope) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Envelope) Unwrap() error {
	switch e.Kind {
	case KindModuleInit:
		return loader.ErrModuleInitializationFailed
	case KindNoInterface:
		return binding.ErrNoCompatibleInterface
	case KindTransport:
		return ErrTransportFailure
	default:
		return nil
	}
}

// envelopeFor classifies an error that occurred inside the worker.
func envelopeFor(err error, detail string) *Envelope {
	kind := KindCompileFailure
	switch {
	case errors.Is(err, loader.ErrModuleInitializationFailed):
		kind = KindModuleInit
	case errors.Is(err, binding.ErrNoCompatibleInterface):
		kind = KindNoInterface
	case errors.Is(err, ErrTransportFailure):
		kind = KindTransport
	}
	return &Envelope{Kind: kind, Message: err.Error(), Detail: detail}
}
