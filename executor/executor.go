// Package executor provides the two interchangeable execution contexts a
// compiler artifact can run under: in the caller's own goroutine, or inside
// an isolated worker goroutine reachable only via message passing. Both
// satisfy the same Context contract and are observably identical to the
// handle layer above them.
package executor

import (
	"context"
	"errors"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/solbind/solbind/loader"
)

var (
	// ErrTransportFailure indicates the execution context itself failed (a
	// terminated worker, a broken channel). The context is unusable and
	// must be torn down and reconstructed.
	ErrTransportFailure = errors.New("compiler transport failure")

	// ErrClosed indicates Send was called after Teardown.
	ErrClosed = errors.New("execution context closed")
)

// Context is one execution strategy. Send forwards compiler input JSON and
// returns output JSON; compiler-emitted diagnostics are data in the output,
// not an error. Teardown releases the context and is safe to call more
// than once.
type Context interface {
	Send(ctx context.Context, input string) (string, error)
	Teardown()
}

// Config controls context construction.
type Config struct {
	// Disabled lists descriptor names the resolver must never select.
	Disabled []string
	// Patching enables the loader's compatibility rewrites.
	Patching bool
	// Logger receives context diagnostics. Nil disables logging.
	Logger *zap.Logger
	// HTTP fetches locator-backed artifacts.
	HTTP *resty.Client
}

// DefaultConfig returns the standard context configuration.
func DefaultConfig() Config {
	return Config{Patching: true, Logger: zap.NewNop()}
}

func (c Config) normalized() Config {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func (c Config) loaderConfig() loader.Config {
	return loader.Config{Patching: c.Patching, Logger: c.Logger, HTTP: c.HTTP}
}
