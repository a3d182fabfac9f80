// Package loader turns raw Solidity compiler artifacts into instantiated,
// fully-initialized module instances. Artifacts come in two forms: an
// emscripten JavaScript build (evaluated with goja) and a raw WebAssembly
// build (instantiated with wazero). Known-buggy builds are patched at the
// source level before instantiation.
//
// Load imposes no internal timeout. An artifact whose initialization never
// completes blocks until the supplied context is cancelled; callers that
// want a deadline wrap the context themselves.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrModuleInitializationFailed indicates the artifact evaluated or
// instantiated incorrectly: the source is corrupt, or the generic native
// binding facility never appeared. Distinct from an interface mismatch.
var ErrModuleInitializationFailed = errors.New("compiler module initialization failed")

// Artifact is one compiler build, supplied either as source text or as a
// locator it can be fetched from. Consumed exactly once by Load.
type Artifact struct {
	Source  string
	Locator string
}

// Kind is the detected artifact form.
type Kind int

const (
	KindJS Kind = iota
	KindWASM
)

const wasmMagic = "\x00asm"

// DetectKind classifies artifact source by the WebAssembly magic bytes.
func DetectKind(source string) Kind {
	if strings.HasPrefix(source, wasmMagic) {
		return KindWASM
	}
	return KindJS
}

// Config controls a single load.
type Config struct {
	// Patching enables the source-level compatibility rewrites.
	Patching bool
	// Logger receives load diagnostics and artifact console output.
	Logger *zap.Logger
	// HTTP fetches locator-backed artifacts. Nil means a default client.
	HTTP *resty.Client
}

// DefaultConfig returns the standard load configuration: patching on,
// logging off.
func DefaultConfig() Config {
	return Config{Patching: true, Logger: zap.NewNop()}
}

// Load instantiates the artifact and returns a bound Instance. The caller
// owns the Instance and must Close it.
func Load(ctx context.Context, art Artifact, cfg Config) (Instance, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	src := art.Source
	if src == "" && art.Locator != "" {
		fetched, err := Fetch(ctx, art.Locator, cfg.HTTP)
		if err != nil {
			return nil, err
		}
		src = fetched
	}
	if src == "" {
		return nil, fmt.Errorf("%w: empty artifact", ErrModuleInitializationFailed)
	}

	if DetectKind(src) == KindWASM {
		return newWASMInstance(ctx, []byte(src), cfg)
	}

	if cfg.Patching {
		patched, rule := applyPatches(src)
		if rule != "" {
			cfg.Logger.Info("applied artifact patch", zap.String("rule", rule))
			src = patched
		}
	}
	return newJSInstance(src, cfg)
}
