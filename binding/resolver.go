package binding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solbind/solbind/loader"
)

// ErrNoCompatibleInterface indicates the artifact instantiated but exposes
// no usable calling convention, possibly because every applicable one was
// disabled.
var ErrNoCompatibleInterface = errors.New("no compatible compiler interface")

// Resolved is the outcome of matching one instance against the catalog: a
// bound compile function plus the name of the descriptor chosen.
type Resolved struct {
	Name    string
	Compile loader.CompileFn
}

// Resolve walks the catalog in preference order, skipping disabled
// descriptors, and binds the first one whose signature export is present.
// Artifacts that omit the conventional signature markers but still expose a
// bindable entry point are handled by a last-resort pass that attempts each
// remaining binding directly. Resolution never invokes compile.
func Resolve(inst loader.Instance, disabled []string) (Resolved, error) {
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}

	for _, d := range Catalog {
		if skip[d.Name] || !inst.Has(d.Signature) {
			continue
		}
		fn, err := inst.Bind(d.Entry, d.Tail)
		if err != nil {
			// The signature marker was present, so a bind failure is an
			// artifact defect rather than a plain mismatch.
			return Resolved{}, fmt.Errorf("bind %s: %w", d.Name, err)
		}
		return Resolved{Name: d.Name, Compile: fn}, nil
	}

	for _, d := range Catalog {
		if skip[d.Name] {
			continue
		}
		if fn, err := inst.Bind(d.Entry, d.Tail); err == nil {
			return Resolved{Name: d.Name, Compile: fn}, nil
		}
	}

	return Resolved{}, fmt.Errorf("%w: exports present: %s",
		ErrNoCompatibleInterface, strings.Join(inst.Exports(), ", "))
}
