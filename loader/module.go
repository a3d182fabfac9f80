package loader

// CompileFn is the uniform entry point bound against a loaded compiler
// artifact: standard-JSON (or legacy-JSON) text in, JSON text out.
type CompileFn func(input string) (string, error)

// ArgKind discriminates how a fixed trailing argument is marshaled when
// binding a native entry point.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgNumber
)

// Arg is one fixed trailing argument appended after the input text when a
// bound entry point is invoked. The historical calling conventions differ
// only in these trailing arguments.
type Arg struct {
	Kind ArgKind
	Str  string
	Num  int64
}

// StringArg returns a fixed string argument.
func StringArg(s string) Arg { return Arg{Kind: ArgString, Str: s} }

// NumberArg returns a fixed numeric argument.
func NumberArg(n int64) Arg { return Arg{Kind: ArgNumber, Num: n} }

// Instance is an instantiated, initialized compiler artifact inside one
// execution context. Implementations are not safe for concurrent Bind or
// compile calls from multiple goroutines; they serialize internally.
type Instance interface {
	// Has reports whether the artifact exposes the named export. Names use
	// the emscripten convention (native exports carry a "_" prefix).
	Has(name string) bool

	// Exports lists the export names present on the artifact, for
	// diagnostics when no known interface matches.
	Exports() []string

	// Bind binds the named native entry point with the given fixed trailing
	// arguments and returns the uniform compile function.
	Bind(entry string, tail []Arg) (CompileFn, error)

	// Close releases the resources backing the instance.
	Close() error
}
