package loader

import (
	"strings"
	"testing"
)

func TestApplyPatches(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantRule string
		wantSub  string
	}{
		{
			name:     "double quoted lookup",
			src:      `function getCFunc(ident) { var func = Module["_" + ident]; return func; }`,
			wantRule: "unprefixed-exports",
			wantSub:  `var func = Module["_" + ident] || Module[ident];`,
		},
		{
			name:     "single quoted lookup",
			src:      `function getCFunc(ident) { var func = Module['_' + ident]; return func; }`,
			wantRule: "unprefixed-exports",
			wantSub:  `var func = Module['_' + ident] || Module[ident];`,
		},
		{
			name:     "unrelated source untouched",
			src:      `var func = Module.lookup(ident);`,
			wantRule: "",
			wantSub:  `var func = Module.lookup(ident);`,
		},
		{
			name:     "near miss does not fire",
			src:      `var fn = Module["_" + ident];`,
			wantRule: "",
			wantSub:  `var fn = Module["_" + ident];`,
		},
		{
			name:     "empty source",
			src:      "",
			wantRule: "",
			wantSub:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := applyPatches(tt.src)
			if rule != tt.wantRule {
				t.Errorf("rule = %q, want %q", rule, tt.wantRule)
			}
			if !strings.Contains(got, tt.wantSub) && tt.wantSub != "" {
				t.Errorf("patched source missing %q:\n%s", tt.wantSub, got)
			}
			if tt.wantRule == "" && got != tt.src {
				t.Errorf("untriggered patch modified source:\n%s", got)
			}
		})
	}
}

func TestPatchRuleIdempotent(t *testing.T) {
	src := `var func = Module["_" + ident];`
	once, rule := applyPatches(src)
	if rule == "" {
		t.Fatal("expected rule to fire")
	}
	// Re-running must not stack another rewrite onto the fixed form.
	if strings.Count(once, "|| Module[ident]") != 1 {
		t.Errorf("unexpected rewrite result: %s", once)
	}
}

func BenchmarkApplyPatches(b *testing.B) {
	src := strings.Repeat("var x = nothingInteresting(i);\n", 2048) +
		`var func = Module["_" + ident];`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		applyPatches(src)
	}
}
