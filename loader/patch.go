package loader

import "strings"

// A rewrite of one exact substring, gated on its presence.
type rewrite struct {
	old string
	new string
}

// PatchRule is a signature-gated source transform applied to an artifact
// before instantiation. Rules are static, stateless and ordered; loading
// short-circuits on the first rule whose trigger is present.
type PatchRule struct {
	Name     string
	rewrites []rewrite
}

// Matches reports whether any of the rule's trigger substrings is present.
func (r PatchRule) Matches(src string) bool {
	for _, rw := range r.rewrites {
		if strings.Contains(src, rw.old) {
			return true
		}
	}
	return false
}

// Apply performs the rule's rewrites. Only triggered rewrites change the
// source; untriggered ones leave it untouched.
func (r PatchRule) Apply(src string) string {
	for _, rw := range r.rewrites {
		src = strings.ReplaceAll(src, rw.old, rw.new)
	}
	return src
}

// Some historical builds export their native functions under unprefixed
// names while the emscripten lookup helper only checks the "_"-prefixed
// form, so every cwrap call fails. The rewrite makes the lookup accept the
// unprefixed form as well. Both quoting styles seen in released builds are
// covered; the rule never fires unless the exact buggy lookup is present.
var patchRules = []PatchRule{
	{
		Name: "unprefixed-exports",
		rewrites: []rewrite{
			{
				old: `var func = Module["_" + ident];`,
				new: `var func = Module["_" + ident] || Module[ident];`,
			},
			{
				old: `var func = Module['_' + ident];`,
				new: `var func = Module['_' + ident] || Module[ident];`,
			},
		},
	},
}

// applyPatches runs the rule list against the artifact source and returns
// the (possibly rewritten) source plus the name of the rule that fired, or
// "" when none did.
func applyPatches(src string) (string, string) {
	for _, rule := range patchRules {
		if rule.Matches(src) {
			return rule.Apply(src), rule.Name
		}
	}
	return src, ""
}
