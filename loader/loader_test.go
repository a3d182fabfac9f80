package loader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbind/solbind/internal/fakesolc"
	"github.com/solbind/solbind/loader"
)

func TestDetectKind(t *testing.T) {
	assert.Equal(t, loader.KindWASM, loader.DetectKind("\x00asm\x01\x00\x00\x00"))
	assert.Equal(t, loader.KindJS, loader.DetectKind("var Module = {};"))
	assert.Equal(t, loader.KindJS, loader.DetectKind(""))
}

func TestLoadJS(t *testing.T) {
	inst, err := loader.Load(context.Background(),
		loader.Artifact{Source: fakesolc.Modern()}, loader.DefaultConfig())
	require.NoError(t, err)
	defer inst.Close()

	assert.True(t, inst.Has("_solidity_compile"))
	assert.False(t, inst.Has("_compileStandard"))
	assert.Contains(t, inst.Exports(), "_solidity_compile")

	compile, err := inst.Bind("solidity_compile", []loader.Arg{loader.NumberArg(0)})
	require.NoError(t, err)

	out, err := compile(`{"language":"Solidity","sources":{"a.sol":{"content":"contract A {}"}}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"contracts"`)
	assert.Contains(t, out, `"A"`)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"corrupt javascript", fakesolc.Corrupt()},
		{"missing binding facility", fakesolc.NoCwrap()},
		{"empty artifact", ""},
		{"corrupt wasm", "\x00asm\x01\x00\x00\x00garbage"},
		// A structurally valid module with no memory or allocator exports
		// initializes but cannot be bound against.
		{"bare wasm module", "\x00asm\x01\x00\x00\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(context.Background(),
				loader.Artifact{Source: tt.src}, loader.DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, loader.ErrModuleInitializationFailed)
		})
	}
}

func TestLoadPatchesBuggyBuild(t *testing.T) {
	ctx := context.Background()

	patched, err := loader.Load(ctx, loader.Artifact{Source: fakesolc.Buggy()}, loader.DefaultConfig())
	require.NoError(t, err)
	defer patched.Close()

	compile, err := patched.Bind("solidity_compile", nil)
	require.NoError(t, err)
	out, err := compile(`{"sources":{"t.sol":{"content":"contract T {}"}}}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"T"`)

	cfg := loader.DefaultConfig()
	cfg.Patching = false
	unpatched, err := loader.Load(ctx, loader.Artifact{Source: fakesolc.Buggy()}, cfg)
	require.NoError(t, err, "the artifact itself initializes either way")
	defer unpatched.Close()

	_, err = unpatched.Bind("solidity_compile", nil)
	assert.Error(t, err, "unpatched lookup helper only checks the prefixed name")
}

func TestLoadFromLocator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fakesolc.Modern()))
	}))
	defer srv.Close()

	inst, err := loader.Load(context.Background(),
		loader.Artifact{Locator: srv.URL + "/soljson.js"}, loader.DefaultConfig())
	require.NoError(t, err)
	defer inst.Close()
	assert.True(t, inst.Has("_solidity_compile"))
}

func TestLoadFromLocatorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := loader.Load(context.Background(),
		loader.Artifact{Locator: srv.URL + "/missing.js"}, loader.DefaultConfig())
	require.Error(t, err)
}

func TestInstanceClose(t *testing.T) {
	inst, err := loader.Load(context.Background(),
		loader.Artifact{Source: fakesolc.Modern()}, loader.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, inst.Close())
	require.NoError(t, inst.Close(), "close is idempotent")

	assert.False(t, inst.Has("_solidity_compile"))
	_, err = inst.Bind("solidity_compile", nil)
	assert.Error(t, err)
}
