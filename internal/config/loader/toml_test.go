package loader

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestTOMLLoader_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"glint.toml": {Data: []byte(`
[highlight]
classPrefix = "hl-"
maxIterations = 500
languages = ["json", "bash"]

[theme]
name = "dark"
`)},
	}

	config, err := NewTOMLLoaderWithFS(fsys, "glint.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]any{
		"highlight": map[string]any{
			"classPrefix":   "hl-",
			"maxIterations": int64(500),
			"languages":     []any{"json", "bash"},
		},
		"theme": map[string]any{"name": "dark"},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(fstest.MapFS{}, "nope.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config != nil {
		t.Errorf("config = %v, want nil", config)
	}
}

func TestTOMLLoader_EmptyPath(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(fstest.MapFS{}, "").Load()
	if err != nil || config != nil {
		t.Errorf("Load() = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml": {Data: []byte("[highlight\nclassPrefix = 1\n")},
	}

	_, err := NewTOMLLoaderWithFS(fsys, "bad.toml").Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if pe.Path != "bad.toml" {
		t.Errorf("Path = %q, want bad.toml", pe.Path)
	}
	if pe.Line == 0 {
		t.Error("Line not set")
	}
}

func TestTOMLLoader_Includes(t *testing.T) {
	fsys := fstest.MapFS{
		"conf/glint.toml": {Data: []byte(`
include = ["base.toml", "theme/colors.toml"]

[highlight]
classPrefix = "main-"
`)},
		"conf/base.toml": {Data: []byte(`
[highlight]
classPrefix = "base-"
safeMode = false

[logging]
level = "debug"
`)},
		"conf/theme/colors.toml": {Data: []byte(`
[theme.scopes]
keyword = "blue bold"
`)},
	}

	config, err := NewTOMLLoaderWithFS(fsys, "conf/glint.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := map[string]any{
		"highlight": map[string]any{
			"classPrefix": "main-",
			"safeMode":    false,
		},
		"logging": map[string]any{"level": "debug"},
		"theme": map[string]any{
			"scopes": map[string]any{"keyword": "blue bold"},
		},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestTOMLLoader_IncludeCycle(t *testing.T) {
	fsys := fstest.MapFS{
		"a.toml": {Data: []byte(`include = "b.toml"`)},
		"b.toml": {Data: []byte(`include = "a.toml"`)},
	}

	_, err := NewTOMLLoaderWithFS(fsys, "a.toml").Load()
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("error = %v, want ErrIncludeDepth", err)
	}
}

func TestTOMLLoader_BadInclude(t *testing.T) {
	fsys := fstest.MapFS{
		"a.toml": {Data: []byte(`include = 3`)},
	}

	if _, err := NewTOMLLoaderWithFS(fsys, "a.toml").Load(); err == nil {
		t.Error("expected error for non-string include")
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"highlight": map[string]any{"classPrefix": "hljs-", "safeMode": true},
		"theme":     "plain",
	}
	src := map[string]any{
		"highlight": map[string]any{"safeMode": false},
		"theme":     map[string]any{"name": "dark"},
		"logging":   map[string]any{"level": "warn"},
	}

	got := DeepMerge(dst, src)
	want := map[string]any{
		"highlight": map[string]any{"classPrefix": "hljs-", "safeMode": false},
		"theme":     map[string]any{"name": "dark"},
		"logging":   map[string]any{"level": "warn"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DeepMerge mismatch (-want +got):\n%s", diff)
	}

	// Maps taken from src are copies.
	src["logging"].(map[string]any)["level"] = "error"
	if got["logging"].(map[string]any)["level"] != "warn" {
		t.Error("DeepMerge aliased a src map")
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"grammars": map[string]any{"dirs": []any{"a", "b"}},
	}
	dst := Clone(src)

	dst["grammars"].(map[string]any)["dirs"].([]any)[0] = "z"
	if src["grammars"].(map[string]any)["dirs"].([]any)[0] != "a" {
		t.Error("Clone shares slices with the source")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
