package lua

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/pagedeck/internal/session"
)

func TestSandboxStripsChunkLoaders(t *testing.T) {
	data, err := runProgram(t, `
		return {
			dofile = dofile == nil,
			loadfile = loadfile == nil,
			load = load == nil,
			loadstring = loadstring == nil,
			require = require == nil,
		}`, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	m := data.(map[string]any)
	for name, stripped := range m {
		if stripped != true {
			t.Errorf("%s should be stripped from the sandbox", name)
		}
	}
}

func TestSandboxParams(t *testing.T) {
	data, err := runProgram(t, `return params.color .. "/" .. tostring(params.count)`, Options{
		Parameters: map[string]any{"color": "#ffd700", "count": 3},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != "#ffd700/3" {
		t.Errorf("Run() = %v, want #ffd700/3", data)
	}
}

func TestSandboxLogPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := runProgram(t, `log.info("hello", "world")`, Options{
		PluginName: "glow-effect",
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "[glow-effect] hello world") {
		t.Errorf("log output missing plugin prefix: %s", out)
	}
	if !strings.Contains(out, "plugin=glow-effect") {
		t.Errorf("log output missing plugin attribute: %s", out)
	}
}

func TestSandboxPrintRoutedToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if _, err := runProgram(t, `print("from print")`, Options{
		PluginName: "printer",
		Logger:     logger,
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(buf.String(), "[printer] from print") {
		t.Errorf("print output not routed through namespaced log: %s", buf.String())
	}
}

func TestReadFileWithinPlugin(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "data.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := runProgram(t, `return read_file("data.txt")`, Options{PluginPath: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != "payload" {
		t.Errorf("read_file() = %v, want payload", data)
	}
}

func TestReadFileSubdirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "style.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := runProgram(t, `return read_file("assets/style.css")`, Options{PluginPath: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != "body{}" {
		t.Errorf("read_file() = %v, want body{}", data)
	}
}

func TestReadFileEscapeRejected(t *testing.T) {
	// Plugin dir nested inside a parent holding a secret the plugin must
	// never see.
	parent := t.TempDir()
	dir := filepath.Join(parent, "plugins", "victim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	escapes := []string{
		"../secret.txt",
		"../../secret.txt",
		"../../../../../../etc/passwd",
		"sub/../../../secret.txt",
	}
	for _, name := range escapes {
		_, err := runProgram(t, `return read_file("`+name+`")`, Options{PluginPath: dir})
		if err == nil {
			t.Errorf("read_file(%q) should be rejected", name)
			continue
		}
		if !strings.Contains(err.Error(), ErrPathEscape.Error()) {
			t.Errorf("read_file(%q) error = %v, want path escape", name, err)
		}
	}
}

func TestReadFileAbsolutePathRejected(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runProgram(t, `return read_file("`+outside+`")`, Options{PluginPath: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), ErrPathEscape.Error()) {
		t.Errorf("absolute path outside plugin dir should be rejected, got %v", err)
	}
}

func TestReadFileSymlinkEscapeRejected(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "victim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	secret := filepath.Join(parent, "secret.txt")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(secret, filepath.Join(dir, "alias.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	_, err := runProgram(t, `return read_file("alias.txt")`, Options{PluginPath: dir})
	if err == nil || !strings.Contains(err.Error(), ErrPathEscape.Error()) {
		t.Errorf("symlinked escape should be rejected, got %v", err)
	}
}

func TestPageWithoutSession(t *testing.T) {
	_, err := runProgram(t, `return page.evaluate("1+1")`, Options{})
	if err == nil || !strings.Contains(err.Error(), ErrNoSession.Error()) {
		t.Errorf("page API without session should fail, got %v", err)
	}
}

func TestPageEvaluate(t *testing.T) {
	rec := session.NewRecorder()
	rec.EvaluateFn = func(string) (any, error) { return float64(2), nil }

	data, err := runProgram(t, `return page.evaluate("1+1")`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != int64(2) {
		t.Errorf("evaluate = %v, want 2", data)
	}
	if got := rec.Evaluated(); len(got) != 1 || got[0] != "1+1" {
		t.Errorf("recorded evaluations = %v", got)
	}
}

func TestPageQuerySelector(t *testing.T) {
	rec := session.NewRecorder()
	rec.Elements["#title"] = []any{map[string]any{"tag": "h1"}}

	data, err := runProgram(t, `
		local el = page.query_selector("#title")
		return el.tag`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != "h1" {
		t.Errorf("query_selector tag = %v, want h1", data)
	}
}

func TestPageQuerySelectorAll(t *testing.T) {
	rec := session.NewRecorder()
	rec.Elements["a"] = []any{"first", "second"}

	data, err := runProgram(t, `return #page.query_selector_all("a")`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if data != int64(2) {
		t.Errorf("query_selector_all count = %v, want 2", data)
	}
}

func TestPageInjectCSS(t *testing.T) {
	rec := session.NewRecorder()

	data, err := runProgram(t, `return page.inject_css("body { margin: 0 }")`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	id, ok := data.(string)
	if !ok || !strings.HasPrefix(id, "pagedeck-style-") {
		t.Fatalf("inject_css id = %v, want pagedeck-style-* string", data)
	}

	scripts := rec.Evaluated()
	if len(scripts) != 1 {
		t.Fatalf("evaluated scripts = %d, want 1", len(scripts))
	}
	if !strings.Contains(scripts[0], `createElement("style")`) {
		t.Errorf("injected script missing style element: %s", scripts[0])
	}
	if !strings.Contains(scripts[0], "body { margin: 0 }") {
		t.Errorf("injected script missing css payload: %s", scripts[0])
	}
	if !strings.Contains(scripts[0], id) {
		t.Errorf("injected script missing element id %s: %s", id, scripts[0])
	}
}

func TestPageInjectScript(t *testing.T) {
	rec := session.NewRecorder()

	data, err := runProgram(t, `return page.inject_script("console.log(1)")`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	id, ok := data.(string)
	if !ok || !strings.HasPrefix(id, "pagedeck-script-") {
		t.Fatalf("inject_script id = %v, want pagedeck-script-* string", data)
	}

	scripts := rec.Evaluated()
	if len(scripts) != 1 || !strings.Contains(scripts[0], `createElement("script")`) {
		t.Errorf("injected script element missing: %v", scripts)
	}
}

// Two injections must never produce the same element id.
func TestInjectIDsUnique(t *testing.T) {
	rec := session.NewRecorder()

	data, err := runProgram(t, `
		local a = page.inject_css("a{}")
		local b = page.inject_css("b{}")
		return {a = a, b = b}`, Options{Session: rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	m := data.(map[string]any)
	if m["a"] == m["b"] {
		t.Errorf("inject ids must be unique, both were %v", m["a"])
	}
}

func TestSandboxRequiresPluginPath(t *testing.T) {
	_, err := NewSandbox(context.Background(), Options{})
	if err == nil {
		t.Error("NewSandbox() without plugin path should return error")
	}
}
