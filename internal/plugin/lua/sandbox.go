package lua

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pagedeck/internal/session"
)

// Options describe a single plugin execution.
type Options struct {
	// PluginName namespaces log output.
	PluginName string

	// PluginPath is the absolute plugin directory; file reads are
	// confined to it.
	PluginPath string

	// Session is the automation-session handle, passed through to plugin
	// code unmodified. May be nil, in which case page operations fail.
	Session session.Session

	// Parameters are the caller-supplied parameter values.
	Parameters map[string]any

	// Logger is the host logging sink. Defaults to slog.Default().
	Logger *slog.Logger
}

// Sandbox is the capability-restricted environment for one plugin
// execution. It is built fresh per call and must be closed afterwards;
// no state persists between executions.
type Sandbox struct {
	L *lua.LState

	ctx        context.Context
	pluginName string
	pluginPath string
	sess       session.Session
	logger     *slog.Logger
}

// chunk-loading primitives that would let scripts escape the sandbox.
var strippedGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require"}

// NewSandbox builds the execution environment for one plugin call.
// The context bounds the whole execution: cancellation or deadline expiry
// interrupts running Lua code.
func NewSandbox(ctx context.Context, opts Options) (*Sandbox, error) {
	if opts.PluginPath == "" {
		return nil, fmt.Errorf("plugin path is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	s := &Sandbox{
		L:          L,
		ctx:        ctx,
		pluginName: opts.PluginName,
		pluginPath: opts.PluginPath,
		sess:       opts.Session,
		logger:     opts.Logger.With("plugin", opts.PluginName),
	}

	openSafeLibraries(L)
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(ctx)

	s.installParams(opts.Parameters)
	s.installLog()
	s.installReadFile()
	s.installPage()

	return s, nil
}

// openSafeLibraries opens only side-effect-free Lua standard libraries.
// io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Close releases the underlying Lua state.
func (s *Sandbox) Close() {
	s.L.Close()
}

// installParams exposes the caller-supplied parameter values.
func (s *Sandbox) installParams(params map[string]any) {
	if params == nil {
		params = map[string]any{}
	}
	s.L.SetGlobal("params", ToLua(s.L, params))
}

// installLog exposes the namespaced logging facade. Every message is
// prefixed with the plugin name so plugin output can never masquerade as
// host output. print is routed to the same sink.
func (s *Sandbox) installLog() {
	logMod := s.L.NewTable()
	s.L.SetField(logMod, "info", s.L.NewFunction(s.logFunc(slog.LevelInfo)))
	s.L.SetField(logMod, "warn", s.L.NewFunction(s.logFunc(slog.LevelWarn)))
	s.L.SetField(logMod, "error", s.L.NewFunction(s.logFunc(slog.LevelError)))
	s.L.SetGlobal("log", logMod)

	s.L.SetGlobal("print", s.L.NewFunction(s.logFunc(slog.LevelInfo)))
}

func (s *Sandbox) logFunc(level slog.Level) lua.LGFunction {
	return func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.Get(i).String())
		}
		msg := fmt.Sprintf("[%s] %s", s.pluginName, strings.Join(parts, " "))
		s.logger.Log(s.ctx, level, msg)
		return 0
	}
}

// installReadFile exposes the confined file-read primitive.
func (s *Sandbox) installReadFile() {
	s.L.SetGlobal("read_file", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		data, err := readPluginFile(s.pluginPath, name)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LString(data))
		return 1
	}))
}

// installPage exposes the automation-session helpers.
func (s *Sandbox) installPage() {
	page := s.L.NewTable()
	s.L.SetField(page, "evaluate", s.L.NewFunction(s.pageEvaluate))
	s.L.SetField(page, "query_selector", s.L.NewFunction(s.pageQuerySelector))
	s.L.SetField(page, "query_selector_all", s.L.NewFunction(s.pageQuerySelectorAll))
	s.L.SetField(page, "inject_css", s.L.NewFunction(s.pageInjectCSS))
	s.L.SetField(page, "inject_script", s.L.NewFunction(s.pageInjectScript))
	s.L.SetGlobal("page", page)
}

func (s *Sandbox) requireSession(L *lua.LState) session.Session {
	if s.sess == nil {
		L.RaiseError("%s", ErrNoSession.Error())
	}
	return s.sess
}

func (s *Sandbox) pageEvaluate(L *lua.LState) int {
	expr := L.CheckString(1)
	result, err := s.requireSession(L).Evaluate(s.ctx, expr)
	if err != nil {
		L.RaiseError("evaluate failed: %s", err.Error())
		return 0
	}
	L.Push(ToLua(L, result))
	return 1
}

func (s *Sandbox) pageQuerySelector(L *lua.LState) int {
	sel := L.CheckString(1)
	el, err := s.requireSession(L).QuerySelector(s.ctx, sel)
	if err != nil {
		L.RaiseError("query_selector failed: %s", err.Error())
		return 0
	}
	L.Push(ToLua(L, el))
	return 1
}

func (s *Sandbox) pageQuerySelectorAll(L *lua.LState) int {
	sel := L.CheckString(1)
	els, err := s.requireSession(L).QuerySelectorAll(s.ctx, sel)
	if err != nil {
		L.RaiseError("query_selector_all failed: %s", err.Error())
		return 0
	}
	L.Push(ToLua(L, els))
	return 1
}

// injectClock guarantees distinct ids for back-to-back injections that
// land on the same clock reading.
var injectClock atomic.Int64

// uniqueElementID returns a timestamp-based, strictly increasing id.
func uniqueElementID(prefix string) string {
	now := time.Now().UnixNano()
	for {
		last := injectClock.Load()
		if now <= last {
			now = last + 1
		}
		if injectClock.CompareAndSwap(last, now) {
			return fmt.Sprintf("%s-%d", prefix, now)
		}
	}
}

// pageInjectCSS inserts a uniquely identified style element into the
// session document and returns its id.
func (s *Sandbox) pageInjectCSS(L *lua.LState) int {
	css := L.CheckString(1)
	id := uniqueElementID("pagedeck-style")
	script := fmt.Sprintf(
		`(function(){var el=document.createElement("style");el.id=%s;el.textContent=%s;document.head.appendChild(el);return el.id;})()`,
		jsString(id), jsString(css))

	if _, err := s.requireSession(L).Evaluate(s.ctx, script); err != nil {
		L.RaiseError("inject_css failed: %s", err.Error())
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// pageInjectScript inserts a uniquely identified script element into the
// session document and returns its id.
func (s *Sandbox) pageInjectScript(L *lua.LState) int {
	src := L.CheckString(1)
	id := uniqueElementID("pagedeck-script")
	script := fmt.Sprintf(
		`(function(){var el=document.createElement("script");el.id=%s;el.textContent=%s;(document.body||document.documentElement).appendChild(el);return el.id;})()`,
		jsString(id), jsString(src))

	if _, err := s.requireSession(L).Evaluate(s.ctx, script); err != nil {
		L.RaiseError("inject_script failed: %s", err.Error())
		return 0
	}
	L.Push(lua.LString(id))
	return 1
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// readPluginFile reads a file confined to the plugin directory.
//
// Both the plugin root and the requested path are canonicalized to
// absolute, symlink-resolved form; a strict containment check on the
// resolved paths rejects traversal via ".." segments and via symlinks.
func readPluginFile(root, name string) ([]byte, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve plugin directory: %w", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return nil, fmt.Errorf("resolve plugin directory: %w", err)
	}

	target := name
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, name)
	}
	target = filepath.Clean(target)

	// Lexical check first so escapes are rejected even for paths that
	// do not exist.
	if !contained(rootAbs, target) && !contained(resolvedRoot, target) {
		return nil, fmt.Errorf("%w: %s", ErrPathEscape, name)
	}

	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !contained(resolvedRoot, resolved) {
		return nil, fmt.Errorf("%w: %s", ErrPathEscape, name)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// contained reports whether path is root or lies beneath it.
func contained(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
