package plugin

import (
	"context"
	"fmt"
	"log/slog"

	plua "github.com/dshills/pagedeck/internal/plugin/lua"
	"github.com/dshills/pagedeck/internal/session"
)

// Plugin is a loaded, executable plugin package.
//
// The entry script is compiled once at load time; each Execute call runs
// the compiled program inside a freshly built sandbox so no state leaks
// between invocations.
type Plugin struct {
	// Descriptor is the validated manifest. Immutable.
	Descriptor *Descriptor

	// Path is the absolute package directory. File reads from plugin
	// code are confined to it.
	Path string

	// Cleanup, when set, is invoked by the Manager on unregistration.
	Cleanup func() error

	program *plua.Program
	logger  *slog.Logger
}

// ExecutionContext carries the caller-supplied inputs for one execution.
// The session handle is owned by the caller; the plugin system never
// manages its lifetime.
type ExecutionContext struct {
	Session    session.Session
	Parameters map[string]any
}

// ExecutionResult reports the outcome of a plugin execution.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// failure builds a failed ExecutionResult from an error message.
func failure(format string, args ...any) ExecutionResult {
	return ExecutionResult{Success: false, Error: fmt.Sprintf(format, args...)}
}

// ID returns the plugin's stable identifier.
func (p *Plugin) ID() string {
	return p.Descriptor.ID
}

// Execute runs the compiled entry script inside a fresh sandbox.
//
// Script errors, sandbox security errors and panics are all converted to
// a failed ExecutionResult; Execute never panics. There is no built-in
// timeout: a caller needing bounded latency passes a context with a
// deadline, and expiry surfaces as an execution failure.
func (p *Plugin) Execute(ctx context.Context, ectx ExecutionContext) (res ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failure("plugin %s panicked: %v", p.ID(), r)
		}
	}()

	sb, err := plua.NewSandbox(ctx, plua.Options{
		PluginName: p.Descriptor.Name,
		PluginPath: p.Path,
		Session:    ectx.Session,
		Parameters: ectx.Parameters,
		Logger:     p.logger,
	})
	if err != nil {
		return failure("failed to build sandbox: %v", err)
	}
	defer sb.Close()

	data, err := p.program.Run(sb)
	if err != nil {
		return failure("%v", err)
	}

	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("%s executed", p.Descriptor.Name),
		Data:    data,
	}
}
