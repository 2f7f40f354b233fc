package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Manager owns the registry of loaded plugins.
//
// It is the only component holding long-lived references to Plugin
// values. The host constructs one Manager per application lifetime and
// passes it explicitly to collaborators; there is no package-level
// singleton.
type Manager struct {
	mu      sync.RWMutex
	plugins map[string]*Plugin
	order   []string // registration order, for deterministic enumeration

	loader *Loader
	logger *slog.Logger
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// PluginRoot is the directory whose subdirectories are plugin packages.
	PluginRoot string

	// LoadParallelism bounds concurrent package loads during Initialize.
	LoadParallelism int

	// Logger receives registry and execution diagnostics.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// NewManager creates a Manager with an empty registry.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		plugins: make(map[string]*Plugin),
		loader: NewLoader(cfg.PluginRoot,
			WithLoadParallelism(cfg.LoadParallelism),
			WithLoaderLogger(logger)),
		logger: logger,
	}
}

// Initialize discovers and registers all loadable plugins under the
// plugin root. Individual package failures are logged by the loader and
// skipped; Initialize itself only fails on caller cancellation.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	plugins := m.loader.LoadAll(ctx)
	for _, p := range plugins {
		m.Register(p)
	}

	m.logger.Info("plugin system initialized",
		"root", m.loader.Root(), "loaded", len(plugins))
	return ctx.Err()
}

// Register inserts a plugin into the registry. Registration always
// succeeds: a duplicate id logs a warning and overwrites the existing
// entry (last write wins), keeping its original enumeration position.
func (m *Manager) Register(p *Plugin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := p.ID()
	if _, exists := m.plugins[id]; exists {
		m.logger.Warn("plugin already registered, overwriting", "plugin", id)
	} else {
		m.order = append(m.order, id)
	}
	m.plugins[id] = p

	registeredPlugins.Set(float64(len(m.plugins)))
	return true
}

// Unregister removes a plugin, invoking its cleanup hook first.
// Returns false if the id is not registered.
func (m *Manager) Unregister(id string) bool {
	m.mu.Lock()
	p, exists := m.plugins[id]
	if !exists {
		m.mu.Unlock()
		return false
	}
	delete(m.plugins, id)
	m.removeFromOrder(id)
	registeredPlugins.Set(float64(len(m.plugins)))
	m.mu.Unlock()

	if p.Cleanup != nil {
		if err := p.Cleanup(); err != nil {
			m.logger.Warn("plugin cleanup failed", "plugin", id, "error", err)
		}
	}
	return true
}

// Execute runs a registered plugin inside a fresh sandbox.
//
// An unknown id yields a failed result, never an error or panic. Script
// failures are isolated per call and converted to failed results by the
// plugin itself.
func (m *Manager) Execute(ctx context.Context, id string, ectx ExecutionContext) ExecutionResult {
	m.mu.RLock()
	p, exists := m.plugins[id]
	m.mu.RUnlock()

	if !exists {
		executionsTotal.WithLabelValues(id, "not_found").Inc()
		return failure("plugin not found: %s", id)
	}

	execID := uuid.NewString()
	m.logger.Debug("executing plugin", "plugin", id, "execution", execID)

	res := p.Execute(ctx, ectx)
	if res.Success {
		executionsTotal.WithLabelValues(id, "success").Inc()
	} else {
		executionsTotal.WithLabelValues(id, "failure").Inc()
		m.logger.Warn("plugin execution failed",
			"plugin", id, "execution", execID, "error", res.Error)
	}
	return res
}

// Reload re-loads a registered plugin from its package directory and
// swaps the registry entry. Returns false for unknown ids.
//
// On load failure the previously registered plugin stays in place; the
// registry is never left without an entry because its package became
// momentarily unloadable.
func (m *Manager) Reload(ctx context.Context, id string) bool {
	m.mu.RLock()
	old, exists := m.plugins[id]
	m.mu.RUnlock()

	if !exists {
		return false
	}

	fresh, err := m.loader.Load(old.Path)
	if err != nil {
		reloadsTotal.WithLabelValues("failure").Inc()
		m.logger.Warn("plugin reload failed, keeping existing",
			"plugin", id, "error", err)
		return false
	}

	if old.Cleanup != nil {
		if err := old.Cleanup(); err != nil {
			m.logger.Warn("plugin cleanup failed", "plugin", id, "error", err)
		}
	}

	m.mu.Lock()
	if fresh.ID() == id {
		// Swap in place, preserving enumeration position.
		m.plugins[id] = fresh
		m.mu.Unlock()
	} else {
		// The manifest changed ids; treat as unregister + register.
		delete(m.plugins, id)
		m.removeFromOrder(id)
		m.mu.Unlock()
		m.Register(fresh)
	}

	reloadsTotal.WithLabelValues("success").Inc()
	m.logger.Info("plugin reloaded", "plugin", fresh.ID())
	return true
}

// Get returns a registered plugin by id.
func (m *Manager) Get(id string) (*Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.plugins[id]
	return p, exists
}

// All returns registered plugins in registration order.
func (m *Manager) All() []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// ByCategory returns registered plugins with the given category.
func (m *Manager) ByCategory(category Category) []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Plugin
	for _, p := range m.snapshotLocked() {
		if p.Descriptor.Category == category {
			result = append(result, p)
		}
	}
	return result
}

// ByTag returns registered plugins carrying the given tag.
func (m *Manager) ByTag(tag string) []*Plugin {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Plugin
	for _, p := range m.snapshotLocked() {
		if p.Descriptor.HasTag(tag) {
			result = append(result, p)
		}
	}
	return result
}

// Count returns the number of registered plugins.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}

// snapshotLocked returns plugins in registration order.
// Must be called with mu held.
func (m *Manager) snapshotLocked() []*Plugin {
	result := make([]*Plugin, 0, len(m.order))
	for _, id := range m.order {
		if p, exists := m.plugins[id]; exists {
			result = append(result, p)
		}
	}
	return result
}

// removeFromOrder removes an id from the registration order.
// Must be called with mu held.
func (m *Manager) removeFromOrder(id string) {
	for i, n := range m.order {
		if n == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return
		}
	}
}
