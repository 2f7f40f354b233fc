package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	plua "github.com/dshills/pagedeck/internal/plugin/lua"
)

// DefaultLoadParallelism is the default size of the LoadAll worker pool.
const DefaultLoadParallelism = 4

// Loader discovers and loads plugin packages from the plugin root
// directory. Each immediate subdirectory is one candidate package.
type Loader struct {
	root        string
	parallelism int
	logger      *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoadParallelism sets the LoadAll worker pool size.
func WithLoadParallelism(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = n
		}
	}
}

// WithLoaderLogger sets the logger for discovery diagnostics.
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a loader rooted at the given plugin directory.
func NewLoader(root string, opts ...LoaderOption) *Loader {
	l := &Loader{
		root:        root,
		parallelism: DefaultLoadParallelism,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the plugin root directory.
func (l *Loader) Root() string {
	return l.root
}

// Load loads a single plugin package from a directory.
//
// Loading resolves the directory, checks both required artifacts exist,
// parses and validates the manifest, then compiles the entry script.
// The script is compiled exactly once; only the sandbox is rebuilt per
// execution.
func (l *Loader) Load(dir string) (*Plugin, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("package directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("package path %s is not a directory", abs)
	}

	manifestPath := filepath.Join(abs, ManifestFile)
	if _, err := os.Stat(manifestPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingManifest, abs)
	}
	scriptPath := filepath.Join(abs, ScriptFile)
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingScript, abs)
	}

	desc, err := LoadDescriptor(manifestPath)
	if err != nil {
		return nil, err
	}
	if !desc.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrPluginDisabled, desc.ID)
	}

	if unknown := desc.UnknownPermissions(); len(unknown) > 0 {
		l.logger.Warn("plugin declares unknown permissions",
			"plugin", desc.ID, "permissions", unknown)
	}

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	program, err := plua.Compile(desc.ID, string(source))
	if err != nil {
		return nil, err
	}

	return &Plugin{
		Descriptor: desc,
		Path:       abs,
		program:    program,
		logger:     l.logger,
	}, nil
}

// LoadAll loads every package under the plugin root.
//
// Packages are independent, so loads are fanned out on a worker pool; a
// failure in one package is logged and skipped without aborting the rest.
// A missing root directory means "no plugins", not a fault. Results come
// back in directory-name order regardless of load scheduling.
func (l *Loader) LoadAll(ctx context.Context) []*Plugin {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("failed to read plugin root", "root", l.root, "error", err)
		}
		return nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		plugins []*Plugin
	)

	load := func(dir string) {
		defer wg.Done()
		if ctx.Err() != nil {
			return
		}

		p, err := l.Load(dir)
		if err != nil {
			if errors.Is(err, ErrPluginDisabled) {
				l.logger.Debug("skipping disabled plugin", "dir", dir)
			} else {
				l.logger.Warn("failed to load plugin", "dir", dir, "error", err)
			}
			return
		}

		mu.Lock()
		plugins = append(plugins, p)
		mu.Unlock()
	}

	pool, err := ants.NewPool(l.parallelism)
	if err != nil {
		pool = nil
	} else {
		defer pool.Release()
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(l.root, entry.Name())
		wg.Add(1)
		if pool == nil || pool.Submit(func() { load(dir) }) != nil {
			load(dir)
		}
	}
	wg.Wait()

	sort.Slice(plugins, func(i, j int) bool {
		return filepath.Base(plugins[i].Path) < filepath.Base(plugins[j].Path)
	})
	return plugins
}
