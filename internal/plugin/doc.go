// Package plugin provides the plugin system for pagedeck.
//
// Plugins are third-party extension packages that augment a
// browser-automation session with visual effects, DOM decorations and
// interaction helpers. Each plugin is a directory under the plugin root
// containing a plugin.json manifest and a plugin.lua entry script:
//
//	~/.config/pagedeck/plugins/glow-effect/
//	├── plugin.json      # Manifest
//	└── plugin.lua       # Entry script
//
// The Manager owns the registry of loaded plugins. The host constructs
// one Manager per application lifetime and passes it to collaborators
// explicitly:
//
//	mgr := plugin.NewManager(plugin.ManagerConfig{PluginRoot: root})
//	if err := mgr.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	res := mgr.Execute(ctx, "glow-effect", plugin.ExecutionContext{
//	    Session:    sess,
//	    Parameters: map[string]any{"color": "#ffd700"},
//	})
//
// Entry scripts run inside a sandbox that exposes only the automation
// session, the caller's parameters, a namespaced logger and file reads
// confined to the plugin directory; see the lua subpackage.
//
// # Manifest
//
// The plugin.json manifest describes the plugin:
//
//	{
//	  "id": "glow-effect",
//	  "name": "Glow Effect",
//	  "version": "1.0.0",
//	  "description": "Adds a glow to matched elements",
//	  "category": "visual-effects",
//	  "tags": ["glow", "highlight"],
//	  "parameters": [
//	    {"name": "color", "type": "string", "default": "#ffd700"}
//	  ]
//	}
//
// id, name, version, description and category are required; enabled
// defaults to true and everything else to empty. Failed executions surface as ExecutionResult
// values, never as panics, so a misbehaving plugin cannot crash the host.
package plugin
