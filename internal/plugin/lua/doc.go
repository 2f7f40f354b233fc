// Package lua provides the Lua runtime for the plugin system.
//
// A plugin's entry script is compiled once at load time into a Program.
// Every execution then runs the compiled chunk on a fresh, sandboxed Lua
// state: only the base, table, string and math libraries are opened, the
// chunk-loading primitives are removed, and the sole capabilities exposed
// to plugin code are
//
//   - page      — evaluate / query / inject helpers delegating to the
//     automation session
//   - params    — the caller-supplied parameter values
//   - log       — a logging facade that prefixes every message with the
//     plugin name before routing it to the host sink
//   - read_file — file reads confined to the plugin's own directory
//
// Nothing survives between executions; persistent state must live in the
// automation session or be passed back in via parameters.
package lua
