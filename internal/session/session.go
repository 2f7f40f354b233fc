// Package session defines the automation-session handle that plugins
// manipulate. The session itself is owned by the embedding shell; this
// package only specifies the capability surface the plugin system consumes.
package session

import "context"

// Session is an opaque handle to a live browser-automation page.
//
// The plugin system passes the handle through to plugin code unmodified and
// never manages its lifetime. Implementations are expected to be safe for
// use from a single execution at a time; callers running concurrent plugin
// executions against the same session must serialize them.
type Session interface {
	// Evaluate runs a script expression in the page and returns its result.
	Evaluate(ctx context.Context, expression string) (any, error)

	// QuerySelector returns the first element matching the selector,
	// or nil if none matches.
	QuerySelector(ctx context.Context, selector string) (any, error)

	// QuerySelectorAll returns all elements matching the selector.
	QuerySelectorAll(ctx context.Context, selector string) ([]any, error)
}
