package lua

import "errors"

// Runtime errors.
var (
	// ErrPathEscape is returned when a plugin file read resolves outside
	// the plugin's own directory.
	ErrPathEscape = errors.New("file access outside plugin directory")

	// ErrNoSession is returned when plugin code uses the page API without
	// an automation session attached to the execution.
	ErrNoSession = errors.New("no automation session attached")
)
