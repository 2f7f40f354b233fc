package plugin

import "errors"

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when a plugin cannot be located.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrMissingManifest is returned when a package has no plugin.json.
	ErrMissingManifest = errors.New("package has no manifest (plugin.json)")

	// ErrMissingScript is returned when a package has no entry script.
	ErrMissingScript = errors.New("package has no entry script (plugin.lua)")

	// ErrPluginDisabled is returned when loading a plugin whose manifest
	// marks it disabled.
	ErrPluginDisabled = errors.New("plugin is disabled")

	// Manifest validation errors.
	ErrMissingID          = errors.New("manifest: id is required")
	ErrMissingName        = errors.New("manifest: name is required")
	ErrMissingVersion     = errors.New("manifest: version is required")
	ErrMissingDescription = errors.New("manifest: description is required")
	ErrMissingCategory    = errors.New("manifest: category is required")
	ErrInvalidCategory    = errors.New("manifest: invalid category")
	ErrInvalidVersion     = errors.New("manifest: version must be MAJOR.MINOR.PATCH")
)
