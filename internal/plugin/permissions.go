package plugin

// Permission names a capability a plugin declares it needs.
//
// Declared permissions are recorded as metadata for callers and surfaced
// in listings; the sandbox exposes the same capability surface to every
// plugin regardless. See the lua subpackage for what that surface is.
type Permission string

// Permissions the host recognizes.
const (
	// PermissionSessionQuery covers page.evaluate and the DOM query helpers.
	PermissionSessionQuery Permission = "session.query"

	// PermissionSessionInject covers the style/script injection helpers.
	PermissionSessionInject Permission = "session.inject"

	// PermissionFileRead covers reads confined to the plugin directory.
	PermissionFileRead Permission = "file.read"

	// PermissionLog covers the namespaced logging facade.
	PermissionLog Permission = "log"
)

var knownPermissions = map[Permission]bool{
	PermissionSessionQuery:  true,
	PermissionSessionInject: true,
	PermissionFileRead:      true,
	PermissionLog:           true,
}

// IsKnownPermission reports whether the host recognizes the permission name.
func IsKnownPermission(name string) bool {
	return knownPermissions[Permission(name)]
}

// UnknownPermissions returns declared permissions the host does not
// recognize. Unknown permissions are not an error; the loader logs them.
func (d *Descriptor) UnknownPermissions() []string {
	var unknown []string
	for _, p := range d.Permissions {
		if !IsKnownPermission(p) {
			unknown = append(unknown, p)
		}
	}
	return unknown
}
