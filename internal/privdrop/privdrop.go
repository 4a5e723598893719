// Package privdrop drops root privileges to a configured unprivileged
// user once every socket the process needs has already been bound.
package privdrop

// Drop switches the process to the named user's uid/gid, clearing
// supplementary groups first. A no-op if username is empty or the process
// is not running as superuser: the spec's "if set and superuser" condition
// means a non-root invocation with [general].user set simply keeps
// running as whatever user it already is.
func Drop(username string) error {
	if username == "" {
		return nil
	}
	if !isSuperuser() {
		return nil
	}
	return dropTo(username)
}
