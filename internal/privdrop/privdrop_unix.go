//go:build !windows

package privdrop

import (
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

func isSuperuser() bool {
	return syscall.Getuid() == 0
}

func dropTo(username string) error {
	u, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("invalid uid %q for user %q: %w", u.Uid, username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("invalid gid %q for user %q: %w", u.Gid, username, err)
	}

	if err := syscall.Setgroups(nil); err != nil {
		return fmt.Errorf("failed to clear supplementary groups: %w", err)
	}
	if err := syscall.Setgid(gid); err != nil {
		return fmt.Errorf("failed to setgid(%d): %w", gid, err)
	}
	if err := syscall.Setuid(uid); err != nil {
		return fmt.Errorf("failed to setuid(%d): %w", uid, err)
	}
	return nil
}
