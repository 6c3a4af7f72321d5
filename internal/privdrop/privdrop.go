// Package privdrop gives up root privileges once they are no longer
// needed.
//
// pronound has to start as root to bind its registered port (731), but
// nothing after the bind requires privileges. Drop switches the process
// to an unprivileged account and verifies that root cannot be regained.
package privdrop

import (
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

// IsRoot reports whether the process is running with root privileges.
func IsRoot() bool {
	return syscall.Geteuid() == 0
}

// Drop switches the process to the named unprivileged account. The group
// is changed first; setgid is impossible once setuid has run.
func Drop(username string) error {
	u, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("unknown user %q: %v", username, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("bad uid %q for %q: %v", u.Uid, username, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fmt.Errorf("bad gid %q for %q: %v", u.Gid, username, err)
	}
	if uid == 0 {
		return fmt.Errorf("refusing to run as %q: uid 0", username)
	}

	if err := syscall.Setgid(gid); err != nil {
		return fmt.Errorf("setgid: %v", err)
	}
	if err := syscall.Setuid(uid); err != nil {
		return fmt.Errorf("setuid: %v", err)
	}

	// Verify privileges have been given up.
	if syscall.Getuid() != uid || syscall.Geteuid() != uid {
		return fmt.Errorf("failed to drop privileges: uid %d, euid %d", syscall.Getuid(), syscall.Geteuid())
	}

	// Try to regain root and return an error if that was possible.
	if err := syscall.Seteuid(0); err == nil {
		return fmt.Errorf("unexpectedly able to regain root")
	}

	return nil
}
