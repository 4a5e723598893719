//go:build windows

package privdrop

import "fmt"

func isSuperuser() bool { return false }

func dropTo(username string) error {
	return fmt.Errorf("privilege drop to user %q is not supported on windows", username)
}
