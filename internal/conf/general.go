package conf

// General is the `[general]` section.
type General struct {
	// User, if set, is the unprivileged account to drop to after binding
	// the listening socket. Empty means stay as the invoking user.
	User string `toml:"user"`
}

func (g *General) setDefaults() {}

func (g *General) validate() []error {
	return nil
}
