// Package conf loads and validates the TOML configuration file: one
// section per top-level table, each owning its own defaults and
// validation, aggregated into a single reported error.
package conf

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Conf is the top-level configuration, one field per TOML table.
type Conf struct {
	General  General      `toml:"general"`
	Listener ListenerConf `toml:"listener"`
	Remote   RemoteConf   `toml:"remote"`
	Logging  Logging      `toml:"logging"`
	Filters  Filters      `toml:"filters"`
}

// LoadFromFile reads path, parses it as TOML, applies defaults, and
// validates every section. A validation failure aggregates every section's
// error messages into one error rather than stopping at the first.
func LoadFromFile(path string) (*Conf, error) {
	var c Conf
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.setDefaults()
	if err := c.validate(); err != nil {
		return &c, err
	}
	return &c, nil
}

func (c *Conf) setDefaults() {
	c.General.setDefaults()
	c.Listener.setDefaults()
	c.Remote.setDefaults()
	c.Logging.setDefaults()
	c.Filters.setDefaults()
}

func (c *Conf) validate() error {
	var allErrors []error
	allErrors = append(allErrors, c.General.validate()...)
	allErrors = append(allErrors, namedErrors("listener", c.Listener.validate())...)
	allErrors = append(allErrors, namedErrors("remote", c.Remote.validate())...)
	allErrors = append(allErrors, c.Logging.validate()...)
	allErrors = append(allErrors, c.Filters.validate()...)
	return writeErr(allErrors)
}

func namedErrors(section string, errs []error) []error {
	out := make([]error, len(errs))
	for i, err := range errs {
		out[i] = fmt.Errorf("%s: %w", section, err)
	}
	return out
}

func writeErr(allErrors []error) error {
	if len(allErrors) == 0 {
		return nil
	}
	messages := make([]string, len(allErrors))
	for i, err := range allErrors {
		messages[i] = err.Error()
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}
