package conf

import "fmt"

// ListenerConf is the `[listener]` section: one or more bind addresses, one
// listener socket is created per entry, all sharing one flow table and one
// set of upstream candidates.
type ListenerConf struct {
	Address  []string `toml:"address"`
	IPv4Only bool     `toml:"ipv4_only"`
	IPv6Only bool     `toml:"ipv6_only"`
}

func (l *ListenerConf) setDefaults() {}

func (l *ListenerConf) validate() []error {
	var errs []error
	if len(l.Address) == 0 {
		errs = append(errs, fmt.Errorf("address must list at least one host:port"))
	}
	if l.IPv4Only && l.IPv6Only {
		errs = append(errs, fmt.Errorf("ipv4_only and ipv6_only are mutually exclusive"))
	}
	return errs
}

// RemoteConf is the `[remote]` section: a single upstream host:port,
// interpreted as a candidate list of one after resolution expands it to
// every address the name resolves to.
type RemoteConf struct {
	Address  string `toml:"address"`
	IPv4Only bool   `toml:"ipv4_only"`
	IPv6Only bool   `toml:"ipv6_only"`
}

func (r *RemoteConf) setDefaults() {}

func (r *RemoteConf) validate() []error {
	var errs []error
	if r.Address == "" {
		errs = append(errs, fmt.Errorf("address must be set"))
	}
	if r.IPv4Only && r.IPv6Only {
		errs = append(errs, fmt.Errorf("ipv4_only and ipv6_only are mutually exclusive"))
	}
	return errs
}
