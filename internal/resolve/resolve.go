// Package resolve turns configured host:port strings into concrete socket
// addresses, honoring an IPv4-only / IPv6-only preference.
package resolve

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Preference selects which address families survive the resolve step.
type Preference int

const (
	Any Preference = iota
	IPv4Only
	IPv6Only
)

// PreferenceFromFlags derives a Preference from the two mutually-exclusive
// config booleans. If both are set, IPv4Only wins and the result is the same
// as if ipv6Only had not been set, so IPv4 addresses still pass the filter.
// This function does not reject that combination; conf validation does.
func PreferenceFromFlags(ipv4Only, ipv6Only bool) Preference {
	switch {
	case ipv4Only:
		return IPv4Only
	case ipv6Only:
		return IPv6Only
	default:
		return Any
	}
}

// AndFilter resolves every host:port string in addrs and concatenates the
// results, then applies pref. Every failure mode is a fatal startup error:
// empty input, any name failing to resolve, zero addresses overall, or the
// preference filter removing everything.
func AndFilter(ctx context.Context, addrs []string, pref Preference) ([]*net.UDPAddr, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("address list must not be empty")
	}

	var all []*net.UDPAddr
	for _, addr := range addrs {
		resolved, err := resolveOne(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %q: %w", addr, err)
		}
		all = append(all, resolved...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("cannot resolve any of %v", addrs)
	}

	filtered := filter(all, pref)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("address family filter removed every address resolved from %v", addrs)
	}
	return filtered, nil
}

func resolveOne(ctx context.Context, hostport string) ([]*net.UDPAddr, error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, err
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", port, err)
	}

	out := make([]*net.UDPAddr, 0, len(ips))
	for _, ip := range ips {
		out = append(out, &net.UDPAddr{IP: ip, Port: portNum})
	}
	return out, nil
}

func filter(addrs []*net.UDPAddr, pref Preference) []*net.UDPAddr {
	if pref == Any {
		return addrs
	}
	out := addrs[:0:0]
	for _, a := range addrs {
		isV4 := a.IP.To4() != nil
		switch pref {
		case IPv4Only:
			if isV4 {
				out = append(out, a)
			}
		case IPv6Only:
			if !isV4 {
				out = append(out, a)
			}
		}
	}
	return out
}
