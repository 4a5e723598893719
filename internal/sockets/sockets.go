// Package sockets binds listening UDP sockets and dials connected outbound
// ones, following the bind-wildcard-then-connect idiom so the kernel filters
// stray datagrams and recv/send need no per-packet address.
package sockets

import (
	"fmt"
	"net"
)

// BindListener binds a UDP socket to addr and returns it along with its
// effective local address (resolving an ephemeral port of 0).
func BindListener(addr *net.UDPAddr) (*net.UDPConn, *net.UDPAddr, error) {
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bind listener on %s: %w", addr, err)
	}
	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		conn.Close()
		return nil, nil, fmt.Errorf("unexpected local address type for listener on %s", addr)
	}
	return conn, local, nil
}

// ConnectUpstream iterates candidates in order; for each it binds a fresh UDP
// socket to the family-matching wildcard address and port 0, then connects
// it to the candidate. It returns the first socket that connects
// successfully; if every candidate fails, it surfaces the last error.
func ConnectUpstream(candidates []*net.UDPAddr) (*net.UDPConn, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no upstream candidates to connect to")
	}

	var lastErr error
	for _, candidate := range candidates {
		conn, err := net.DialUDP("udp", wildcardFor(candidate), candidate)
		if err != nil {
			lastErr = fmt.Errorf("failed to connect to %s: %w", candidate, err)
			continue
		}
		return conn, nil
	}
	return nil, fmt.Errorf("failed to connect to any upstream candidate: %w", lastErr)
}

func wildcardFor(addr *net.UDPAddr) *net.UDPAddr {
	if addr.IP.To4() != nil {
		return &net.UDPAddr{IP: net.IPv4zero, Port: 0}
	}
	return &net.UDPAddr{IP: net.IPv6zero, Port: 0}
}
