// Package app wires configuration, logging, address resolution, socket
// binding, privilege drop, and the forwarding engine into the running
// process.
package app

import (
	"context"
	"fmt"

	"udpobfuscat/internal/conf"
	"udpobfuscat/internal/engine"
	"udpobfuscat/internal/flog"
	"udpobfuscat/internal/flowtable"
	"udpobfuscat/internal/privdrop"
	"udpobfuscat/internal/resolve"
	"udpobfuscat/internal/sockets"
)

// Run loads configFile and runs the proxy until ctx is cancelled or an
// ingress loop fails fatally. It is the single entry point cmd/ calls.
func Run(ctx context.Context, configFile string) error {
	c, err := conf.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := flog.Init(c.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer flog.Sync()

	tr, err := c.Filters.Build()
	if err != nil {
		return fmt.Errorf("failed to build transform pipeline: %w", err)
	}

	listenerAddrs, err := resolve.AndFilter(ctx, c.Listener.Address,
		resolve.PreferenceFromFlags(c.Listener.IPv4Only, c.Listener.IPv6Only))
	if err != nil {
		return fmt.Errorf("failed to resolve listener addresses: %w", err)
	}

	upstreamAddrs, err := resolve.AndFilter(ctx, []string{c.Remote.Address},
		resolve.PreferenceFromFlags(c.Remote.IPv4Only, c.Remote.IPv6Only))
	if err != nil {
		return fmt.Errorf("failed to resolve remote address: %w", err)
	}

	table := flowtable.New()
	listeners := make([]*engine.Listener, 0, len(listenerAddrs))
	for i, addr := range listenerAddrs {
		conn, local, err := sockets.BindListener(addr)
		if err != nil {
			return fmt.Errorf("failed to bind listener: %w", err)
		}
		flog.Infof("listening on %s, forwarding to %s", local, c.Remote.Address)
		listeners = append(listeners, engine.NewListener(i, conn, upstreamAddrs, tr, table))
	}

	if err := privdrop.Drop(c.General.User); err != nil {
		return fmt.Errorf("failed to drop privileges: %w", err)
	}

	eng := engine.New(listeners...)
	return eng.Run(ctx)
}
