package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunProxiesDatagram(t *testing.T) {
	upstream, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	defer upstream.Close()
	go func() {
		buf := make([]byte, 65535)
		for {
			n, peer, err := upstream.ReadFromUDP(buf)
			if err != nil {
				return
			}
			upstream.WriteToUDP(buf[:n], peer)
		}
	}()
	upstreamAddr := upstream.LocalAddr().(*net.UDPAddr)

	probe, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	listenerPort := probe.LocalAddr().(*net.UDPAddr).Port
	probe.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf(`
[listener]
address = ["127.0.0.1:%d"]

[remote]
address = "127.0.0.1:%d"

[logging]
log_level = "off"
`, listenerPort, upstreamAddr.Port)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, path)
	}()

	// Give the listener time to bind before sending traffic.
	time.Sleep(100 * time.Millisecond)

	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	client.WriteToUDP([]byte("hello app"), &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: listenerPort})

	buf := make([]byte, 64)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := client.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hello app" {
		t.Fatalf("got %q", buf[:n])
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	if err := Run(context.Background(), "/nonexistent/path.toml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
