// Package system probes the host the stack runs on: endpoint reachability,
// local port availability and free disk space.
package system

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single probe
const DefaultTimeout = 5 * time.Second

// StackPorts are the host ports published by the stack manifests
var StackPorts = []int{8080, 8545, 9545, 9944}

// Network handles network probes
type Network struct {
	timeout time.Duration
}

// NewNetwork creates a Network with the given probe timeout; zero uses
// DefaultTimeout
func NewNetwork(timeout time.Duration) *Network {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Network{timeout: timeout}
}

// IsPortOpen checks if a TCP port accepts connections on host
func (n *Network) IsPortOpen(ctx context.Context, host string, port int) bool {
	d := net.Dialer{Timeout: n.timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// EndpointReachable dials the host and port of an endpoint URL. The port
// defaults from the scheme.
func (n *Network) EndpointReachable(ctx context.Context, raw string) (bool, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return false, fmt.Errorf("invalid URL format: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return false, fmt.Errorf("URL is missing a host")
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https", "wss":
			port = "443"
		default:
			port = "80"
		}
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return false, fmt.Errorf("invalid port %q: %w", port, err)
	}
	return n.IsPortOpen(ctx, host, p), nil
}

// PortAvailable reports whether a local TCP port can be bound
func (n *Network) PortAvailable(port int) bool {
	l, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	l.Close()
	return true
}
