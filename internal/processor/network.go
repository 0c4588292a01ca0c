package processor

import (
	"fmt"
	"net"
	"net/netip"
	"sync"
)

// NetworkBase adds the (ipAddress, clientPort, hostPort) triple shared by
// every transport-backed processor (spec.md §4.2.1 "Network processor
// base"). When no IP is configured, it runs in auto-detect mode: the first
// sender's address is latched and subsequent packets from other peers are
// reported as ignored via Accept.
type NetworkBase struct {
	mu         sync.Mutex
	ip         netip.Addr
	autoDetect bool
	clientPort int
	hostPort   int
}

// SetAddress validates and stores the configured peer IP. An empty address
// enables auto-detect mode (spec.md §4.2.1).
func (n *NetworkBase) SetAddress(ipAddress string, clientPort, hostPort int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.clientPort = clientPort
	n.hostPort = hostPort

	if ipAddress == "" {
		n.autoDetect = true
		n.ip = netip.Addr{}
		return nil
	}

	addr, err := netip.ParseAddr(ipAddress)
	if err != nil {
		return fmt.Errorf("invalid ip address %q: %w", ipAddress, err)
	}
	n.autoDetect = false
	n.ip = addr
	return nil
}

// ClientPort returns the configured outbound peer port.
func (n *NetworkBase) ClientPort() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clientPort
}

// HostPort returns the configured local listen port.
func (n *NetworkBase) HostPort() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hostPort
}

// IP returns the currently known peer address (zero Addr if not yet
// latched in auto-detect mode).
func (n *NetworkBase) IP() netip.Addr {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ip
}

// Accept decides whether a packet from sender should be processed. In
// fixed-address mode, only the configured peer is accepted. In auto-detect
// mode, the first sender seen is latched as the peer; packets from any
// other address are rejected ("ignored", spec.md §4.2.1).
func (n *NetworkBase) Accept(sender netip.Addr) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.autoDetect {
		return n.ip == sender
	}
	if !n.ip.IsValid() {
		n.ip = sender
		return true
	}
	return n.ip == sender
}

// AddrPort returns the peer address as a net.UDPAddr/TCPAddr-compatible
// host:port string for dialing.
func (n *NetworkBase) AddrPort() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.ip.IsValid() {
		return ""
	}
	return net.JoinHostPort(n.ip.String(), fmt.Sprintf("%d", n.clientPort))
}
