// Package listener creates the network listeners that auxiliary HTTP servers
// of the CLI accept connections on.
package listener

import (
	"errors"
	"fmt"
	"net"
	"sync"
)

type Provider interface {
	Create() (net.Listener, error)
	Close() error
	ActivationType() string
}

// TCPProvider listens on a host:port address. Port 0 picks a free port.
type TCPProvider struct {
	address string

	mu       sync.Mutex
	listener net.Listener
}

var _ Provider = (*TCPProvider)(nil)

func NewTCPProvider(address string) *TCPProvider {
	return &TCPProvider{
		address: address,
	}
}

func (p *TCPProvider) Create() (net.Listener, error) {
	if _, _, err := net.SplitHostPort(p.address); err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %w", p.address, err)
	}

	listener, err := net.Listen("tcp", p.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on tcp: %w", err)
	}

	p.mu.Lock()
	p.listener = listener
	p.mu.Unlock()
	return listener, nil
}

// Close releases the listener returned by Create unless a server already
// closed it.
func (p *TCPProvider) Close() error {
	p.mu.Lock()
	listener := p.listener
	p.listener = nil
	p.mu.Unlock()

	if listener == nil {
		return nil
	}
	if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (p *TCPProvider) ActivationType() string {
	return "tcp"
}
