// Package transport declares the datagram interface the core consumes
// (spec.md §6) and a real UDP implementation of it.
package transport

import (
	"context"
	"net"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/locator"
)

// Handle identifies a bound receive endpoint.
type Handle int

// Transport is the minimal surface spec.md §6 requires: best-effort
// send, blocking recv, and bind. The core never opens sockets itself.
type Transport interface {
	Send(frame []byte, dests []locator.Locator) error
	Recv(ctx context.Context) (source locator.Locator, frame []byte, err error)
	Bind(l locator.Locator) (Handle, error)
	Close() error
}

var _ Transport = (*UDP)(nil)

// UDP is the production Transport: one net.PacketConn shared by every
// bound locator, since RTPS locators for one participant are really just
// ports on the same interface.
type UDP struct {
	conn *net.UDPConn
}

// NewUDP binds a UDP socket on l and returns a Transport over it.
func NewUDP(l locator.Locator) (*UDP, error) {
	conn, err := net.ListenUDP("udp", l.UDPAddr())
	if err != nil {
		return nil, err
	}
	return &UDP{conn: conn}, nil
}

// Send implements Transport.
func (u *UDP) Send(frame []byte, dests []locator.Locator) error {
	for _, d := range dests {
		if _, err := u.conn.WriteToUDP(frame, d.UDPAddr()); err != nil {
			return err
		}
	}
	return nil
}

const maxDatagramSize = 65507

// Recv implements Transport; it respects ctx cancellation via a read
// deadline race, since net.UDPConn has no context-aware read.
func (u *UDP) Recv(ctx context.Context) (locator.Locator, []byte, error) {
	buf := make([]byte, maxDatagramSize)
	type result struct {
		n    int
		addr *net.UDPAddr
		err  error
	}
	done := make(chan result, 1)
	go func() {
		n, addr, err := u.conn.ReadFromUDP(buf)
		done <- result{n, addr, err}
	}()
	select {
	case <-ctx.Done():
		u.conn.SetReadDeadline(pastDeadline())
		<-done
		return locator.Locator{}, nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return locator.Locator{}, nil, r.err
		}
		return locator.FromUDPAddr(r.addr), buf[:r.n], nil
	}
}

// Bind is a no-op for UDP: the one socket opened by NewUDP already
// covers every locator this participant advertises on that port.
func (u *UDP) Bind(l locator.Locator) (Handle, error) {
	return Handle(l.Port), nil
}

// Close releases the underlying socket.
func (u *UDP) Close() error {
	return u.conn.Close()
}

func pastDeadline() time.Time {
	return time.Now().Add(-time.Second)
}
