// Package faketransport is an in-memory transport.Transport used by the
// orchestrator tests: a buffered-channel mailbox per
// simulated locator, with explicit drop/reorder injection hooks, the
// same shape as the teacher's per-package test_helper.go fixtures.
package faketransport

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/transport"
)

type datagram struct {
	source locator.Locator
	frame  []byte
}

// Network is the shared medium a set of Fake transports send into and
// receive from.
type Network struct {
	mu       sync.Mutex
	mailbox  map[locator.Locator]chan datagram
	dropFunc func(src, dst locator.Locator, frame []byte) bool
	delay    map[locator.Locator][]datagram // held back for manual release, keyed by dest
}

// NewNetwork constructs an empty shared medium.
func NewNetwork() *Network {
	return &Network{
		mailbox: make(map[locator.Locator]chan datagram),
		delay:   make(map[locator.Locator][]datagram),
	}
}

// SetDropFunc installs a predicate called before every send; when it
// returns true the datagram is silently discarded, modeling packet loss
// for spec.md §8 scenario 1/2.
func (n *Network) SetDropFunc(f func(src, dst locator.Locator, frame []byte) bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dropFunc = f
}

func (n *Network) mailboxFor(l locator.Locator) chan datagram {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch, ok := n.mailbox[l]
	if !ok {
		ch = make(chan datagram, 256)
		n.mailbox[l] = ch
	}
	return ch
}

var _ transport.Transport = (*Fake)(nil)

// Fake is a transport.Transport backed by a Network; Locator is the
// address this instance sends from and receives at.
type Fake struct {
	net     *Network
	Locator locator.Locator
}

// New binds a Fake transport to locator l on network n.
func New(n *Network, l locator.Locator) *Fake {
	n.mailboxFor(l)
	return &Fake{net: n, Locator: l}
}

// Send implements transport.Transport.
func (f *Fake) Send(frame []byte, dests []locator.Locator) error {
	for _, d := range dests {
		f.net.mu.Lock()
		drop := f.net.dropFunc != nil && f.net.dropFunc(f.Locator, d, frame)
		f.net.mu.Unlock()
		if drop {
			continue
		}
		cp := append([]byte(nil), frame...)
		f.net.mailboxFor(d) <- datagram{source: f.Locator, frame: cp}
	}
	return nil
}

// Recv implements transport.Transport.
func (f *Fake) Recv(ctx context.Context) (locator.Locator, []byte, error) {
	select {
	case <-ctx.Done():
		return locator.Locator{}, nil, ctx.Err()
	case dg := <-f.net.mailboxFor(f.Locator):
		return dg.source, dg.frame, nil
	}
}

// Bind implements transport.Transport; on the fake network every locator
// already has a mailbox once referenced, so Bind is a pure
// existence-check.
func (f *Fake) Bind(l locator.Locator) (transport.Handle, error) {
	f.net.mailboxFor(l)
	return transport.Handle(l.Port), nil
}

// Close implements transport.Transport; the fake network's mailboxes
// outlive any one Fake, so Close is a no-op.
func (f *Fake) Close() error { return nil }

// Reorder drains n pending datagrams addressed to l and resubmits them
// in reverse arrival order, for tests exercising out-of-order delivery
// (spec.md §8 scenario 3: "15 DATA_FRAG submessages out of order").
func (n *Network) Reorder(l locator.Locator, count int) error {
	ch := n.mailboxFor(l)
	var drained []datagram
	for i := 0; i < count; i++ {
		select {
		case dg := <-ch:
			drained = append(drained, dg)
		default:
			return errors.New("faketransport: not enough pending datagrams to reorder")
		}
	}
	sort.SliceStable(drained, func(i, j int) bool { return i > j })
	for _, dg := range drained {
		ch <- dg
	}
	return nil
}
