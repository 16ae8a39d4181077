// Package proxy holds the per-remote-endpoint bookkeeping each side of a
// match keeps: a WriterProxy (reader's view of a remote writer) and a
// ReaderProxy (writer's view of a remote reader), per spec.md §3/§4.3/§4.4.
package proxy

import (
	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// WriterProxyState is the reliable-reader state machine's current phase.
type WriterProxyState int

const (
	Initial WriterProxyState = iota
	Ready
	MustSendAckNack
	WaitingHeartbeat
)

// WriterProxy is the reader's bookkeeping for one matched remote writer.
type WriterProxy struct {
	WriterGUID           guid.GUID
	UnicastLocators      locator.List
	MulticastLocators    locator.List
	DataMaxSizeSerialized uint32

	State WriterProxyState

	// AvailableChangesMax is the highest sequence number received
	// contiguously from this writer.
	AvailableChangesMax wire.SequenceNumber
	// HighestAdvertised is the highest sequence the writer has advertised
	// via HEARTBEAT (last_sn).
	HighestAdvertised wire.SequenceNumber

	receivedOutOfOrder map[wire.SequenceNumber]bool
	irrelevant         map[wire.SequenceNumber]bool

	LastReceivedHeartbeatCount     int32
	LastReceivedHeartbeatFragCount int32
	MustSendAckNack                bool

	// FragmentBuffers holds partial reassembly state keyed by sequence
	// number; internal/rtps/reliability drives reassembly, this struct only
	// owns the storage.
	FragmentBuffers map[wire.SequenceNumber]*FragmentAssembly
}

// FragmentAssembly accumulates the fragments of one large sample.
type FragmentAssembly struct {
	SampleSize   uint32
	FragmentSize uint16
	Received     map[uint32][]byte // 1-based fragment number -> bytes
}

// NewWriterProxy constructs a WriterProxy in its Initial state.
func NewWriterProxy(w guid.GUID, unicast, multicast locator.List) *WriterProxy {
	return &WriterProxy{
		WriterGUID:         w,
		UnicastLocators:    unicast,
		MulticastLocators:  multicast,
		State:              Initial,
		receivedOutOfOrder: make(map[wire.SequenceNumber]bool),
		irrelevant:         make(map[wire.SequenceNumber]bool),
		FragmentBuffers:    make(map[wire.SequenceNumber]*FragmentAssembly),
	}
}

// MarkReceived records sn as received out of order, ahead of
// AvailableChangesMax; the caller slides the window separately once
// contiguity resumes.
func (p *WriterProxy) MarkReceived(sn wire.SequenceNumber) {
	p.receivedOutOfOrder[sn] = true
}

// MarkIrrelevant records sn as something the writer will never (re)send —
// via GAP or a heartbeat's first_sn advancing past it.
func (p *WriterProxy) MarkIrrelevant(sn wire.SequenceNumber) {
	p.irrelevant[sn] = true
	delete(p.receivedOutOfOrder, sn)
}

// IsRelevant reports whether sn has not been marked irrelevant.
func (p *WriterProxy) IsRelevant(sn wire.SequenceNumber) bool {
	return !p.irrelevant[sn]
}

// IsReceived reports whether sn has been received (either contiguously or
// out of order).
func (p *WriterProxy) IsReceived(sn wire.SequenceNumber) bool {
	return sn <= p.AvailableChangesMax || p.receivedOutOfOrder[sn]
}

// SlideWindow advances AvailableChangesMax past every contiguous received
// or irrelevant sequence number starting at AvailableChangesMax+1.
func (p *WriterProxy) SlideWindow() {
	for {
		next := p.AvailableChangesMax + 1
		if p.receivedOutOfOrder[next] {
			delete(p.receivedOutOfOrder, next)
			p.AvailableChangesMax = next
			continue
		}
		if p.irrelevant[next] {
			delete(p.irrelevant, next)
			p.AvailableChangesMax = next
			continue
		}
		break
	}
}

// MissingSet returns the sequences in (AvailableChangesMax, HighestAdvertised]
// that are neither received nor irrelevant (spec.md §4.3).
func (p *WriterProxy) MissingSet() []wire.SequenceNumber {
	var out []wire.SequenceNumber
	for sn := p.AvailableChangesMax + 1; sn <= p.HighestAdvertised; sn++ {
		if p.receivedOutOfOrder[sn] || p.irrelevant[sn] {
			continue
		}
		out = append(out, sn)
	}
	return out
}
