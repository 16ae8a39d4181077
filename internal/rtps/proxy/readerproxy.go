package proxy

import (
	"sort"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// ChangeStatus is the per-(reader, sequence-number) delivery lattice the
// writer side tracks, mirroring the teacher's unsent→unacknowledged→
// requested→acknowledged status progression.
type ChangeStatus int

const (
	Unsent ChangeStatus = iota
	Unacknowledged
	Requested
	Underway
	Acknowledged
)

// ReaderProxy is the writer's bookkeeping for one matched remote reader.
type ReaderProxy struct {
	ReaderGUID        guid.GUID
	UnicastLocators   locator.List
	MulticastLocators locator.List
	Reliability       qos.ReliabilityKind
	Durability        qos.DurabilityKind

	changeStatus map[wire.SequenceNumber]ChangeStatus

	LastSentHeartbeatCount int32
	HeartbeatDue           time.Time
}

// NewReaderProxy constructs a ReaderProxy with no tracked changes.
func NewReaderProxy(r guid.GUID, unicast, multicast locator.List, reliability qos.ReliabilityKind, durability qos.DurabilityKind) *ReaderProxy {
	return &ReaderProxy{
		ReaderGUID:        r,
		UnicastLocators:   unicast,
		MulticastLocators: multicast,
		Reliability:       reliability,
		Durability:        durability,
		changeStatus:      make(map[wire.SequenceNumber]ChangeStatus),
	}
}

// AddChange registers a newly written sequence number as Unsent (best
// effort: Unacknowledged immediately, since there's nothing to ack).
func (p *ReaderProxy) AddChange(sn wire.SequenceNumber) {
	if p.Reliability == qos.ReliabilityBestEffort {
		p.changeStatus[sn] = Unacknowledged
		return
	}
	p.changeStatus[sn] = Unsent
}

// SetStatus transitions sn to status.
func (p *ReaderProxy) SetStatus(sn wire.SequenceNumber, status ChangeStatus) {
	p.changeStatus[sn] = status
}

// Status returns sn's current status, defaulting to Acknowledged for
// sequence numbers this proxy has never heard of (already-evicted history).
func (p *ReaderProxy) Status(sn wire.SequenceNumber) ChangeStatus {
	if st, ok := p.changeStatus[sn]; ok {
		return st
	}
	return Acknowledged
}

// Unacked returns every sequence number not yet Acknowledged, ascending.
func (p *ReaderProxy) Unacked() []wire.SequenceNumber {
	var out []wire.SequenceNumber
	for sn, st := range p.changeStatus {
		if st != Acknowledged {
			out = append(out, sn)
		}
	}
	sortSeq(out)
	return out
}

// Requested returns every sequence number in Requested status, ascending.
func (p *ReaderProxy) Requested() []wire.SequenceNumber {
	var out []wire.SequenceNumber
	for sn, st := range p.changeStatus {
		if st == Requested {
			out = append(out, sn)
		}
	}
	sortSeq(out)
	return out
}

// AcknowledgeUpTo marks every sequence number <= sn as Acknowledged; this
// is how a reliable reader's ACKNACK (empty missing set up to a base)
// advances the writer's retained-history horizon.
func (p *ReaderProxy) AcknowledgeUpTo(sn wire.SequenceNumber) {
	for s := range p.changeStatus {
		if s <= sn {
			p.changeStatus[s] = Acknowledged
		}
	}
}

// MarkRequested sets every sn in missing to Requested, provided it is
// currently tracked (i.e. not already evicted from history).
func (p *ReaderProxy) MarkRequested(missing []wire.SequenceNumber) {
	for _, sn := range missing {
		if _, ok := p.changeStatus[sn]; ok {
			p.changeStatus[sn] = Requested
		}
	}
}

func sortSeq(s []wire.SequenceNumber) {
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
}
