// Package reliability drives proxy.WriterProxy/proxy.ReaderProxy state
// transitions from incoming submessages and timer ticks, per spec.md
// §4.3 (reliable reader algorithm) and §4.4 (reliable writer algorithm).
package reliability

import (
	"github.com/lanterndds/rtpscore/internal/rtps/proxy"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// SampleLostFunc is invoked once per sequence number a best-effort reader
// skips over.
type SampleLostFunc func(sn wire.SequenceNumber)

// ReaderPolicy selects the reliability kind the reader side runs.
type ReaderPolicy int

const (
	BestEffortReader ReaderPolicy = iota
	ReliableReader
)

// OnData applies an incoming DATA/reassembled DATA_FRAG with sequence sn
// to the writer proxy, per spec.md §4.3. onLost is called for every
// sequence number a best-effort reader skips.
func OnData(p *proxy.WriterProxy, policy ReaderPolicy, sn wire.SequenceNumber, onLost SampleLostFunc) (accepted bool) {
	switch policy {
	case ReliableReader:
		switch {
		case sn == p.AvailableChangesMax+1:
			p.MarkReceived(sn)
			p.SlideWindow()
			return true
		case p.IsReceived(sn):
			return false // duplicate of an out-of-order sample
		case sn > p.AvailableChangesMax:
			p.MarkReceived(sn)
			return true
		default:
			return false // duplicate or stale
		}
	default: // BestEffortReader
		if sn <= p.AvailableChangesMax {
			return false
		}
		for skipped := p.AvailableChangesMax + 1; skipped < sn; skipped++ {
			if onLost != nil {
				onLost(skipped)
			}
		}
		p.AvailableChangesMax = sn
		return true
	}
}

// OnHeartbeat applies an incoming HEARTBEAT to the writer proxy (spec.md
// §4.3). A heartbeat whose count has not advanced is ignored; otherwise
// MustSendAckNack and State are updated. It returns nothing.
func OnHeartbeat(p *proxy.WriterProxy, firstSN, lastSN wire.SequenceNumber, count int32, finalFlag bool) {
	if count <= p.LastReceivedHeartbeatCount {
		return
	}
	p.LastReceivedHeartbeatCount = count
	p.HighestAdvertised = lastSN
	for sn := p.AvailableChangesMax + 1; sn < firstSN; sn++ {
		p.MarkIrrelevant(sn)
	}
	p.SlideWindow()
	missing := p.MissingSet()
	p.MustSendAckNack = !finalFlag || len(missing) > 0
	if p.MustSendAckNack {
		p.State = proxy.MustSendAckNack
	} else {
		p.State = proxy.Ready
	}
}

// OnGap applies an incoming GAP to the writer proxy (spec.md §4.3).
func OnGap(p *proxy.WriterProxy, gapStart wire.SequenceNumber, gapList wire.SequenceNumberSet) {
	for sn := gapStart; sn < gapList.Base; sn++ {
		p.MarkIrrelevant(sn)
	}
	for _, sn := range gapList.Members() {
		p.MarkIrrelevant(sn)
	}
	p.SlideWindow()
}

// BuildAckNack constructs the ACKNACK the reader side should send for p,
// if MustSendAckNack is set. The result carries only base and set; count
// is not used and the caller attaches its own ACKNACK counter.
func BuildAckNack(p *proxy.WriterProxy, count int32) (base wire.SequenceNumber, set wire.SequenceNumberSet, ok bool) {
	if !p.MustSendAckNack {
		return 0, wire.SequenceNumberSet{}, false
	}
	base = p.AvailableChangesMax + 1
	missing := p.MissingSet()
	if len(missing) > wire.MaxSequenceNumberSetBits {
		missing = missing[:wire.MaxSequenceNumberSetBits]
	}
	return base, wire.NewSequenceNumberSet(base, missing), true
}
