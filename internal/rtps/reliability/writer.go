package reliability

import (
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/proxy"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// Fragment is one DATA_FRAG-sized slice of a sample too large to send
// whole, per spec.md §4.4.
type Fragment struct {
	SequenceNumber   wire.SequenceNumber
	FragmentStartNum uint32
	Payload          []byte
}

// Fragments splits payload into chunks of at most maxSize bytes (spec.md
// §4.4: "fragment it into N pieces of at most that size").
func Fragments(sn wire.SequenceNumber, payload []byte, maxSize uint32) []Fragment {
	if maxSize == 0 || uint32(len(payload)) <= maxSize {
		return nil
	}
	var out []Fragment
	start := uint32(1)
	for off := 0; off < len(payload); off += int(maxSize) {
		end := off + int(maxSize)
		if end > len(payload) {
			end = len(payload)
		}
		out = append(out, Fragment{SequenceNumber: sn, FragmentStartNum: start, Payload: payload[off:end]})
		start++
	}
	return out
}

// PendingSend describes one change the writer must push to a reader proxy.
type PendingSend struct {
	SequenceNumber wire.SequenceNumber
	Fragments      []Fragment // nil if the change fits unfragmented
}

// CollectUnsent returns every Unsent change in the reader proxy,
// transitioning each to Underway, and fragmenting any payload larger than
// dataMaxSizeSerialized (spec.md §4.4). payloadOf looks the sample up in
// the writer's history cache; a sequence number already evicted from
// history yields a nil payload and is skipped.
func CollectUnsent(rp *proxy.ReaderProxy, dataMaxSizeSerialized uint32, payloadOf func(sn wire.SequenceNumber) []byte) []PendingSend {
	var out []PendingSend
	for _, sn := range rp.Unacked() {
		if rp.Status(sn) != proxy.Unsent {
			continue
		}
		payload := payloadOf(sn)
		if payload == nil {
			continue
		}
		ps := PendingSend{SequenceNumber: sn}
		if dataMaxSizeSerialized > 0 && uint32(len(payload)) > dataMaxSizeSerialized {
			ps.Fragments = Fragments(sn, payload, dataMaxSizeSerialized)
		}
		out = append(out, ps)
		rp.SetStatus(sn, proxy.Underway)
	}
	return out
}

// OnAckNack applies an incoming ACKNACK to the reader proxy (spec.md
// §4.4): count must be strictly increasing; everything below base is
// acknowledged, everything in the missing set becomes requested, and the
// complement within [base, base+range) becomes acknowledged.
func OnAckNack(rp *proxy.ReaderProxy, base wire.SequenceNumber, set wire.SequenceNumberSet, count int32, lastSeenCount *int32) {
	if count <= *lastSeenCount {
		return
	}
	*lastSeenCount = count
	rp.AcknowledgeUpTo(base - 1)
	members := set.Members()
	missing := make(map[wire.SequenceNumber]bool, len(members))
	for _, sn := range members {
		missing[sn] = true
	}
	rp.MarkRequested(members)
	for sn := base; sn < base+wire.SequenceNumber(set.NumBits); sn++ {
		if !missing[sn] {
			rp.SetStatus(sn, proxy.Acknowledged)
		}
	}
}

// DueForHeartbeat reports whether a periodic, non-final HEARTBEAT should
// be emitted for rp (spec.md §4.4: "now >= last_heartbeat_sent +
// heartbeat_period AND the change has unacknowledged changes").
func DueForHeartbeat(rp *proxy.ReaderProxy, now time.Time, period time.Duration) bool {
	if len(rp.Unacked()) == 0 {
		return false
	}
	return !now.Before(rp.HeartbeatDue)
}

// NextHeartbeat advances rp's HeartbeatDue by period and returns the next
// monotonic heartbeat count. firstSN and lastSN are not used; the caller
// supplies the heartbeat's sequence range itself.
func NextHeartbeat(rp *proxy.ReaderProxy, firstSN, lastSN wire.SequenceNumber, now time.Time, period time.Duration) int32 {
	rp.LastSentHeartbeatCount++
	rp.HeartbeatDue = now.Add(period)
	return rp.LastSentHeartbeatCount
}
