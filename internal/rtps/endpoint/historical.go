package endpoint

import (
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/proxy"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
	"github.com/lanterndds/rtpscore/internal/rtps/rtpserrs"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// MatchedWriter is the subset of a WriterProxy's reliability state
// WaitForHistoricalData needs, plus the high-water mark recorded at match
// time (spec.md §4.6: "their highest_advertised_sn_at_match_time").
type MatchedWriter struct {
	Proxy                        *proxy.WriterProxy
	HighestAdvertisedAtMatchTime wire.SequenceNumber
}

// WaitForHistoricalData implements spec.md §4.6's
// wait_for_historical_data: legal only for TRANSIENT_LOCAL readers,
// succeeds once every matched writer's available_changes_max has caught
// up to the high-water mark recorded when the match occurred.
func WaitForHistoricalData(durability qos.DurabilityKind, matched []MatchedWriter, timeout time.Duration) error {
	if durability != qos.DurabilityTransientLocal {
		return rtpserrs.PreconditionNotMet{Detail: "wait_for_historical_data requires TRANSIENT_LOCAL durability"}
	}
	deadline := time.Now().Add(timeout)
	for {
		if allCaughtUp(matched) {
			return nil
		}
		if time.Now().After(deadline) {
			return rtpserrs.Timeout{Operation: "wait_for_historical_data"}
		}
		time.Sleep(time.Millisecond)
	}
}

func allCaughtUp(matched []MatchedWriter) bool {
	for _, m := range matched {
		if m.Proxy.AvailableChangesMax < m.HighestAdvertisedAtMatchTime {
			return false
		}
	}
	return true
}
