package discovery

import (
	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
)

// EndpointRole distinguishes a discovered SEDP sample's direction.
type EndpointRole int

const (
	RoleWriter EndpointRole = iota
	RoleReader
)

// DiscoveredEndpointData is the decoded SEDP sample for either a
// DiscoveredWriterData or DiscoveredReaderData (spec.md §4.5/§6).
type DiscoveredEndpointData struct {
	GUID        guid.GUID
	Role        EndpointRole
	TopicName   string
	TypeName    string
	Policies    qos.Policies
	Unicast     locator.List
	Multicast   locator.List
}

// LocalEndpoint is the subset of a local user-defined endpoint's identity
// SEDP matching needs.
type LocalEndpoint struct {
	GUID      guid.GUID
	Role      EndpointRole
	TopicName string
	TypeName  string
	Policies  qos.Policies
}

// MatchResult is returned for each local endpoint a SEDP sample was
// checked against.
type MatchResult struct {
	Local              LocalEndpoint
	Matched            bool
	IncompatiblePolicies []qos.PolicyID
}

// SEDPDetector matches discovered publications/subscriptions against a
// caller-supplied set of local endpoints. It holds no state of its own
// beyond what's needed for match-idempotence (spec.md §8: "re-delivering
// the same SEDP sample does not change match count") and un-match on
// disposal.
type SEDPDetector struct {
	participants *SPDPDetector

	// matched tracks (remote GUID, local GUID) pairs already matched, so a
	// re-delivered alive sample with unchanged QoS is a no-op.
	matched map[matchKey]qos.Policies
}

type matchKey struct {
	remote guid.GUID
	local  guid.GUID
}

// NewSEDPDetector constructs a detector that consults participants to
// resolve a SEDP sample's source participant proxy.
func NewSEDPDetector(participants *SPDPDetector) *SEDPDetector {
	return &SEDPDetector{participants: participants, matched: make(map[matchKey]qos.Policies)}
}

// OnSample processes one SEDP publication or subscription sample against
// every candidate local endpoint of the opposite role sharing topic and
// type name (spec.md §4.5). A disposed sample un-matches every pair it
// had previously matched for that remote GUID.
func (d *SEDPDetector) OnSample(data DiscoveredEndpointData, disposed bool, candidates []LocalEndpoint) []MatchResult {
	if _, known := d.participants.Proxy(data.GUID.Prefix); !known && data.GUID.Prefix != d.participants.Self {
		return nil
	}
	if d.participants.IsIgnored(data.GUID.Prefix) {
		return nil
	}

	if disposed {
		for key := range d.matched {
			if key.remote == data.GUID {
				delete(d.matched, key)
			}
		}
		return nil
	}

	var results []MatchResult
	for _, local := range candidates {
		if local.Role == data.Role || local.TopicName != data.TopicName || local.TypeName != data.TypeName {
			continue
		}
		key := matchKey{remote: data.GUID, local: local.GUID}
		if prev, ok := d.matched[key]; ok && policiesEqual(prev, data.Policies) {
			results = append(results, MatchResult{Local: local, Matched: true})
			continue
		}

		offered, requested := data.Policies, local.Policies
		if data.Role == RoleReader {
			offered, requested = local.Policies, data.Policies
		}
		violations := qos.CheckCompatibility(offered, requested)
		if len(violations) == 0 {
			d.matched[key] = data.Policies
			results = append(results, MatchResult{Local: local, Matched: true})
		} else {
			delete(d.matched, key)
			results = append(results, MatchResult{Local: local, Matched: false, IncompatiblePolicies: violations})
		}
	}
	return results
}

func policiesEqual(a, b qos.Policies) bool {
	if a.Durability != b.Durability || a.Reliability != b.Reliability ||
		a.DeadlinePeriod != b.DeadlinePeriod || a.LatencyBudget != b.LatencyBudget ||
		a.Liveliness != b.Liveliness || a.DestinationOrder != b.DestinationOrder ||
		a.Presentation != b.Presentation || len(a.Partitions) != len(b.Partitions) {
		return false
	}
	for i := range a.Partitions {
		if a.Partitions[i] != b.Partitions[i] {
			return false
		}
	}
	return true
}
