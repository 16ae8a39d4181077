// Package qos implements the offered-versus-requested compatibility check
// described in spec.md §4.7: for each policy, offered must be "at least as
// strong as" requested under a per-policy partial order.
package qos

import "time"

// PolicyID names one of the checked QoS policies; IncompatibleQoSStatus
// reports both the full violation list and, separately, the first one.
type PolicyID int

const (
	PolicyDurability PolicyID = iota
	PolicyReliability
	PolicyDeadline
	PolicyLatencyBudget
	PolicyLiveliness
	PolicyDestinationOrder
	PolicyPresentation
	PolicyPartition
)

func (p PolicyID) String() string {
	switch p {
	case PolicyDurability:
		return "DURABILITY"
	case PolicyReliability:
		return "RELIABILITY"
	case PolicyDeadline:
		return "DEADLINE"
	case PolicyLatencyBudget:
		return "LATENCY_BUDGET"
	case PolicyLiveliness:
		return "LIVELINESS"
	case PolicyDestinationOrder:
		return "DESTINATION_ORDER"
	case PolicyPresentation:
		return "PRESENTATION"
	case PolicyPartition:
		return "PARTITION"
	default:
		return "UNKNOWN_POLICY"
	}
}

// DurabilityKind orders VOLATILE < TRANSIENT_LOCAL (spec.md §4.7).
type DurabilityKind int

const (
	DurabilityVolatile DurabilityKind = iota
	DurabilityTransientLocal
)

// ReliabilityKind orders BEST_EFFORT < RELIABLE.
type ReliabilityKind int

const (
	ReliabilityBestEffort ReliabilityKind = iota
	ReliabilityReliable
)

// LivelinessKind orders AUTOMATIC < MANUAL_BY_PARTICIPANT < MANUAL_BY_TOPIC.
type LivelinessKind int

const (
	LivelinessAutomatic LivelinessKind = iota
	LivelinessManualByParticipant
	LivelinessManualByTopic
)

// DestinationOrderKind orders BY_RECEPTION_TIMESTAMP < BY_SOURCE_TIMESTAMP.
type DestinationOrderKind int

const (
	DestinationOrderByReception DestinationOrderKind = iota
	DestinationOrderBySourceTimestamp
)

// PresentationScope orders INSTANCE < TOPIC < GROUP for the scope-only
// ordered-access comparison spec.md §4.7 describes as "order on scope".
type PresentationScope int

const (
	PresentationInstance PresentationScope = iota
	PresentationTopic
	PresentationGroup
)

// Presentation bundles the three presentation sub-policies.
type Presentation struct {
	Scope          PresentationScope
	CoherentAccess bool
	OrderedAccess  bool
}

// Policies is one side's (offered or requested) QoS as the compatibility
// engine sees it; the façade maps its richer QoS struct onto this narrower
// view before calling CheckCompatibility.
type Policies struct {
	Durability        DurabilityKind
	Reliability       ReliabilityKind
	DeadlinePeriod    time.Duration
	LatencyBudget     time.Duration
	Liveliness        LivelinessKind
	DestinationOrder  DestinationOrderKind
	Presentation      Presentation
	Partitions        []string
}

// CheckCompatibility returns the full list of policy ids for which offered
// is not at least as strong as requested, offered≥requested meaning
// compatible for every checked policy (spec.md §4.7). An empty result means
// fully compatible. Partition uses PartitionsMatch rather than its own
// ordering, since partition compatibility is membership, not strength.
func CheckCompatibility(offered, requested Policies) []PolicyID {
	var bad []PolicyID
	if offered.Durability < requested.Durability {
		bad = append(bad, PolicyDurability)
	}
	if offered.Reliability < requested.Reliability {
		bad = append(bad, PolicyReliability)
	}
	if requested.DeadlinePeriod > 0 && (offered.DeadlinePeriod == 0 || offered.DeadlinePeriod > requested.DeadlinePeriod) {
		bad = append(bad, PolicyDeadline)
	}
	if offered.LatencyBudget > requested.LatencyBudget {
		bad = append(bad, PolicyLatencyBudget)
	}
	if offered.Liveliness < requested.Liveliness {
		bad = append(bad, PolicyLiveliness)
	}
	if offered.DestinationOrder < requested.DestinationOrder {
		bad = append(bad, PolicyDestinationOrder)
	}
	if !presentationCompatible(offered.Presentation, requested.Presentation) {
		bad = append(bad, PolicyPresentation)
	}
	if !PartitionsMatch(offered.Partitions, requested.Partitions) {
		bad = append(bad, PolicyPartition)
	}
	return bad
}

func presentationCompatible(offered, requested Presentation) bool {
	if offered.CoherentAccess != requested.CoherentAccess {
		return false
	}
	if offered.OrderedAccess != requested.OrderedAccess {
		return false
	}
	return offered.Scope >= requested.Scope
}
