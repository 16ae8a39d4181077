// Package dds is the narrow public surface a user-facing façade would
// import: the wire-identity type (GUID), the richer QoS a façade exposes
// to applications before narrowing it to the compatibility engine's view,
// and the Sample a read/take returns. It owns no state and runs no
// goroutines; everything behavioral lives in internal/rtps/*.
package dds

import (
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/endpoint"
	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/history"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
)

// GUID, Prefix and EntityID are the identity types spec.md §3 describes;
// re-exported rather than redefined so a façade and the engine always
// agree on wire identity.
type (
	GUID     = guid.GUID
	Prefix   = guid.Prefix
	EntityID = guid.EntityID
)

// InstanceHandle is the opaque per-key handle spec.md §3 describes.
type InstanceHandle = history.InstanceHandle

// Durability, Reliability, Liveliness and DestinationOrder are aliases of
// the kinds qos.Policies checks compatibility over, so ToPolicies copies
// them across without conversion.
type (
	Durability       = qos.DurabilityKind
	Reliability      = qos.ReliabilityKind
	Liveliness       = qos.LivelinessKind
	DestinationOrder = qos.DestinationOrderKind
)

const (
	DurabilityVolatile       = qos.DurabilityVolatile
	DurabilityTransientLocal = qos.DurabilityTransientLocal

	ReliabilityBestEffort = qos.ReliabilityBestEffort
	ReliabilityReliable   = qos.ReliabilityReliable

	LivelinessAutomatic           = qos.LivelinessAutomatic
	LivelinessManualByParticipant = qos.LivelinessManualByParticipant
	LivelinessManualByTopic       = qos.LivelinessManualByTopic

	DestinationOrderByReception        = qos.DestinationOrderByReception
	DestinationOrderBySourceTimestamp  = qos.DestinationOrderBySourceTimestamp
)

// HistoryKind selects KEEP_LAST(depth) or KEEP_ALL retention, same enum
// history.Cache uses.
type HistoryKind = history.HistoryKind

const (
	KeepLast HistoryKind = history.KeepLast
	KeepAll  HistoryKind = history.KeepAll
)

// History bundles the history QoS's kind and depth (depth is only
// meaningful for KeepLast).
type History struct {
	Kind  HistoryKind
	Depth int
}

// ResourceLimits bounds a history cache the way spec.md §4.2 describes.
type ResourceLimits = history.ResourceLimits

// Presentation bundles the three presentation sub-policies spec.md §4.7
// orders by scope.
type Presentation struct {
	Scope          qos.PresentationScope
	CoherentAccess bool
	OrderedAccess  bool
}

// QoS is the full policy set a façade would expose to an application,
// narrowed to qos.Policies before being handed to CheckCompatibility (the
// compatibility engine only needs the subset it actually orders).
type QoS struct {
	Durability       Durability
	Reliability      Reliability
	History          History
	ResourceLimits   ResourceLimits
	Deadline         time.Duration
	LatencyBudget    time.Duration
	Liveliness       Liveliness
	DestinationOrder DestinationOrder
	Presentation     Presentation
	Partitions       []string

	// Lifespan bounds how long a cached sample remains valid, independent
	// of history depth (spec.md §4.2 lifespan eviction).
	Lifespan time.Duration

	// TimeBasedFilterMinSeparation is the reader-side minimum_separation
	// of spec.md §4.6's time-based filter.
	TimeBasedFilterMinSeparation time.Duration
}

// DefaultQoS returns the default policy set (BEST_EFFORT, VOLATILE,
// KEEP_LAST(1)), matching the RTPS/DDS specification's defaults.
func DefaultQoS() QoS {
	return QoS{
		Durability:     DurabilityVolatile,
		Reliability:    ReliabilityBestEffort,
		History:        History{Kind: KeepLast, Depth: 1},
		Liveliness:     LivelinessAutomatic,
		Presentation:   Presentation{Scope: qos.PresentationInstance},
	}
}

// ToPolicies narrows a QoS down to the fields qos.CheckCompatibility
// orders, discarding the ones (history, resource limits, lifespan,
// time-based filter) that affect retention rather than offered/requested
// compatibility.
func (q QoS) ToPolicies() qos.Policies {
	return qos.Policies{
		Durability:       q.Durability,
		Reliability:      q.Reliability,
		DeadlinePeriod:   q.Deadline,
		LatencyBudget:    q.LatencyBudget,
		Liveliness:       q.Liveliness,
		DestinationOrder: q.DestinationOrder,
		Presentation: qos.Presentation{
			Scope:          q.Presentation.Scope,
			CoherentAccess: q.Presentation.CoherentAccess,
			OrderedAccess:  q.Presentation.OrderedAccess,
		},
		Partitions: q.Partitions,
	}
}

// Sample is one value a read/take operation returns: the serialized
// payload (nil for a pure dispose/unregister carrying only a key) plus
// the metadata spec.md §4.6 step 4 computes.
type Sample struct {
	Data                   []byte
	InstanceHandle         InstanceHandle
	InstanceState          endpoint.InstanceState
	SampleRank             int
	GenerationRank         int
	AbsoluteGenerationRank int
	SourceTimestamp        time.Time

	// ValidData is false for a disposed or unregistered instance's sample,
	// which carries only a key and no application payload (recovered from
	// original_source/dust-dds's dds_data_reader.rs; spec.md §8 scenario 4
	// asserts this directly).
	ValidData bool
}

// FromResult adapts an endpoint.Result into the façade's Sample type.
func FromResult(r endpoint.Result) Sample {
	return Sample{
		Data:                   r.Payload,
		InstanceHandle:         r.Info.InstanceHandle,
		InstanceState:          r.Info.InstanceState,
		SampleRank:             r.Info.SampleRank,
		GenerationRank:         r.Info.GenerationRank,
		AbsoluteGenerationRank: r.Info.AbsoluteGenerationRank,
		SourceTimestamp:        r.Info.SourceTimestamp,
		ValidData:              r.Info.Valid,
	}
}

// FromResults adapts a slice of endpoint.Result in one pass.
func FromResults(results []endpoint.Result) []Sample {
	out := make([]Sample, len(results))
	for i, r := range results {
		out[i] = FromResult(r)
	}
	return out
}
