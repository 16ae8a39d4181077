// Package metrics declares the process-wide Prometheus collectors the
// core bumps as it runs. Mirrors the promauto CounterVec/GaugeVec idiom
// mined from the teacher's watcher/prometheus.go before that file was
// deleted (see DESIGN.md).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RejectedSamplesTotal counts reader-side Add rejections, labeled by
	// reason (resource-limit kind).
	RejectedSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtps_rejected_samples_total",
			Help: "Total samples rejected by a reader's history cache, by reason.",
		},
		[]string{"reason"},
	)

	// SampleLostTotal counts best-effort reader gaps (spec.md §8 scenario 1).
	SampleLostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtps_sample_lost_total",
			Help: "Total samples a best-effort reader detected as permanently lost.",
		},
		[]string{"reader"},
	)

	// HeartbeatsSentTotal counts HEARTBEAT submessages a writer emits.
	HeartbeatsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtps_heartbeats_sent_total",
			Help: "Total HEARTBEAT submessages sent, by writer.",
		},
		[]string{"writer"},
	)

	// AckNacksSentTotal counts ACKNACK submessages a reader emits.
	AckNacksSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtps_acknacks_sent_total",
			Help: "Total ACKNACK submessages sent, by reader.",
		},
		[]string{"reader"},
	)

	// MatchesTotal counts successful endpoint matches from discovery.
	MatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rtps_matches_total",
			Help: "Total endpoint matches established by discovery.",
		},
		[]string{"kind"},
	)

	// MalformedSubmessagesTotal counts frames that wire.Parse rejects as
	// malformed (too short or bad magic) and the receiver drops (spec.md
	// §7's propagation policy). Malformed submessages inside an accepted
	// frame are not counted.
	MalformedSubmessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rtps_malformed_submessages_total",
			Help: "Total frames dropped because wire.Parse rejected them as malformed.",
		},
	)

	// ParticipantsGauge tracks live local participants in this process.
	ParticipantsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rtps_participants",
			Help: "Number of local domain participants currently enabled.",
		},
	)

	// EndpointsGauge tracks live local endpoints, labeled by kind
	// (writer/reader).
	EndpointsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rtps_endpoints",
			Help: "Number of local endpoints currently enabled, by kind.",
		},
		[]string{"kind"},
	)
)
