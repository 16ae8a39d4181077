// Package discovery implements SPDP participant discovery and SEDP
// endpoint discovery per spec.md §4.5, plus the lease-expiry and
// discovered-topic QoS-consistency supplements described in
// SPEC_FULL.md §4.5/§10.
package discovery

import (
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
)

// BuiltinEndpoint is one bit of a participant's available_builtin_endpoints
// bitset (RTPS 2.3 §8.5.3.3, restricted to the endpoints spec.md §4.5
// names).
type BuiltinEndpoint uint32

const (
	PublicationAnnouncer BuiltinEndpoint = 1 << iota
	PublicationDetector
	SubscriptionAnnouncer
	SubscriptionDetector
	TopicAnnouncer
	TopicDetector
)

// ParticipantProxy is the local bookkeeping for one discovered remote
// participant (spec.md §4.5).
type ParticipantProxy struct {
	GUIDPrefix        guid.Prefix
	UnicastLocators   locator.List
	MulticastLocators locator.List
	AvailableBuiltins BuiltinEndpoint
	LeaseDuration     time.Duration

	lastSeen time.Time
}

// ParticipantBuiltinTopicData is the SPDP sample payload (spec.md §4.5 /
// §6's built-in topic names).
type ParticipantBuiltinTopicData struct {
	GUIDPrefix        guid.Prefix
	UnicastLocators   locator.List
	MulticastLocators locator.List
	AvailableBuiltins BuiltinEndpoint
	LeaseDuration     time.Duration
}

// MatchCallback is invoked once per local built-in endpoint that should
// gain a proxy for a newly discovered participant.
type MatchCallback func(local guid.EntityID, remote guid.GUID, unicast, multicast locator.List)

// SPDPDetector tracks discovered participants, ignore-list membership,
// and lease expiry. It is not safe for concurrent use without the
// orchestrator's single logical lock (spec.md §5).
type SPDPDetector struct {
	Self guid.Prefix

	proxies map[guid.Prefix]*ParticipantProxy
	ignored map[guid.Prefix]bool

	onMatch  MatchCallback
	onRemove func(prefix guid.Prefix)
}

// NewSPDPDetector constructs an empty detector for the local participant
// self, invoking onMatch for every (local built-in endpoint, remote
// built-in endpoint) pair to wire per spec.md §4.5, and onRemove when a
// participant is dropped (lease expiry or disposal, SPEC_FULL.md §4.5/§10
// item 4).
func NewSPDPDetector(self guid.Prefix, onMatch MatchCallback, onRemove func(guid.Prefix)) *SPDPDetector {
	return &SPDPDetector{
		Self:     self,
		proxies:  make(map[guid.Prefix]*ParticipantProxy),
		ignored:  make(map[guid.Prefix]bool),
		onMatch:  onMatch,
		onRemove: onRemove,
	}
}

// Ignore adds prefix to the ignore set; per spec.md §4.5 this is not
// reversible and (per the resolved Open Question, SPEC_FULL.md §9)
// applies only prospectively — an already-matched participant is left
// matched.
func (d *SPDPDetector) Ignore(prefix guid.Prefix) {
	d.ignored[prefix] = true
}

// IsIgnored reports whether prefix is on the ignore list.
func (d *SPDPDetector) IsIgnored(prefix guid.Prefix) bool {
	return d.ignored[prefix]
}

// OnSample processes one SPDP sample, received at now. A disposed sample
// for a known participant removes it (SPEC_FULL.md §10 item 4); an alive
// sample for an unknown-and-not-ignored participant constructs a proxy
// and fires onMatch for every builtin endpoint bit the peer advertises.
func (d *SPDPDetector) OnSample(data ParticipantBuiltinTopicData, disposed bool, now time.Time) {
	if data.GUIDPrefix == d.Self || d.ignored[data.GUIDPrefix] {
		return
	}
	if disposed {
		d.removeParticipant(data.GUIDPrefix)
		return
	}
	if _, known := d.proxies[data.GUIDPrefix]; known {
		d.proxies[data.GUIDPrefix].lastSeen = now
		return
	}

	proxy := &ParticipantProxy{
		GUIDPrefix:        data.GUIDPrefix,
		UnicastLocators:   data.UnicastLocators,
		MulticastLocators: data.MulticastLocators,
		AvailableBuiltins: data.AvailableBuiltins,
		LeaseDuration:     data.LeaseDuration,
		lastSeen:          now,
	}
	d.proxies[data.GUIDPrefix] = proxy

	for _, pair := range builtinPairs {
		if proxy.AvailableBuiltins&pair.remoteBit == 0 {
			continue
		}
		remote := guid.New(data.GUIDPrefix, pair.remoteEntity)
		if d.onMatch != nil {
			d.onMatch(pair.localEntity, remote, proxy.UnicastLocators, proxy.MulticastLocators)
		}
	}
}

// removeParticipant implements both removal triggers SPEC_FULL.md §10
// item 4 names: an explicit disposed SPDP sample and lease expiry.
func (d *SPDPDetector) removeParticipant(prefix guid.Prefix) {
	if _, known := d.proxies[prefix]; !known {
		return
	}
	delete(d.proxies, prefix)
	if d.onRemove != nil {
		d.onRemove(prefix)
	}
}

// ExpireStaleParticipants drops every participant whose lease has
// elapsed with no SPDP refresh as of now, restoring the original's
// lease-expiry path the distillation dropped (SPEC_FULL.md §4.5).
// Intended to run from the orchestrator's status-evaluator tick.
func (d *SPDPDetector) ExpireStaleParticipants(now time.Time) {
	for prefix, proxy := range d.proxies {
		if now.Sub(proxy.lastSeen) > proxy.LeaseDuration {
			d.removeParticipant(prefix)
		}
	}
}

// Proxy returns the discovered proxy for prefix, if any.
func (d *SPDPDetector) Proxy(prefix guid.Prefix) (*ParticipantProxy, bool) {
	p, ok := d.proxies[prefix]
	return p, ok
}

// Count returns the number of currently discovered (non-expired,
// non-ignored) remote participants, for status reporting.
func (d *SPDPDetector) Count() int {
	return len(d.proxies)
}

type builtinPair struct {
	remoteBit    BuiltinEndpoint
	remoteEntity guid.EntityID
	localEntity  guid.EntityID
}

// builtinPairs maps each advertised remote builtin-endpoint bit to the
// remote entity id it corresponds to and the local built-in endpoint that
// should gain a proxy for it (a remote announcer matches a local
// detector and vice versa).
var builtinPairs = []builtinPair{
	{PublicationAnnouncer, guid.EntityIDSEDPPubAnnouncer, guid.EntityIDSEDPPubDetector},
	{PublicationDetector, guid.EntityIDSEDPPubDetector, guid.EntityIDSEDPPubAnnouncer},
	{SubscriptionAnnouncer, guid.EntityIDSEDPSubAnnouncer, guid.EntityIDSEDPSubDetector},
	{SubscriptionDetector, guid.EntityIDSEDPSubDetector, guid.EntityIDSEDPSubAnnouncer},
	{TopicAnnouncer, guid.EntityIDSEDPTopicAnnouncer, guid.EntityIDSEDPTopicDetector},
	{TopicDetector, guid.EntityIDSEDPTopicDetector, guid.EntityIDSEDPTopicAnnouncer},
}
