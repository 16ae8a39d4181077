package discovery

import (
	"testing"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prefix(n byte) guid.Prefix {
	var p guid.Prefix
	p[0] = n
	return p
}

func TestSPDPIgnoresSelf(t *testing.T) {
	self := prefix(1)
	called := false
	d := NewSPDPDetector(self, func(guid.EntityID, guid.GUID, locator.List, locator.List) { called = true }, nil)
	d.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: self}, false, time.Now())
	assert.False(t, called)
	_, known := d.Proxy(self)
	assert.False(t, known)
}

func TestSPDPMatchesOnFirstDiscoveryForEachAdvertisedBuiltin(t *testing.T) {
	var matchedLocals []guid.EntityID
	d := NewSPDPDetector(prefix(1), func(local guid.EntityID, remote guid.GUID, unicast, multicast locator.List) {
		matchedLocals = append(matchedLocals, local)
	}, nil)

	remote := prefix(2)
	d.OnSample(ParticipantBuiltinTopicData{
		GUIDPrefix:        remote,
		AvailableBuiltins: PublicationAnnouncer | SubscriptionDetector,
		LeaseDuration:     time.Second,
	}, false, time.Now())

	require.Len(t, matchedLocals, 2)
	assert.Contains(t, matchedLocals, guid.EntityIDSEDPPubDetector)
	assert.Contains(t, matchedLocals, guid.EntityIDSEDPSubAnnouncer)

	_, known := d.Proxy(remote)
	assert.True(t, known)
}

func TestSPDPRedeliveredSampleDoesNotRematch(t *testing.T) {
	matchCount := 0
	d := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) { matchCount++ }, nil)

	remote := prefix(2)
	data := ParticipantBuiltinTopicData{GUIDPrefix: remote, AvailableBuiltins: PublicationAnnouncer, LeaseDuration: time.Second}
	d.OnSample(data, false, time.Now())
	d.OnSample(data, false, time.Now())

	assert.Equal(t, 1, matchCount)
}

func TestSPDPIgnoreSuppressesFutureSamples(t *testing.T) {
	called := false
	d := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) { called = true }, nil)
	remote := prefix(2)
	d.Ignore(remote)
	d.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: remote, AvailableBuiltins: PublicationAnnouncer}, false, time.Now())
	assert.False(t, called)
}

func TestSPDPDisposedSampleRemovesParticipant(t *testing.T) {
	removed := guid.Prefix{}
	d := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, func(p guid.Prefix) { removed = p })
	remote := prefix(2)
	d.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: remote, LeaseDuration: time.Second}, false, time.Now())
	d.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: remote}, true, time.Now())

	assert.Equal(t, remote, removed)
	_, known := d.Proxy(remote)
	assert.False(t, known)
}

func TestSPDPExpireStaleParticipantsDropsOnTimeout(t *testing.T) {
	removed := false
	d := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, func(guid.Prefix) { removed = true })
	remote := prefix(2)
	now := time.Unix(0, 0)
	d.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: remote, LeaseDuration: time.Second}, false, now)

	d.ExpireStaleParticipants(now.Add(500 * time.Millisecond))
	assert.False(t, removed)

	d.ExpireStaleParticipants(now.Add(2 * time.Second))
	assert.True(t, removed)
}

func defaultEndpointPolicies() qos.Policies {
	return qos.Policies{
		Durability:       qos.DurabilityVolatile,
		Reliability:      qos.ReliabilityBestEffort,
		Liveliness:       qos.LivelinessAutomatic,
		DestinationOrder: qos.DestinationOrderByReception,
	}
}

// TestIncompatibleQoSReportsViolation is spec.md §8 scenario 5: writer
// offers BEST_EFFORT, reader requests RELIABLE, no match.
func TestIncompatibleQoSReportsViolation(t *testing.T) {
	participants := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, nil)
	writerPrefix := prefix(2)
	participants.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: writerPrefix, LeaseDuration: time.Second}, false, time.Now())

	sedp := NewSEDPDetector(participants)
	writerGUID := guid.New(writerPrefix, guid.EntityID{1})
	remoteWriter := DiscoveredEndpointData{
		GUID:      writerGUID,
		Role:      RoleWriter,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}

	localReaderPolicies := defaultEndpointPolicies()
	localReaderPolicies.Reliability = qos.ReliabilityReliable
	localReader := LocalEndpoint{
		GUID:      guid.New(prefix(1), guid.EntityID{2}),
		Role:      RoleReader,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  localReaderPolicies,
	}

	results := sedp.OnSample(remoteWriter, false, []LocalEndpoint{localReader})
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
	require.Len(t, results[0].IncompatiblePolicies, 1)
	assert.Equal(t, qos.PolicyReliability, results[0].IncompatiblePolicies[0])
}

func TestCompatibleQoSMatches(t *testing.T) {
	participants := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, nil)
	writerPrefix := prefix(2)
	participants.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: writerPrefix, LeaseDuration: time.Second}, false, time.Now())

	sedp := NewSEDPDetector(participants)
	remoteWriter := DiscoveredEndpointData{
		GUID:      guid.New(writerPrefix, guid.EntityID{1}),
		Role:      RoleWriter,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}
	localReader := LocalEndpoint{
		GUID:      guid.New(prefix(1), guid.EntityID{2}),
		Role:      RoleReader,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}

	results := sedp.OnSample(remoteWriter, false, []LocalEndpoint{localReader})
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
}

func TestMatchIdempotenceRedeliveredSampleDoesNotChangeMatchState(t *testing.T) {
	participants := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, nil)
	writerPrefix := prefix(2)
	participants.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: writerPrefix, LeaseDuration: time.Second}, false, time.Now())

	sedp := NewSEDPDetector(participants)
	remoteWriter := DiscoveredEndpointData{
		GUID:      guid.New(writerPrefix, guid.EntityID{1}),
		Role:      RoleWriter,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}
	localReader := LocalEndpoint{
		GUID:      guid.New(prefix(1), guid.EntityID{2}),
		Role:      RoleReader,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}

	first := sedp.OnSample(remoteWriter, false, []LocalEndpoint{localReader})
	second := sedp.OnSample(remoteWriter, false, []LocalEndpoint{localReader})
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.True(t, first[0].Matched)
	assert.True(t, second[0].Matched)
	assert.Equal(t, 1, len(sedp.matched))
}

func TestDisposedSEDPSampleUnmatches(t *testing.T) {
	participants := NewSPDPDetector(prefix(1), func(guid.EntityID, guid.GUID, locator.List, locator.List) {}, nil)
	writerPrefix := prefix(2)
	participants.OnSample(ParticipantBuiltinTopicData{GUIDPrefix: writerPrefix, LeaseDuration: time.Second}, false, time.Now())

	sedp := NewSEDPDetector(participants)
	remoteWriter := DiscoveredEndpointData{
		GUID:      guid.New(writerPrefix, guid.EntityID{1}),
		Role:      RoleWriter,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}
	localReader := LocalEndpoint{
		GUID:      guid.New(prefix(1), guid.EntityID{2}),
		Role:      RoleReader,
		TopicName: "Square",
		TypeName:  "ShapeType",
		Policies:  defaultEndpointPolicies(),
	}
	sedp.OnSample(remoteWriter, false, []LocalEndpoint{localReader})
	require.Equal(t, 1, len(sedp.matched))

	sedp.OnSample(remoteWriter, true, nil)
	assert.Equal(t, 0, len(sedp.matched))
}

func TestTopicCacheFlagsTypeMismatch(t *testing.T) {
	c := NewTopicCache()
	c.Register(RegisteredTopic{TopicName: "Square", TypeName: "ShapeType"})

	assert.NoError(t, c.CheckConsistent(DiscoveredTopicData{TopicName: "Square", TypeName: "ShapeType"}))
	assert.Error(t, c.CheckConsistent(DiscoveredTopicData{TopicName: "Square", TypeName: "OtherType"}))
	assert.NoError(t, c.CheckConsistent(DiscoveredTopicData{TopicName: "Unregistered", TypeName: "Anything"}))
}
