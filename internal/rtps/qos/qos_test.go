package qos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func defaultPolicies() Policies {
	return Policies{
		Durability:       DurabilityVolatile,
		Reliability:      ReliabilityBestEffort,
		Liveliness:       LivelinessAutomatic,
		DestinationOrder: DestinationOrderByReception,
	}
}

func TestCheckCompatibilityAllDefaultsCompatible(t *testing.T) {
	bad := CheckCompatibility(defaultPolicies(), defaultPolicies())
	assert.Empty(t, bad)
}

func TestCheckCompatibilityReliabilityMismatch(t *testing.T) {
	offered := defaultPolicies()
	requested := defaultPolicies()
	requested.Reliability = ReliabilityReliable
	bad := CheckCompatibility(offered, requested)
	assert.Equal(t, []PolicyID{PolicyReliability}, bad)
}

func TestCheckCompatibilityDurabilityMismatch(t *testing.T) {
	offered := defaultPolicies()
	requested := defaultPolicies()
	requested.Durability = DurabilityTransientLocal
	bad := CheckCompatibility(offered, requested)
	assert.Contains(t, bad, PolicyDurability)
}

func TestCheckCompatibilityDeadlineWriterSlowerIncompatible(t *testing.T) {
	offered := defaultPolicies()
	offered.DeadlinePeriod = 2 * time.Second
	requested := defaultPolicies()
	requested.DeadlinePeriod = 1 * time.Second
	bad := CheckCompatibility(offered, requested)
	assert.Contains(t, bad, PolicyDeadline)
}

func TestCheckCompatibilityDeadlineWriterFasterCompatible(t *testing.T) {
	offered := defaultPolicies()
	offered.DeadlinePeriod = 1 * time.Second
	requested := defaultPolicies()
	requested.DeadlinePeriod = 2 * time.Second
	bad := CheckCompatibility(offered, requested)
	assert.NotContains(t, bad, PolicyDeadline)
}

func TestCheckCompatibilityReturnsFullViolationList(t *testing.T) {
	offered := defaultPolicies()
	requested := defaultPolicies()
	requested.Reliability = ReliabilityReliable
	requested.Durability = DurabilityTransientLocal
	requested.Liveliness = LivelinessManualByTopic
	bad := CheckCompatibility(offered, requested)
	assert.Len(t, bad, 3)
	assert.Contains(t, bad, PolicyReliability)
	assert.Contains(t, bad, PolicyDurability)
	assert.Contains(t, bad, PolicyLiveliness)
}

func TestCheckCompatibilityPresentationScopeOrder(t *testing.T) {
	offered := defaultPolicies()
	offered.Presentation = Presentation{Scope: PresentationInstance}
	requested := defaultPolicies()
	requested.Presentation = Presentation{Scope: PresentationGroup}
	bad := CheckCompatibility(offered, requested)
	assert.Contains(t, bad, PolicyPresentation)
}

func TestCheckCompatibilityPartitionMismatch(t *testing.T) {
	offered := defaultPolicies()
	offered.Partitions = []string{"east"}
	requested := defaultPolicies()
	requested.Partitions = []string{"west"}
	bad := CheckCompatibility(offered, requested)
	assert.Contains(t, bad, PolicyPartition)
}

func TestPartitionsMatchEmptyIsDefaultPartition(t *testing.T) {
	assert.True(t, PartitionsMatch(nil, nil))
}

func TestPartitionsMatchLiteral(t *testing.T) {
	assert.True(t, PartitionsMatch([]string{"a", "b"}, []string{"b", "c"}))
	assert.False(t, PartitionsMatch([]string{"a"}, []string{"b"}))
}

func TestPartitionsMatchGlob(t *testing.T) {
	assert.True(t, PartitionsMatch([]string{"prod-*"}, []string{"prod-east"}))
	assert.False(t, PartitionsMatch([]string{"prod-*"}, []string{"staging-east"}))
}

func TestPolicyIDString(t *testing.T) {
	assert.Equal(t, "RELIABILITY", PolicyReliability.String())
	assert.Equal(t, "PARTITION", PolicyPartition.String())
}
