package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inst(n byte) InstanceHandle { return InstanceHandle{n} }

func TestAddAcceptsUnderLimits(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{}, 0, ByReceptionTimestamp)
	res := c.Add(Change{SequenceNumber: 1, Instance: inst(1)})
	assert.Equal(t, Accepted, res)
	assert.Equal(t, 1, c.Len())
}

func TestAddRejectsBySamplesLimit(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{MaxSamples: 1}, 0, ByReceptionTimestamp)
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 1, Instance: inst(1)}))
	assert.Equal(t, RejectedBySamplesLimit, c.Add(Change{SequenceNumber: 2, Instance: inst(1)}))
}

func TestAddRejectsByInstancesLimit(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{MaxInstances: 1}, 0, ByReceptionTimestamp)
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 1, Instance: inst(1)}))
	assert.Equal(t, RejectedByInstancesLimit, c.Add(Change{SequenceNumber: 2, Instance: inst(2)}))
}

func TestAddRejectsBySamplesPerInstanceLimit(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{MaxSamplesPerInstance: 1}, 0, ByReceptionTimestamp)
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 1, Instance: inst(1)}))
	assert.Equal(t, RejectedBySamplesPerInstanceLimit, c.Add(Change{SequenceNumber: 2, Instance: inst(1)}))
}

func TestKeepLastEvictsOldestOfSameInstance(t *testing.T) {
	c := New(KeepLast, 2, ResourceLimits{}, 0, ByReceptionTimestamp)
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 1, Instance: inst(1)}))
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 2, Instance: inst(1)}))
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 3, Instance: inst(1)}))
	assert.Equal(t, 2, c.Len())
	seqs := []int64{}
	for _, ch := range c.ByInstance(inst(1)) {
		seqs = append(seqs, ch.SequenceNumber)
	}
	assert.Equal(t, []int64{2, 3}, seqs)
}

func TestKeepLastDoesNotEvictAcrossInstances(t *testing.T) {
	c := New(KeepLast, 1, ResourceLimits{}, 0, ByReceptionTimestamp)
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 1, Instance: inst(1)}))
	require.Equal(t, Accepted, c.Add(Change{SequenceNumber: 2, Instance: inst(2)}))
	assert.Equal(t, 2, c.Len())
}

func TestRemoveWhere(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{}, 0, ByReceptionTimestamp)
	c.Add(Change{SequenceNumber: 1, Instance: inst(1)})
	c.Add(Change{SequenceNumber: 2, Instance: inst(1)})
	c.RemoveWhere(func(ch Change) bool { return ch.SequenceNumber == 1 })
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(2), c.ByInstance(inst(1))[0].SequenceNumber)
}

func TestEvictExpiredRemovesOldChanges(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{}, 10*time.Second, ByReceptionTimestamp)
	now := time.Now()
	c.Add(Change{SequenceNumber: 1, Instance: inst(1), SourceTime: now.Add(-time.Minute)})
	c.Add(Change{SequenceNumber: 2, Instance: inst(1), SourceTime: now})
	c.EvictExpired(now)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, int64(2), c.ByInstance(inst(1))[0].SequenceNumber)
}

func TestIterOrderedBySourceTimestampTieBreaksOnReception(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{}, 0, BySourceTimestamp)
	base := time.Now()
	c.Add(Change{SequenceNumber: 1, Instance: inst(1), SourceTime: base, ReceptionTime: base.Add(2 * time.Second)})
	c.Add(Change{SequenceNumber: 2, Instance: inst(2), SourceTime: base, ReceptionTime: base.Add(1 * time.Second)})
	ordered := c.IterOrdered()
	require.Len(t, ordered, 2)
	assert.Equal(t, int64(2), ordered[0].SequenceNumber)
	assert.Equal(t, int64(1), ordered[1].SequenceNumber)
}

func TestIterOrderedByReceptionTimestamp(t *testing.T) {
	c := New(KeepAll, 0, ResourceLimits{}, 0, ByReceptionTimestamp)
	base := time.Now()
	c.Add(Change{SequenceNumber: 1, Instance: inst(1), ReceptionTime: base.Add(2 * time.Second)})
	c.Add(Change{SequenceNumber: 2, Instance: inst(2), ReceptionTime: base})
	ordered := c.IterOrdered()
	require.Len(t, ordered, 2)
	assert.Equal(t, int64(2), ordered[0].SequenceNumber)
}
