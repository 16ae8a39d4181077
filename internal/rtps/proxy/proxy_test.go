package proxy

import (
	"testing"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/qos"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
	"github.com/stretchr/testify/assert"
)

func TestWriterProxySlideWindowContiguous(t *testing.T) {
	p := NewWriterProxy(guid.Unknown, nil, nil)
	p.MarkReceived(1)
	p.MarkReceived(2)
	p.SlideWindow()
	assert.Equal(t, wire.SequenceNumber(2), p.AvailableChangesMax)
}

func TestWriterProxySlideWindowStopsAtGap(t *testing.T) {
	p := NewWriterProxy(guid.Unknown, nil, nil)
	p.MarkReceived(1)
	p.MarkReceived(3)
	p.SlideWindow()
	assert.Equal(t, wire.SequenceNumber(1), p.AvailableChangesMax)
}

func TestWriterProxyMissingSet(t *testing.T) {
	p := NewWriterProxy(guid.Unknown, nil, nil)
	p.AvailableChangesMax = 2
	p.HighestAdvertised = 5
	p.MarkReceived(4)
	missing := p.MissingSet()
	assert.Equal(t, []wire.SequenceNumber{3, 5}, missing)
}

func TestWriterProxyIrrelevantSlidesWindow(t *testing.T) {
	p := NewWriterProxy(guid.Unknown, nil, nil)
	p.MarkIrrelevant(1)
	p.MarkReceived(2)
	p.SlideWindow()
	assert.Equal(t, wire.SequenceNumber(2), p.AvailableChangesMax)
}

func TestReaderProxyBestEffortAddIsImmediatelyUnacknowledged(t *testing.T) {
	p := NewReaderProxy(guid.Unknown, nil, nil, qos.ReliabilityBestEffort, qos.DurabilityVolatile)
	p.AddChange(1)
	assert.Equal(t, Unacknowledged, p.Status(1))
}

func TestReaderProxyReliableAddIsUnsent(t *testing.T) {
	p := NewReaderProxy(guid.Unknown, nil, nil, qos.ReliabilityReliable, qos.DurabilityVolatile)
	p.AddChange(1)
	assert.Equal(t, Unsent, p.Status(1))
}

func TestReaderProxyAcknowledgeUpTo(t *testing.T) {
	p := NewReaderProxy(guid.Unknown, nil, nil, qos.ReliabilityReliable, qos.DurabilityVolatile)
	p.AddChange(1)
	p.AddChange(2)
	p.AddChange(3)
	p.AcknowledgeUpTo(2)
	assert.Equal(t, Acknowledged, p.Status(1))
	assert.Equal(t, Acknowledged, p.Status(2))
	assert.Equal(t, Unsent, p.Status(3))
}

func TestReaderProxyMarkRequestedOnlyTracked(t *testing.T) {
	p := NewReaderProxy(guid.Unknown, nil, nil, qos.ReliabilityReliable, qos.DurabilityVolatile)
	p.AddChange(1)
	p.MarkRequested([]wire.SequenceNumber{1, 99})
	assert.Equal(t, Requested, p.Status(1))
	assert.Equal(t, Acknowledged, p.Status(99))
}

func TestReaderProxyUnackedAndRequestedAreSorted(t *testing.T) {
	p := NewReaderProxy(guid.Unknown, nil, nil, qos.ReliabilityReliable, qos.DurabilityVolatile)
	p.AddChange(5)
	p.AddChange(1)
	p.AddChange(3)
	p.MarkRequested([]wire.SequenceNumber{5, 1})
	assert.Equal(t, []wire.SequenceNumber{1, 3, 5}, p.Unacked())
	assert.Equal(t, []wire.SequenceNumber{1, 5}, p.Requested())
}
