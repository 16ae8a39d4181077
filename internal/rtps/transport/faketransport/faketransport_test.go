package faketransport

import (
	"context"
	"testing"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(port uint32) locator.Locator {
	return locator.Locator{Kind: locator.KindUDPv4, Port: port}
}

func TestSendThenRecvDeliversFrame(t *testing.T) {
	net := NewNetwork()
	a := New(net, loc(1))
	b := New(net, loc(2))

	require.NoError(t, a.Send([]byte("hello"), []locator.Locator{loc(2)}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	src, frame, err := b.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, loc(1), src)
	assert.Equal(t, []byte("hello"), frame)
}

func TestDropFuncDiscardsMatchingSends(t *testing.T) {
	net := NewNetwork()
	a := New(net, loc(1))
	b := New(net, loc(2))
	net.SetDropFunc(func(src, dst locator.Locator, frame []byte) bool { return true })

	require.NoError(t, a.Send([]byte("dropped"), []locator.Locator{loc(2)}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err := b.Recv(ctx)
	assert.Error(t, err)
}

func TestRecvRespectsContextCancellation(t *testing.T) {
	net := NewNetwork()
	a := New(net, loc(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := a.Recv(ctx)
	assert.Error(t, err)
}

func TestReorderReversesArrivalOrder(t *testing.T) {
	net := NewNetwork()
	a := New(net, loc(1))
	b := New(net, loc(2))

	require.NoError(t, a.Send([]byte("first"), []locator.Locator{loc(2)}))
	require.NoError(t, a.Send([]byte("second"), []locator.Locator{loc(2)}))
	require.NoError(t, a.Send([]byte("third"), []locator.Locator{loc(2)}))

	require.NoError(t, net.Reorder(loc(2), 3))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, frame1, err := b.Recv(ctx)
	require.NoError(t, err)
	_, frame2, err := b.Recv(ctx)
	require.NoError(t, err)
	_, frame3, err := b.Recv(ctx)
	require.NoError(t, err)

	assert.Equal(t, []byte("third"), frame1)
	assert.Equal(t, []byte("second"), frame2)
	assert.Equal(t, []byte("first"), frame3)
}
