package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopback() locator.Locator {
	return locator.Locator{Kind: locator.KindUDPv4, Port: 0, Address: [16]byte{12: 127, 15: 1}}
}

func TestUDPSendRecvRoundTrip(t *testing.T) {
	server, err := NewUDP(loopback())
	require.NoError(t, err)
	defer server.Close()

	client, err := NewUDP(loopback())
	require.NoError(t, err)
	defer client.Close()

	dest := locator.FromUDPAddr(server.conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, client.Send([]byte("ping"), []locator.Locator{dest}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, frame, err := server.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), frame)
}

func TestUDPRecvRespectsContextCancellation(t *testing.T) {
	conn, err := NewUDP(loopback())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = conn.Recv(ctx)
	assert.Error(t, err)
}
