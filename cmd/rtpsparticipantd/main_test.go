package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

func TestNewGUIDPrefixIsNonZero(t *testing.T) {
	p, err := newGUIDPrefix()
	require.NoError(t, err)
	assert.NotEqual(t, guid.Prefix{}, p)
}

func TestNewGUIDPrefixIsUnpredictableAcrossCalls(t *testing.T) {
	a, err := newGUIDPrefix()
	require.NoError(t, err)
	b, err := newGUIDPrefix()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestResolveBindLocatorEncodesPort(t *testing.T) {
	loc, err := resolveBindLocator("127.0.0.1", 7410)
	require.NoError(t, err)
	assert.Equal(t, uint32(7410), loc.Port)
}

func TestSpdpAnnounceFrameParsesBack(t *testing.T) {
	var prefix guid.Prefix
	copy(prefix[:], []byte("123456789012"))
	frame := spdpAnnounceFrame(prefix, time.Unix(100, 0))

	parsed, err := wire.Parse(frame)
	require.NoError(t, err)
	assert.Equal(t, prefix, parsed.Header.Prefix)
	require.Len(t, parsed.Submessages, 1)
	assert.Equal(t, wire.KindInfoTS, parsed.Submessages[0].Kind)
	ts, ok := parsed.Submessages[0].Body.(wire.InfoTS)
	require.True(t, ok)
	assert.Equal(t, uint32(100), ts.Timestamp.Seconds)
}
