// Package wire implements the RTPS message and submessage codec described
// in spec.md §4.1: a fixed 20-byte message header followed by an ordered
// sequence of submessages, each beginning with its own 4-byte header.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
)

// Magic is the fixed ASCII prefix of every RTPS frame.
var Magic = [4]byte{'R', 'T', 'P', 'S'}

// HeaderLen is the fixed width of the message header.
const HeaderLen = 20

// ProtocolVersion is the RTPS wire version this codec emits and accepts.
type ProtocolVersion struct{ Major, Minor uint8 }

// VendorID identifies the implementation that produced a message.
type VendorID [2]byte

// Header is the fixed 20-byte message header: magic, version, vendor id,
// guid prefix of the sending participant.
type Header struct {
	Version ProtocolVersion
	Vendor  VendorID
	Prefix  guid.Prefix
}

// Malformed is returned by Parse when the frame is too short or carries the
// wrong magic. Per spec.md §7's propagation policy, this is the only error
// Parse ever returns — an individual malformed submessage is kept as a
// body-less entry with its Raw bytes, not surfaced as an error.
type Malformed struct{ Detail string }

func (e Malformed) Error() string { return "malformed RTPS frame: " + e.Detail }

func parseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, Malformed{Detail: fmt.Sprintf("frame too short: %d bytes", len(b))}
	}
	if b[0] != Magic[0] || b[1] != Magic[1] || b[2] != Magic[2] || b[3] != Magic[3] {
		return Header{}, Malformed{Detail: "bad magic"}
	}
	var h Header
	h.Version = ProtocolVersion{Major: b[4], Minor: b[5]}
	h.Vendor = VendorID{b[6], b[7]}
	copy(h.Prefix[:], b[8:20])
	return h, nil
}

func emitHeader(h Header, out []byte) []byte {
	out = append(out, Magic[:]...)
	out = append(out, h.Version.Major, h.Version.Minor)
	out = append(out, h.Vendor[:]...)
	out = append(out, h.Prefix[:]...)
	return out
}

// littleEndianFlag is bit 0 of every submessage's flags byte.
const littleEndianFlag = 0x01

func byteOrder(flags byte) binary.ByteOrder {
	if flags&littleEndianFlag != 0 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
