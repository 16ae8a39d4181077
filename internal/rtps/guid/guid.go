// Package guid implements the RTPS GUID: a 12-byte participant prefix plus
// a 4-byte entity id (spec.md §3 "GUID").
package guid

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

// PrefixLen and EntityIDLen are the fixed wire widths of a GUID's two halves.
const (
	PrefixLen   = 12
	EntityIDLen = 4
	Len         = PrefixLen + EntityIDLen
)

// Prefix identifies a participant; every entity owned by that participant
// shares its prefix (spec.md §3 invariant).
type Prefix [PrefixLen]byte

// EntityID identifies an entity within a participant. The low byte encodes
// the entity kind.
type EntityID [EntityIDLen]byte

// GUID is the full 16-byte identifier of a participant or entity.
type GUID struct {
	Prefix Prefix
	Entity EntityID
}

// Kind is the low byte of an EntityID, distinguishing user vs. built-in
// entities and their flavor (reader/writer, with/without key, group).
type Kind byte

// Built-in entity kinds, fixed by the RTPS specification.
const (
	KindParticipant            Kind = 0x01
	KindWriterWithKey          Kind = 0x02
	KindWriterNoKey            Kind = 0x03
	KindReaderNoKey            Kind = 0x04
	KindReaderWithKey          Kind = 0x07
	KindWriterGroup            Kind = 0x08
	KindReaderGroup            Kind = 0x09
	KindTopic                  Kind = 0x0a
	KindBuiltinWriterWithKey   Kind = 0xc2
	KindBuiltinWriterNoKey     Kind = 0xc3
	KindBuiltinReaderNoKey     Kind = 0xc4
	KindBuiltinReaderWithKey   Kind = 0xc7
)

// EntityKind returns the low byte of the entity id, per spec.md §3.
func (id EntityID) EntityKind() Kind { return Kind(id[EntityIDLen-1]) }

// Well-known built-in entity ids (spec.md §3 "Built-in entity-ids are fixed
// constants").
var (
	EntityIDParticipant          = EntityID{0x00, 0x00, 0x01, byte(KindParticipant)}
	EntityIDSPDPAnnouncer        = EntityID{0x00, 0x01, 0x00, byte(KindBuiltinWriterWithKey)}
	EntityIDSPDPDetector         = EntityID{0x00, 0x01, 0x00, byte(KindBuiltinReaderWithKey)}
	EntityIDSEDPPubAnnouncer     = EntityID{0x00, 0x03, 0x00, byte(KindBuiltinWriterWithKey)}
	EntityIDSEDPPubDetector      = EntityID{0x00, 0x03, 0x00, byte(KindBuiltinReaderWithKey)}
	EntityIDSEDPSubAnnouncer     = EntityID{0x00, 0x04, 0x00, byte(KindBuiltinWriterWithKey)}
	EntityIDSEDPSubDetector      = EntityID{0x00, 0x04, 0x00, byte(KindBuiltinReaderWithKey)}
	EntityIDSEDPTopicAnnouncer   = EntityID{0x00, 0x05, 0x00, byte(KindBuiltinWriterWithKey)}
	EntityIDSEDPTopicDetector    = EntityID{0x00, 0x05, 0x00, byte(KindBuiltinReaderWithKey)}
)

// Unknown is the all-zero GUID, used as a sentinel.
var Unknown GUID

// New builds a GUID from a prefix and an entity id.
func New(prefix Prefix, entity EntityID) GUID {
	return GUID{Prefix: prefix, Entity: entity}
}

// Bytes returns the 16-byte wire representation.
func (g GUID) Bytes() [Len]byte {
	var b [Len]byte
	copy(b[:PrefixLen], g.Prefix[:])
	copy(b[PrefixLen:], g.Entity[:])
	return b
}

// String renders the GUID as hex, matching how the other RTPS
// implementations this protocol interops with print GUIDs in logs.
func (g GUID) String() string {
	return fmt.Sprintf("%x:%x", g.Prefix[:], g.Entity[:])
}

// IsUnknown reports whether g is the all-zero sentinel.
func (g GUID) IsUnknown() bool { return g == Unknown }

// EntityCounter hands out monotonically increasing user-defined entity ids
// for one participant (spec.md §3: "User-defined entity-ids are drawn from
// a per-participant counter").
type EntityCounter struct {
	next uint32
}

// Next returns the next EntityID of the given kind. Safe for concurrent use.
func (c *EntityCounter) Next(kind Kind) EntityID {
	n := atomic.AddUint32(&c.next, 1)
	var id EntityID
	binary.BigEndian.PutUint32(id[:], n<<8)
	id[EntityIDLen-1] = byte(kind)
	return id
}
