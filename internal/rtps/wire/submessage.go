package wire

import "github.com/lanterndds/rtpscore/internal/rtps/guid"

// Kind is the one-byte submessage kind tag (spec.md §4.1: "the twelve
// submessage kinds").
type Kind byte

// The twelve submessage kinds this core must parse and emit.
const (
	KindPad           Kind = 0x01
	KindAckNack       Kind = 0x06
	KindHeartbeat     Kind = 0x07
	KindGap           Kind = 0x08
	KindInfoTS        Kind = 0x09
	KindInfoSrc       Kind = 0x0c
	KindInfoReply     Kind = 0x0d
	KindInfoDst       Kind = 0x0e
	KindData          Kind = 0x15
	KindDataFrag      Kind = 0x16
	KindNackFrag      Kind = 0x12
	KindHeartbeatFrag Kind = 0x13
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "PAD"
	case KindAckNack:
		return "ACKNACK"
	case KindHeartbeat:
		return "HEARTBEAT"
	case KindGap:
		return "GAP"
	case KindInfoTS:
		return "INFO_TS"
	case KindInfoSrc:
		return "INFO_SRC"
	case KindInfoReply:
		return "INFO_REPLY"
	case KindInfoDst:
		return "INFO_DST"
	case KindData:
		return "DATA"
	case KindDataFrag:
		return "DATA_FRAG"
	case KindNackFrag:
		return "NACK_FRAG"
	case KindHeartbeatFrag:
		return "HEARTBEAT_FRAG"
	default:
		return "UNKNOWN"
	}
}

// Submessage is a single parsed submessage: its kind, the flags byte it was
// parsed with (so re-emission can preserve kind-specific flag bits the
// generic codec doesn't interpret), and its decoded body. Body is nil (and
// Raw holds the untouched payload) for unknown kinds, per spec.md §4.1's
// "skip octets-to-next-header" rule, and for known kinds whose body did
// not decode.
type Submessage struct {
	Kind  Kind
	Flags byte
	Body  Body
	Raw   []byte // populated only when Body is nil (unknown kind or undecodable body)
}

// Body is implemented by each of the twelve decoded submessage payloads.
type Body interface {
	encode(endian bool) []byte
}

// Data carries a sample, optionally with inline QoS (spec.md §4.1).
type Data struct {
	ReaderID        guid.EntityID
	WriterID        guid.EntityID
	WriterSN        SequenceNumber
	InlineQoS       ParameterList
	HasInlineQoS    bool
	SerializedPayload []byte
	// KeyHashOnly is true when DataFlag "key" is set and Payload carries
	// only a serialized key, not a full sample (used for dispose/unregister).
	KeyHashOnly bool
}

// DataFrag carries one fragment of a large sample (spec.md §4.3 "DATA_FRAG").
type DataFrag struct {
	ReaderID          guid.EntityID
	WriterID          guid.EntityID
	WriterSN          SequenceNumber
	FragmentStartNum  uint32 // 1-based index of the first fragment in this submessage
	FragmentsInSubmessage uint16
	FragmentSize      uint16
	SampleSize        uint32
	InlineQoS         ParameterList
	HasInlineQoS      bool
	SerializedPayload []byte
}

// Gap announces sequence numbers the writer will never send (spec.md §4.3).
type Gap struct {
	ReaderID  guid.EntityID
	WriterID  guid.EntityID
	GapStart  SequenceNumber
	GapList   SequenceNumberSet
}

// Heartbeat tells the reader the writer's available sequence-number range
// (spec.md §4.4).
type Heartbeat struct {
	ReaderID    guid.EntityID
	WriterID    guid.EntityID
	FirstSN     SequenceNumber
	LastSN      SequenceNumber
	Count       int32
	FinalFlag   bool
	LivelinessFlag bool
}

// HeartbeatFrag tells the reader how many fragments of the current sample
// the writer has available.
type HeartbeatFrag struct {
	ReaderID     guid.EntityID
	WriterID     guid.EntityID
	WriterSN     SequenceNumber
	LastFragment uint32
	Count        int32
}

// AckNack is the reader's acknowledgment/negative-acknowledgment of a
// writer's changes (spec.md §4.3).
type AckNack struct {
	ReaderID  guid.EntityID
	WriterID  guid.EntityID
	ReaderSNState SequenceNumberSet
	Count     int32
	FinalFlag bool
}

// NackFrag requests retransmission of specific fragments of one sequence
// number (spec.md §4.4).
type NackFrag struct {
	ReaderID     guid.EntityID
	WriterID     guid.EntityID
	WriterSN     SequenceNumber
	FragmentNumberState FragmentNumberSet
	Count        int32
}

// FragmentNumberSet mirrors SequenceNumberSet but for 1-based fragment
// numbers within one sample.
type FragmentNumberSet struct {
	Base    uint32
	NumBits uint32
	Bitmap  [8]uint32
}

// Members returns the fragment numbers represented by the set.
func (s FragmentNumberSet) Members() []uint32 {
	var out []uint32
	for bit := uint32(0); bit < s.NumBits && bit < 256; bit++ {
		if s.Bitmap[bit/32]&(1<<(31-bit%32)) != 0 {
			out = append(out, s.Base+bit)
		}
	}
	return out
}

// NewFragmentNumberSet builds a set from a base and member fragment numbers.
func NewFragmentNumberSet(base uint32, members []uint32) FragmentNumberSet {
	s := FragmentNumberSet{Base: base}
	maxBit := uint32(0)
	for _, m := range members {
		if m < base {
			continue
		}
		bit := m - base
		if bit >= 256 {
			continue
		}
		s.Bitmap[bit/32] |= 1 << (31 - bit%32)
		if bit+1 > maxBit {
			maxBit = bit + 1
		}
	}
	s.NumBits = maxBit
	return s
}

// InfoTS carries the source timestamp for subsequent DATA/DATA_FRAG
// submessages in the same message (spec.md §4.4).
type InfoTS struct {
	Invalid   bool
	Timestamp Timestamp
}

// InfoDst routes subsequent submessages to a specific participant prefix
// (spec.md §4.4: "INFO_DST must precede any submessage directed at a
// specific reader").
type InfoDst struct {
	GuidPrefix guid.Prefix
}

// InfoSrc overrides the apparent source of subsequent submessages.
type InfoSrc struct {
	Prefix  guid.Prefix
	Version ProtocolVersion
	Vendor  VendorID
}

// InfoReply supplies locators subsequent submessages' senders should be
// replied to on.
type InfoReply struct {
	UnicastLocators   []WireLocator
	MulticastLocators []WireLocator
	HasMulticast      bool
}

// WireLocator is the 24-byte on-wire locator representation (kind int32,
// port uint32, 16-byte address); internal/rtps/locator.Locator is the
// richer in-memory type this maps to/from at the transport boundary.
type WireLocator struct {
	Kind    int32
	Port    uint32
	Address [16]byte
}

// Pad is a no-op padding submessage.
type Pad struct{}
