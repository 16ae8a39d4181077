// Package locator implements the RTPS Locator type (spec.md §3) and the
// domain-id-derived well-known port formula (spec.md §4.5, §6).
package locator

import (
	"net"
)

// Kind selects the address family of a Locator.
type Kind int32

const (
	KindUDPv4 Kind = 1
	KindUDPv6 Kind = 2
	// KindReserved covers every other wire value; the codec must preserve it
	// verbatim rather than reject it (spec.md §3: "reserved").
	KindReserved Kind = 0
)

// Locator is an addressable transport endpoint: kind, port, 16-byte address.
// IPv4 addresses are stored in the last 4 bytes of Address per the RTPS wire
// format, mirroring the teacher's IPv4-in-16-byte encoding in pkg/addr.
type Locator struct {
	Kind    Kind
	Port    uint32
	Address [16]byte
}

// List is an ordered sequence of locators. Per spec.md §3, duplicates are
// permitted and semantically equivalent to a single occurrence.
type List []Locator

// FromUDPAddr builds a Locator from a net.UDPAddr, selecting UDPv4 or UDPv6
// based on the address family actually present.
func FromUDPAddr(addr *net.UDPAddr) Locator {
	ip4 := addr.IP.To4()
	var loc Locator
	loc.Port = uint32(addr.Port)
	if ip4 != nil {
		loc.Kind = KindUDPv4
		copy(loc.Address[12:], ip4)
	} else {
		loc.Kind = KindUDPv6
		ip16 := addr.IP.To16()
		copy(loc.Address[:], ip16)
	}
	return loc
}

// UDPAddr converts the Locator back into a net.UDPAddr for the Transport.
func (l Locator) UDPAddr() *net.UDPAddr {
	switch l.Kind {
	case KindUDPv4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, l.Address[12:])
		return &net.UDPAddr{IP: ip, Port: int(l.Port)}
	default:
		ip := make(net.IP, net.IPv6len)
		copy(ip, l.Address[:])
		return &net.UDPAddr{IP: ip, Port: int(l.Port)}
	}
}

// String renders the locator as host:port for logging.
func (l Locator) String() string {
	return l.UDPAddr().String()
}

// Equal compares two locators field-for-field.
func (l Locator) Equal(o Locator) bool {
	return l.Kind == o.Kind && l.Port == o.Port && l.Address == o.Address
}

// Contains reports whether list already holds an equivalent locator,
// implementing the "duplicates are semantically equivalent" invariant of
// spec.md §3.
func (list List) Contains(l Locator) bool {
	for _, existing := range list {
		if existing.Equal(l) {
			return true
		}
	}
	return false
}

// Add appends l to the list unless an equivalent locator is already present.
func (list List) Add(l Locator) List {
	if list.Contains(l) {
		return list
	}
	return append(list, l)
}

// WellKnownPorts are the vendor-chosen constants from spec.md §4.5/§6.
const (
	PB = 7400 // port base
	DG = 250  // domain id gain
	PG = 2    // participant id gain
	D0 = 0    // metatraffic multicast offset
	D1 = 10   // metatraffic unicast offset
	D2 = 1    // default multicast offset
	D3 = 11   // default unicast offset
)

// MetatrafficMulticastPort returns PB + DG*domainID + D0.
func MetatrafficMulticastPort(domainID uint32) uint32 {
	return PB + DG*domainID + D0
}

// MetatrafficUnicastPort returns PB + DG*domainID + D1 + PG*participantIndex.
func MetatrafficUnicastPort(domainID, participantIndex uint32) uint32 {
	return PB + DG*domainID + D1 + PG*participantIndex
}

// DefaultMulticastPort returns PB + DG*domainID + D2.
func DefaultMulticastPort(domainID uint32) uint32 {
	return PB + DG*domainID + D2
}

// DefaultUnicastPort returns PB + DG*domainID + D3 + PG*participantIndex.
func DefaultUnicastPort(domainID, participantIndex uint32) uint32 {
	return PB + DG*domainID + D3 + PG*participantIndex
}

// encodeIPv4ToBytes mirrors pkg/addr's big-endian IPv4 encode/decode idiom,
// adapted to the RTPS 16-byte locator address field instead of a protobuf
// IPAddress message.
func encodeIPv4ToBytes(ip net.IP) [16]byte {
	var b [16]byte
	v4 := ip.To4()
	if v4 == nil {
		return b
	}
	copy(b[12:], v4)
	return b
}

// SPDPMulticastGroup is the well-known IPv4 multicast group SPDP
// announcements are sent to, expressed via the same helper used for
// locator address fields.
func SPDPMulticastGroup() [16]byte {
	return encodeIPv4ToBytes(net.IPv4(239, 255, 0, 1))
}
