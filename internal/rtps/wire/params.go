package wire

import "encoding/binary"

// ParameterID identifies one entry of an inline-QoS parameter list.
type ParameterID uint16

// The two parameter ids this core interprets (spec.md §4.1); every other
// id is preserved opaquely so a round trip doesn't lose data.
const (
	PIDPad         ParameterID = 0x0000
	PIDSentinel    ParameterID = 0x0001
	PIDKeyHash     ParameterID = 0x0070
	PIDStatusInfo  ParameterID = 0x0071
)

// StatusInfo flags, the 4-byte PID_STATUS_INFO payload (spec.md §4.1).
const (
	StatusInfoDisposed    uint32 = 0x1
	StatusInfoUnregistered uint32 = 0x2
)

// Parameter is one (id, bytes) entry of a parameter list.
type Parameter struct {
	ID    ParameterID
	Value []byte
}

// ParameterList is an inline-QoS parameter sequence, terminated on the wire
// by a PID_SENTINEL entry that is not itself retained in the slice.
type ParameterList []Parameter

// KeyHash returns the PID_KEY_HASH value, if present.
func (pl ParameterList) KeyHash() ([16]byte, bool) {
	for _, p := range pl {
		if p.ID == PIDKeyHash && len(p.Value) >= 16 {
			var h [16]byte
			copy(h[:], p.Value)
			return h, true
		}
	}
	return [16]byte{}, false
}

// StatusInfo returns the PID_STATUS_INFO flags, if present.
func (pl ParameterList) StatusInfo() (uint32, bool) {
	for _, p := range pl {
		if p.ID == PIDStatusInfo && len(p.Value) >= 4 {
			return binary.BigEndian.Uint32(p.Value), true
		}
	}
	return 0, false
}

// parseParameterList reads parameters until PID_SENTINEL or the reader is
// exhausted. Each parameter is padded to a 4-byte boundary, as on the wire.
func parseParameterList(r *reader) ParameterList {
	var list ParameterList
	for r.ok {
		id := ParameterID(r.u16())
		length := int(r.u16())
		if id == PIDSentinel {
			return list
		}
		val := r.bytes(length)
		if !r.ok {
			return list
		}
		cp := make([]byte, len(val))
		copy(cp, val)
		list = append(list, Parameter{ID: id, Value: cp})
	}
	return list
}

func emitParameterList(w *writer, list ParameterList) {
	for _, p := range list {
		w.u16(uint16(p.ID))
		padded := (len(p.Value) + 3) &^ 3
		w.u16(uint16(padded))
		w.bytes(p.Value)
		for i := len(p.Value); i < padded; i++ {
			w.buf = append(w.buf, 0)
		}
	}
	w.u16(uint16(PIDSentinel))
	w.u16(0)
}
