package wire

import (
	"encoding/binary"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
)

// writer accumulates a submessage body in a chosen byte order.
type writer struct {
	order binary.ByteOrder
	buf   []byte
}

func newWriter(order binary.ByteOrder) *writer { return &writer{order: order} }

func (w *writer) u16(v uint16) { w.buf = appendU16(w.buf, w.order, v) }
func (w *writer) u32(v uint32) { w.buf = appendU32(w.buf, w.order, v) }
func (w *writer) i32(v int32)  { w.u32(uint32(v)) }
func (w *writer) bytes(b []byte) { w.buf = append(w.buf, b...) }
func (w *writer) entityID(id guid.EntityID) { w.buf = append(w.buf, id[:]...) }
func (w *writer) prefix(p guid.Prefix)      { w.buf = append(w.buf, p[:]...) }

func (w *writer) sequenceNumber(sn SequenceNumber) {
	hi := int32(int64(sn) >> 32)
	lo := uint32(int64(sn) & 0xFFFFFFFF)
	w.i32(hi)
	w.u32(lo)
}

func (w *writer) sequenceNumberSet(s SequenceNumberSet) {
	w.sequenceNumber(s.Base)
	w.u32(s.NumBits)
	numWords := (s.NumBits + 31) / 32
	if numWords == 0 && s.NumBits == 0 {
		numWords = 0
	}
	for i := uint32(0); i < numWords; i++ {
		w.u32(s.Bitmap[i])
	}
}

func (w *writer) fragmentNumberSet(s FragmentNumberSet) {
	w.u32(s.Base)
	w.u32(s.NumBits)
	numWords := (s.NumBits + 31) / 32
	for i := uint32(0); i < numWords; i++ {
		w.u32(s.Bitmap[i])
	}
}

func (w *writer) timestamp(t Timestamp) {
	w.u32(t.Seconds)
	w.u32(t.Fraction)
}

func appendU16(b []byte, order binary.ByteOrder, v uint16) []byte {
	tmp := make([]byte, 2)
	order.PutUint16(tmp, v)
	return append(b, tmp...)
}

func appendU32(b []byte, order binary.ByteOrder, v uint32) []byte {
	tmp := make([]byte, 4)
	order.PutUint32(tmp, v)
	return append(b, tmp...)
}

// reader consumes a submessage body in a chosen byte order. Every method
// is bounds-checked and sets ok=false (sticky) on underrun, so callers can
// perform a single deferred ok check at the end of parsing one submessage,
// matching spec.md §4.1's "drop malformed submessages, don't fail the
// frame" policy.
type reader struct {
	order binary.ByteOrder
	buf   []byte
	pos   int
	ok    bool
}

func newReader(buf []byte, order binary.ByteOrder) *reader {
	return &reader{order: order, buf: buf, ok: true}
}

func (r *reader) remaining() int { return len(r.buf) - r.pos }

func (r *reader) need(n int) bool {
	if !r.ok || r.remaining() < n {
		r.ok = false
		return false
	}
	return true
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := r.order.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := r.order.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) entityID() guid.EntityID {
	var id guid.EntityID
	copy(id[:], r.bytes(4))
	return id
}

func (r *reader) prefix() guid.Prefix {
	var p guid.Prefix
	copy(p[:], r.bytes(12))
	return p
}

func (r *reader) sequenceNumber() SequenceNumber {
	hi := r.i32()
	lo := r.u32()
	return SequenceNumber(int64(hi)<<32 | int64(lo))
}

func (r *reader) sequenceNumberSet() SequenceNumberSet {
	var s SequenceNumberSet
	s.Base = r.sequenceNumber()
	s.NumBits = r.u32()
	if s.NumBits > MaxSequenceNumberSetBits {
		r.ok = false
		return s
	}
	numWords := (s.NumBits + 31) / 32
	for i := uint32(0); i < numWords && i < 8; i++ {
		s.Bitmap[i] = r.u32()
	}
	return s
}

func (r *reader) fragmentNumberSet() FragmentNumberSet {
	var s FragmentNumberSet
	s.Base = r.u32()
	s.NumBits = r.u32()
	if s.NumBits > 256 {
		r.ok = false
		return s
	}
	numWords := (s.NumBits + 31) / 32
	for i := uint32(0); i < numWords && i < 8; i++ {
		s.Bitmap[i] = r.u32()
	}
	return s
}

func (r *reader) timestamp() Timestamp {
	sec := r.u32()
	frac := r.u32()
	return Timestamp{Seconds: sec, Fraction: frac}
}
