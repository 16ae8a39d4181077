package wire

import "encoding/binary"

// Flag bits, beyond the universal bit 0 (endianness), that this codec
// interprets per submessage kind.
const (
	flagInlineQoS = 0x02 // DATA, DATA_FRAG: Q
	flagData      = 0x04 // DATA: D
	flagKey       = 0x08 // DATA: K
	flagFinal     = 0x02 // HEARTBEAT: F, ACKNACK: F
	flagLiveliness = 0x04 // HEARTBEAT: L
	flagInvalidTS = 0x02 // INFO_TS: invalidate
	flagMulticast = 0x02 // INFO_REPLY: multicast locators present
)

func order(little bool) binary.ByteOrder {
	if little {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// --- Data ---

func (d Data) encode(little bool) []byte {
	w := newWriter(order(little))
	w.u16(0) // extraFlags
	octetsPos := len(w.buf)
	w.u16(0) // octetsToInlineQos placeholder
	w.entityID(d.ReaderID)
	w.entityID(d.WriterID)
	w.sequenceNumber(d.WriterSN)
	order(little).PutUint16(w.buf[octetsPos:], uint16(len(w.buf)-(octetsPos+2)))
	if d.HasInlineQoS {
		emitParameterList(w, d.InlineQoS)
	}
	w.bytes(d.SerializedPayload)
	return w.buf
}

func decodeData(r *reader, little bool) Data {
	var d Data
	r.u16() // extraFlags
	octetsToInlineQos := r.u16()
	afterOctets := r.pos
	d.ReaderID = r.entityID()
	d.WriterID = r.entityID()
	d.WriterSN = r.sequenceNumber()
	// Skip any vendor-specific bytes between here and the declared inline
	// QoS/payload offset.
	want := afterOctets + int(octetsToInlineQos)
	if want > r.pos && want <= len(r.buf) {
		r.pos = want
	}
	return d
}

// --- DataFrag ---

func (d DataFrag) encode(little bool) []byte {
	w := newWriter(order(little))
	w.u16(0)
	octetsPos := len(w.buf)
	w.u16(0)
	w.entityID(d.ReaderID)
	w.entityID(d.WriterID)
	w.sequenceNumber(d.WriterSN)
	w.u32(d.FragmentStartNum)
	w.u16(d.FragmentsInSubmessage)
	w.u16(d.FragmentSize)
	w.u32(d.SampleSize)
	order(little).PutUint16(w.buf[octetsPos:], uint16(len(w.buf)-(octetsPos+2)))
	if d.HasInlineQoS {
		emitParameterList(w, d.InlineQoS)
	}
	w.bytes(d.SerializedPayload)
	return w.buf
}

func decodeDataFrag(r *reader) DataFrag {
	var d DataFrag
	r.u16()
	octetsToInlineQos := r.u16()
	afterOctets := r.pos
	d.ReaderID = r.entityID()
	d.WriterID = r.entityID()
	d.WriterSN = r.sequenceNumber()
	d.FragmentStartNum = r.u32()
	d.FragmentsInSubmessage = r.u16()
	d.FragmentSize = r.u16()
	d.SampleSize = r.u32()
	want := afterOctets + int(octetsToInlineQos)
	if want > r.pos && want <= len(r.buf) {
		r.pos = want
	}
	return d
}

// --- Gap ---

func (g Gap) encode(little bool) []byte {
	w := newWriter(order(little))
	w.entityID(g.ReaderID)
	w.entityID(g.WriterID)
	w.sequenceNumber(g.GapStart)
	w.sequenceNumberSet(g.GapList)
	return w.buf
}

func decodeGap(r *reader) Gap {
	var g Gap
	g.ReaderID = r.entityID()
	g.WriterID = r.entityID()
	g.GapStart = r.sequenceNumber()
	g.GapList = r.sequenceNumberSet()
	return g
}

// --- Heartbeat ---

func (h Heartbeat) encode(little bool) []byte {
	w := newWriter(order(little))
	w.entityID(h.ReaderID)
	w.entityID(h.WriterID)
	w.sequenceNumber(h.FirstSN)
	w.sequenceNumber(h.LastSN)
	w.i32(h.Count)
	return w.buf
}

func decodeHeartbeat(r *reader) Heartbeat {
	var h Heartbeat
	h.ReaderID = r.entityID()
	h.WriterID = r.entityID()
	h.FirstSN = r.sequenceNumber()
	h.LastSN = r.sequenceNumber()
	h.Count = r.i32()
	return h
}

// --- HeartbeatFrag ---

func (h HeartbeatFrag) encode(little bool) []byte {
	w := newWriter(order(little))
	w.entityID(h.ReaderID)
	w.entityID(h.WriterID)
	w.sequenceNumber(h.WriterSN)
	w.u32(h.LastFragment)
	w.i32(h.Count)
	return w.buf
}

func decodeHeartbeatFrag(r *reader) HeartbeatFrag {
	var h HeartbeatFrag
	h.ReaderID = r.entityID()
	h.WriterID = r.entityID()
	h.WriterSN = r.sequenceNumber()
	h.LastFragment = r.u32()
	h.Count = r.i32()
	return h
}

// --- AckNack ---

func (a AckNack) encode(little bool) []byte {
	w := newWriter(order(little))
	w.entityID(a.ReaderID)
	w.entityID(a.WriterID)
	w.sequenceNumberSet(a.ReaderSNState)
	w.i32(a.Count)
	return w.buf
}

func decodeAckNack(r *reader) AckNack {
	var a AckNack
	a.ReaderID = r.entityID()
	a.WriterID = r.entityID()
	a.ReaderSNState = r.sequenceNumberSet()
	a.Count = r.i32()
	return a
}

// --- NackFrag ---

func (n NackFrag) encode(little bool) []byte {
	w := newWriter(order(little))
	w.entityID(n.ReaderID)
	w.entityID(n.WriterID)
	w.sequenceNumber(n.WriterSN)
	w.fragmentNumberSet(n.FragmentNumberState)
	w.i32(n.Count)
	return w.buf
}

func decodeNackFrag(r *reader) NackFrag {
	var n NackFrag
	n.ReaderID = r.entityID()
	n.WriterID = r.entityID()
	n.WriterSN = r.sequenceNumber()
	n.FragmentNumberState = r.fragmentNumberSet()
	n.Count = r.i32()
	return n
}

// --- InfoTS ---

func (t InfoTS) encode(little bool) []byte {
	w := newWriter(order(little))
	if !t.Invalid {
		w.timestamp(t.Timestamp)
	}
	return w.buf
}

func decodeInfoTS(r *reader, invalid bool) InfoTS {
	if invalid {
		return InfoTS{Invalid: true}
	}
	return InfoTS{Timestamp: r.timestamp()}
}

// --- InfoDst ---

func (d InfoDst) encode(little bool) []byte {
	w := newWriter(order(little))
	w.prefix(d.GuidPrefix)
	return w.buf
}

func decodeInfoDst(r *reader) InfoDst {
	return InfoDst{GuidPrefix: r.prefix()}
}

// --- InfoSrc ---

func (s InfoSrc) encode(little bool) []byte {
	w := newWriter(order(little))
	w.u32(0) // unused
	w.buf[len(w.buf)-4] = s.Version.Major
	w.buf[len(w.buf)-3] = s.Version.Minor
	w.buf[len(w.buf)-2] = s.Vendor[0]
	w.buf[len(w.buf)-1] = s.Vendor[1]
	w.prefix(s.Prefix)
	return w.buf
}

func decodeInfoSrc(r *reader) InfoSrc {
	var s InfoSrc
	b := r.bytes(4)
	if len(b) == 4 {
		s.Version = ProtocolVersion{Major: b[0], Minor: b[1]}
		s.Vendor = VendorID{b[2], b[3]}
	}
	s.Prefix = r.prefix()
	return s
}

// --- InfoReply ---

func (ir InfoReply) encode(little bool) []byte {
	w := newWriter(order(little))
	w.u32(uint32(len(ir.UnicastLocators)))
	for _, l := range ir.UnicastLocators {
		encodeWireLocator(w, l)
	}
	if ir.HasMulticast {
		w.u32(uint32(len(ir.MulticastLocators)))
		for _, l := range ir.MulticastLocators {
			encodeWireLocator(w, l)
		}
	}
	return w.buf
}

func decodeInfoReply(r *reader, hasMulticast bool) InfoReply {
	var ir InfoReply
	n := r.u32()
	for i := uint32(0); i < n && r.ok; i++ {
		ir.UnicastLocators = append(ir.UnicastLocators, decodeWireLocator(r))
	}
	if hasMulticast {
		ir.HasMulticast = true
		m := r.u32()
		for i := uint32(0); i < m && r.ok; i++ {
			ir.MulticastLocators = append(ir.MulticastLocators, decodeWireLocator(r))
		}
	}
	return ir
}

func encodeWireLocator(w *writer, l WireLocator) {
	w.i32(l.Kind)
	w.u32(l.Port)
	w.bytes(l.Address[:])
}

func decodeWireLocator(r *reader) WireLocator {
	var l WireLocator
	l.Kind = r.i32()
	l.Port = r.u32()
	copy(l.Address[:], r.bytes(16))
	return l
}

// --- Pad ---

func (Pad) encode(bool) []byte { return nil }
