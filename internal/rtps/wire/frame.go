package wire

// Frame is one fully parsed RTPS message: its header plus the ordered
// sequence of submessages that followed it on the wire.
type Frame struct {
	Header      Header
	Submessages []Submessage
}

const submessageHeaderLen = 4

// Parse decodes a raw RTPS frame. A short or bad-magic frame returns
// Malformed; any submessage that does not parse cleanly within its declared
// length is kept as a Raw, body-less Submessage rather than failing the
// whole frame (spec.md §4.1).
func Parse(frame []byte) (*Frame, error) {
	header, err := parseHeader(frame)
	if err != nil {
		return nil, err
	}
	f := &Frame{Header: header}
	pos := HeaderLen
	for pos < len(frame) {
		if len(frame)-pos < submessageHeaderLen {
			break
		}
		kind := Kind(frame[pos])
		flags := frame[pos+1]
		order := byteOrder(flags)
		length := int(order.Uint16(frame[pos+2 : pos+4]))
		bodyStart := pos + submessageHeaderLen
		bodyEnd := bodyStart + length
		if length == 0 && kind != KindPad {
			// octetsToNextHeader == 0 means "body extends to end of message"
			// for the last submessage in a frame.
			bodyEnd = len(frame)
		}
		if bodyEnd > len(frame) {
			bodyEnd = len(frame)
		}
		body := frame[bodyStart:bodyEnd]
		sm := decodeSubmessage(kind, flags, body)
		f.Submessages = append(f.Submessages, sm)
		pos = bodyEnd
	}
	return f, nil
}

func decodeSubmessage(kind Kind, flags byte, body []byte) Submessage {
	little := flags&littleEndianFlag != 0
	r := newReader(body, order(little))
	sm := Submessage{Kind: kind, Flags: flags}
	switch kind {
	case KindPad:
		sm.Body = Pad{}
	case KindData:
		d := decodeData(r, little)
		d.HasInlineQoS = flags&flagInlineQoS != 0
		if d.HasInlineQoS {
			d.InlineQoS = parseParameterList(r)
		}
		d.KeyHashOnly = flags&flagKey != 0 && flags&flagData == 0
		d.SerializedPayload = append([]byte(nil), r.buf[r.pos:]...)
		if r.ok {
			sm.Body = d
		}
	case KindDataFrag:
		d := decodeDataFrag(r)
		d.HasInlineQoS = flags&flagInlineQoS != 0
		if d.HasInlineQoS {
			d.InlineQoS = parseParameterList(r)
		}
		d.SerializedPayload = append([]byte(nil), r.buf[r.pos:]...)
		if r.ok {
			sm.Body = d
		}
	case KindGap:
		g := decodeGap(r)
		if r.ok {
			sm.Body = g
		}
	case KindHeartbeat:
		h := decodeHeartbeat(r)
		h.FinalFlag = flags&flagFinal != 0
		h.LivelinessFlag = flags&flagLiveliness != 0
		if r.ok {
			sm.Body = h
		}
	case KindHeartbeatFrag:
		h := decodeHeartbeatFrag(r)
		if r.ok {
			sm.Body = h
		}
	case KindAckNack:
		a := decodeAckNack(r)
		a.FinalFlag = flags&flagFinal != 0
		if r.ok {
			sm.Body = a
		}
	case KindNackFrag:
		n := decodeNackFrag(r)
		if r.ok {
			sm.Body = n
		}
	case KindInfoTS:
		sm.Body = decodeInfoTS(r, flags&flagInvalidTS != 0)
	case KindInfoDst:
		d := decodeInfoDst(r)
		if r.ok {
			sm.Body = d
		}
	case KindInfoSrc:
		s := decodeInfoSrc(r)
		if r.ok {
			sm.Body = s
		}
	case KindInfoReply:
		ir := decodeInfoReply(r, flags&flagMulticast != 0)
		if r.ok {
			sm.Body = ir
		}
	default:
		sm.Raw = append([]byte(nil), body...)
	}
	if sm.Body == nil && sm.Raw == nil && kind != KindPad {
		sm.Raw = append([]byte(nil), body...)
	}
	return sm
}

// Emit serializes a header and submessage sequence into one frame. The
// caller chooses each submessage's endianness via its Flags bit 0; Emit
// does not normalize it to a single frame-wide endianness, matching real
// RTPS traffic where vendors mix endianness per submessage.
func Emit(header Header, submessages []Submessage) []byte {
	out := make([]byte, 0, HeaderLen+64*len(submessages))
	out = emitHeader(header, out)
	for _, sm := range submessages {
		little := sm.Flags&littleEndianFlag != 0
		var body []byte
		if sm.Body != nil {
			body = sm.Body.encode(little)
		} else {
			body = sm.Raw
		}
		out = append(out, byte(sm.Kind), sm.Flags)
		lenBuf := make([]byte, 2)
		order(little).PutUint16(lenBuf, uint16(len(body)))
		out = append(out, lenBuf...)
		out = append(out, body...)
	}
	return out
}
