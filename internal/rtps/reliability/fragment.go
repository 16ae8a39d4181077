package reliability

import (
	"github.com/lanterndds/rtpscore/internal/rtps/proxy"
	"github.com/lanterndds/rtpscore/internal/rtps/wire"
)

// OnDataFrag buffers one fragment of sn under the writer proxy's fragment
// buffers, synthesizing the complete payload once every fragment has
// arrived (spec.md §4.3: "buffer under (writer-GUID, sequence); once all
// fragments for a sequence have arrived, synthesize a complete DATA").
func OnDataFrag(p *proxy.WriterProxy, sn wire.SequenceNumber, fragmentStartNum uint32, fragmentsInSubmessage uint16, fragmentSize uint16, sampleSize uint32, payload []byte) (complete []byte, ready bool) {
	buf, ok := p.FragmentBuffers[sn]
	if !ok {
		buf = &proxy.FragmentAssembly{
			SampleSize:   sampleSize,
			FragmentSize: fragmentSize,
			Received:     make(map[uint32][]byte),
		}
		p.FragmentBuffers[sn] = buf
	}
	for i := uint16(0); i < fragmentsInSubmessage; i++ {
		fragNum := fragmentStartNum + uint32(i)
		start := int(i) * int(fragmentSize)
		end := start + int(fragmentSize)
		if end > len(payload) {
			end = len(payload)
		}
		if start >= len(payload) {
			break
		}
		buf.Received[fragNum] = append([]byte(nil), payload[start:end]...)
	}
	total := int(buf.SampleSize)
	if buf.FragmentSize == 0 {
		return nil, false
	}
	numFragments := (total + int(buf.FragmentSize) - 1) / int(buf.FragmentSize)
	if len(buf.Received) < numFragments {
		return nil, false
	}
	out := make([]byte, 0, total)
	for i := uint32(1); i <= uint32(numFragments); i++ {
		frag, ok := buf.Received[i]
		if !ok {
			return nil, false
		}
		out = append(out, frag...)
	}
	delete(p.FragmentBuffers, sn)
	return out, true
}

// OnNackFrag reports which fragment numbers a NACK_FRAG asked for. It
// records no state; retransmission scheduling is left to the caller.
func OnNackFrag(fragmentSet wire.FragmentNumberSet) []uint32 {
	return fragmentSet.Members()
}
