package endpoint

import (
	"sort"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/history"
	"github.com/lanterndds/rtpscore/internal/rtps/rtpserrs"
)

// SampleStateMask, ViewStateMask, and InstanceStateMask are bitmasks over
// the corresponding state enums; a zero mask combined with AnySampleState
// etc. matches everything.
type SampleStateMask uint8

const (
	ReadMask    SampleStateMask = 1 << iota // maps history.Change.Read == true
	NotReadMask                             // maps history.Change.Read == false
	AnySampleState = ReadMask | NotReadMask
)

type ViewStateMask uint8

const (
	NewMask ViewStateMask = 1 << iota
	NotNewMask
	AnyViewState = NewMask | NotNewMask
)

type InstanceStateMask uint8

const (
	AliveMask InstanceStateMask = 1 << iota
	NotAliveDisposedMask
	NotAliveNoWritersMask
	AnyInstanceState = AliveMask | NotAliveDisposedMask | NotAliveNoWritersMask
)

// SampleInfo accompanies each returned sample (spec.md §4.6 step 4).
type SampleInfo struct {
	SampleRank             int
	AbsoluteGenerationRank int
	GenerationRank         int
	InstanceHandle         history.InstanceHandle
	InstanceState          InstanceState
	SourceTimestamp        time.Time
	Valid                  bool
}

// Result pairs a change's payload (nil if the change itself carries no
// data, e.g. a pure dispose) with its SampleInfo.
type Result struct {
	Payload []byte
	Info    SampleInfo
}

// ReadOrTake implements spec.md §4.6's read_or_take: time-based filtering,
// mask/instance filtering, rank computation, and (for take) removal.
func (r *Reader) ReadOrTake(take bool, maxSamples int, sampleMask SampleStateMask, viewMask ViewStateMask, instanceMask InstanceStateMask, only *history.InstanceHandle) ([]Result, error) {
	if !r.Enabled {
		return nil, rtpserrs.NotEnabled{Entity: "reader"}
	}
	if only != nil {
		if _, ok := r.instances[*only]; !ok {
			return nil, rtpserrs.BadParameter{Detail: "unknown instance"}
		}
	}

	candidates := r.Cache.IterOrdered()
	var filtered []history.Change
	lastTimestampSeen := make(map[history.InstanceHandle]time.Time)
	for _, ch := range candidates {
		if only != nil && ch.Instance != *only {
			continue
		}
		inst, ok := r.instances[ch.Instance]
		if !ok {
			continue
		}
		if !matchesSampleState(ch, sampleMask) || !matchesViewState(inst, viewMask) || !matchesInstanceState(inst, instanceMask) {
			continue
		}
		if r.MinimumSeparation > 0 {
			if prev, seen := lastTimestampSeen[ch.Instance]; seen {
				if ch.SourceTime.Sub(prev) < r.MinimumSeparation {
					continue
				}
			} else if inst.hasLastReturned && ch.SourceTime.Sub(inst.lastReturnedTimestamp) < r.MinimumSeparation {
				continue
			}
		}
		lastTimestampSeen[ch.Instance] = ch.SourceTime
		filtered = append(filtered, ch)
	}

	if maxSamples > 0 && len(filtered) > maxSamples {
		filtered = filtered[:maxSamples]
	}
	if len(filtered) == 0 {
		return nil, rtpserrs.NoData{}
	}

	sampleRank := computeSampleRank(filtered)
	results := make([]Result, 0, len(filtered))
	newestAbsGenByInstance := newestAbsoluteGenerationRank(filtered, r.instances)
	for i, ch := range filtered {
		inst := r.instances[ch.Instance]
		absGen := int(inst.DisposedGenerationCount+inst.NoWritersGenerationCount) - int(ch.DisposedGenerationCount+ch.NoWritersGenerationCount)
		genRank := absGen - newestAbsGenByInstance[ch.Instance]
		results = append(results, Result{
			Payload: ch.Payload,
			Info: SampleInfo{
				SampleRank:             sampleRank[i],
				AbsoluteGenerationRank: absGen,
				GenerationRank:         genRank,
				InstanceHandle:         ch.Instance,
				InstanceState:          inst.InstanceState,
				SourceTimestamp:        ch.SourceTime,
				Valid:                  ch.Kind == history.Alive,
			},
		})
		if r.MinimumSeparation > 0 {
			inst.lastReturnedTimestamp = ch.SourceTime
			inst.hasLastReturned = true
		}
		inst.ViewState = NotNew
	}

	sequenceNumbers := make(map[int64]bool, len(filtered))
	for _, ch := range filtered {
		sequenceNumbers[ch.SequenceNumber] = true
	}
	if take {
		r.Cache.RemoveWhere(func(ch history.Change) bool { return sequenceNumbers[ch.SequenceNumber] })
	} else {
		r.Cache.MarkRead(sequenceNumbers)
	}
	return results, nil
}

func matchesSampleState(ch history.Change, mask SampleStateMask) bool {
	if ch.Read {
		return mask&ReadMask != 0
	}
	return mask&NotReadMask != 0
}

func matchesViewState(inst *Instance, mask ViewStateMask) bool {
	if inst.ViewState == New {
		return mask&NewMask != 0
	}
	return mask&NotNewMask != 0
}

func matchesInstanceState(inst *Instance, mask InstanceStateMask) bool {
	switch inst.InstanceState {
	case Alive:
		return mask&AliveMask != 0
	case NotAliveDisposed:
		return mask&NotAliveDisposedMask != 0
	default:
		return mask&NotAliveNoWritersMask != 0
	}
}

// computeSampleRank returns, for each index, the count of later samples in
// filtered belonging to the same instance (spec.md §4.6 step 4).
func computeSampleRank(filtered []history.Change) []int {
	ranks := make([]int, len(filtered))
	for i := range filtered {
		count := 0
		for j := i + 1; j < len(filtered); j++ {
			if filtered[j].Instance == filtered[i].Instance {
				count++
			}
		}
		ranks[i] = count
	}
	return ranks
}

// newestAbsoluteGenerationRank computes, per instance, the
// absolute_generation_rank of that instance's newest sample in the
// returned collection — "newest" meaning last in destination-order
// position, not highest sequence number, per spec.md §4.6 step 4 ("the
// most recently read/taken sample of that instance in the returned
// collection"). filtered is already in IterOrdered's order, so a later
// position is a more recently returned sample even when, under
// BY_SOURCE_TIMESTAMP, it carries a lower sequence number than an
// earlier-positioned one.
func newestAbsoluteGenerationRank(filtered []history.Change, instances map[history.InstanceHandle]*Instance) map[history.InstanceHandle]int {
	out := make(map[history.InstanceHandle]int)
	for _, ch := range filtered {
		inst := instances[ch.Instance]
		out[ch.Instance] = int(inst.DisposedGenerationCount+inst.NoWritersGenerationCount) - int(ch.DisposedGenerationCount+ch.NoWritersGenerationCount)
	}
	return out
}

// ReadOrTakeNextInstance implements spec.md §4.6's
// read/take_next_instance: picks the smallest instance handle strictly
// greater than previous (or the minimum if nil) with a matching sample,
// then delegates to ReadOrTake.
func (r *Reader) ReadOrTakeNextInstance(take bool, previous *history.InstanceHandle, maxSamples int, sampleMask SampleStateMask, viewMask ViewStateMask, instanceMask InstanceStateMask) ([]Result, error) {
	handles := make([]history.InstanceHandle, 0, len(r.instances))
	for h := range r.instances {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool {
		return lessHandle(handles[i], handles[j])
	})
	for _, h := range handles {
		if previous != nil && !lessHandle(*previous, h) {
			continue
		}
		results, err := r.ReadOrTake(take, maxSamples, sampleMask, viewMask, instanceMask, &h)
		if err == nil {
			return results, nil
		}
		if _, isNoData := err.(rtpserrs.NoData); !isNoData {
			return nil, err
		}
	}
	return nil, rtpserrs.NoData{}
}

func lessHandle(a, b history.InstanceHandle) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
