// Package endpoint implements per-instance lifecycle tracking and the
// read/take query surface over a reader's history.Cache, per spec.md
// §4.6.
package endpoint

import (
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/history"
)

// ViewState is new until a read/take marks it not-new.
type ViewState int

const (
	New ViewState = iota
	NotNew
)

// InstanceState tracks alive/disposed/no-writers per spec.md §3.
type InstanceState int

const (
	Alive InstanceState = iota
	NotAliveDisposed
	NotAliveNoWriters
)

// Instance is the per-key lifecycle record a reader maintains alongside
// its history.Cache.
type Instance struct {
	Handle                   history.InstanceHandle
	ViewState                ViewState
	InstanceState            InstanceState
	DisposedGenerationCount  uint32
	NoWritersGenerationCount uint32
	lastReturnedTimestamp    time.Time
	hasLastReturned          bool
}

// Reader couples a history.Cache with its per-instance lifecycle state and
// the time-based filter's minimum_separation policy.
type Reader struct {
	Cache             *history.Cache
	MinimumSeparation time.Duration
	Enabled           bool

	instances map[history.InstanceHandle]*Instance
}

// NewReader constructs a Reader over an already-constructed cache.
func NewReader(cache *history.Cache, minimumSeparation time.Duration) *Reader {
	return &Reader{
		Cache:             cache,
		MinimumSeparation: minimumSeparation,
		Enabled:           true,
		instances:         make(map[history.InstanceHandle]*Instance),
	}
}

// Accept records an incoming change's effect on instance state: disposed/
// unregistered transitions, generation-count stamping, and new-instance
// creation (spec.md §4.2: "reader-side: on accept, updates the per-instance
// state machine, sets disposed_generation_count and
// no_writers_generation_count from the instance record").
func (r *Reader) Accept(ch *history.Change) {
	inst, ok := r.instances[ch.Instance]
	if !ok {
		inst = &Instance{Handle: ch.Instance, ViewState: New, InstanceState: Alive}
		r.instances[ch.Instance] = inst
	}
	switch ch.Kind {
	case history.NotAliveDisposed:
		if inst.InstanceState == Alive {
			inst.DisposedGenerationCount++
		}
		inst.InstanceState = NotAliveDisposed
	case history.NotAliveUnregistered:
		if inst.InstanceState == Alive {
			inst.NoWritersGenerationCount++
		}
		inst.InstanceState = NotAliveNoWriters
	default:
		inst.InstanceState = Alive
	}
	ch.DisposedGenerationCount = inst.DisposedGenerationCount
	ch.NoWritersGenerationCount = inst.NoWritersGenerationCount
}

// Instance returns the lifecycle record for handle, if known.
func (r *Reader) Instance(handle history.InstanceHandle) (*Instance, bool) {
	inst, ok := r.instances[handle]
	return inst, ok
}
