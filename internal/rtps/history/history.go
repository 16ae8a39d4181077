// Package history implements the bounded sample cache described in
// spec.md §4.2: a writer-side cache ordered by sequence number and a
// reader-side cache ordered by destination-order QoS, both subject to
// history-depth and resource-limit eviction.
package history

import (
	"sort"
	"time"

	"github.com/lanterndds/rtpscore/internal/rtps/guid"
)

// ChangeKind is the lifecycle kind of a cache change.
type ChangeKind int

const (
	Alive ChangeKind = iota
	NotAliveDisposed
	NotAliveUnregistered
)

// AddResult is the outcome of adding a change to a cache.
type AddResult int

const (
	Accepted AddResult = iota
	RejectedBySamplesLimit
	RejectedByInstancesLimit
	RejectedBySamplesPerInstanceLimit
)

// InstanceHandle is an opaque key derived from a sample's key fields.
type InstanceHandle [16]byte

// Change is one cache entry; not every field is populated on both sides
// (SourceWriter/ReceptionTime/SampleState/generation counts are reader-only).
type Change struct {
	SequenceNumber int64
	Kind           ChangeKind
	Instance       InstanceHandle
	SourceTime     time.Time
	Payload        []byte
	InlineQoS      []byte
	KeyHash        [16]byte
	HasKeyHash     bool

	SourceWriter              guid.GUID
	ReceptionTime             time.Time
	Read                      bool
	DisposedGenerationCount   uint32
	NoWritersGenerationCount  uint32
}

// ResourceLimits bounds a cache the way spec.md §4.2 describes: a total
// sample cap, a distinct-instance cap, and a per-instance sample cap. Zero
// means unbounded.
type ResourceLimits struct {
	MaxSamples            int
	MaxInstances          int
	MaxSamplesPerInstance int
}

// HistoryKind selects KEEP_LAST(depth) or KEEP_ALL eviction.
type HistoryKind int

const (
	KeepLast HistoryKind = iota
	KeepAll
)

// DestinationOrder selects the ordering iter_ordered produces.
type DestinationOrder int

const (
	ByReceptionTimestamp DestinationOrder = iota
	BySourceTimestamp
)

// Cache is the bounded sample store shared by writer and reader sides; the
// writer side ignores the reader-only fields and DestinationOrder.
type Cache struct {
	History     HistoryKind
	Depth       int
	Limits      ResourceLimits
	Lifespan    time.Duration
	Order       DestinationOrder

	changes        []Change
	perInstance    map[InstanceHandle][]int // indices into changes, insertion order
}

// New constructs an empty cache with the given policy.
func New(history HistoryKind, depth int, limits ResourceLimits, lifespan time.Duration, order DestinationOrder) *Cache {
	return &Cache{
		History:     history,
		Depth:       depth,
		Limits:      limits,
		Lifespan:    lifespan,
		Order:       order,
		perInstance: make(map[InstanceHandle][]int),
	}
}

// Add inserts a change, applying resource limits and KEEP_LAST eviction.
// KEEP_LAST(depth) drops the oldest alive change of the same instance once
// depth would be exceeded, rather than rejecting the new one.
func (c *Cache) Add(ch Change) AddResult {
	if c.Limits.MaxInstances > 0 {
		if _, exists := c.perInstance[ch.Instance]; !exists && len(c.perInstance) >= c.Limits.MaxInstances {
			return RejectedByInstancesLimit
		}
	}
	instIdx := c.perInstance[ch.Instance]
	if c.History == KeepLast && c.Depth > 0 && len(instIdx) >= c.Depth {
		oldest := instIdx[0]
		for _, i := range instIdx {
			if c.changes[i].Kind == Alive {
				oldest = i
				break
			}
		}
		c.removeAt(oldest)
		instIdx = c.perInstance[ch.Instance]
	} else if c.Limits.MaxSamplesPerInstance > 0 && len(instIdx) >= c.Limits.MaxSamplesPerInstance {
		return RejectedBySamplesPerInstanceLimit
	}
	if c.Limits.MaxSamples > 0 && len(c.changes) >= c.Limits.MaxSamples {
		return RejectedBySamplesLimit
	}
	idx := len(c.changes)
	c.changes = append(c.changes, ch)
	c.perInstance[ch.Instance] = append(c.perInstance[ch.Instance], idx)
	return Accepted
}

// removeAt deletes the change at changes[idx] and fixes up every stored
// index; cache sizes are small enough (history depth, resource limits) for
// this to be a non-issue in practice.
func (c *Cache) removeAt(idx int) {
	c.changes = append(c.changes[:idx], c.changes[idx+1:]...)
	for inst, idxs := range c.perInstance {
		out := idxs[:0]
		for _, i := range idxs {
			switch {
			case i == idx:
				continue
			case i > idx:
				out = append(out, i-1)
			default:
				out = append(out, i)
			}
		}
		if len(out) == 0 {
			delete(c.perInstance, inst)
		} else {
			c.perInstance[inst] = out
		}
	}
}

// RemoveWhere drops every change for which predicate returns true.
func (c *Cache) RemoveWhere(predicate func(Change) bool) {
	var keep []Change
	for _, ch := range c.changes {
		if !predicate(ch) {
			keep = append(keep, ch)
		}
	}
	c.changes = keep
	c.rebuildIndex()
}

// MarkRead sets Read=true on every change whose sequence number is in
// sequenceNumbers, leaving the change in the cache (the `read` side of
// spec.md §4.6's read/take distinction, as opposed to RemoveWhere's take).
func (c *Cache) MarkRead(sequenceNumbers map[int64]bool) {
	for i := range c.changes {
		if sequenceNumbers[c.changes[i].SequenceNumber] {
			c.changes[i].Read = true
		}
	}
}

// EvictExpired removes changes whose source time is older than Lifespan
// relative to now (spec.md §4.2: "lifespan eviction removes changes where
// now − change.timestamp > lifespan.duration").
func (c *Cache) EvictExpired(now time.Time) {
	if c.Lifespan <= 0 {
		return
	}
	c.RemoveWhere(func(ch Change) bool {
		return now.Sub(ch.SourceTime) > c.Lifespan
	})
}

func (c *Cache) rebuildIndex() {
	c.perInstance = make(map[InstanceHandle][]int)
	for i, ch := range c.changes {
		c.perInstance[ch.Instance] = append(c.perInstance[ch.Instance], i)
	}
}

// IterOrdered returns changes ordered per DestinationOrder, with a stable
// tie-break by reception timestamp (spec.md §4.2).
func (c *Cache) IterOrdered() []Change {
	out := make([]Change, len(c.changes))
	copy(out, c.changes)
	switch c.Order {
	case BySourceTimestamp:
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].SourceTime.Equal(out[j].SourceTime) {
				return out[i].SourceTime.Before(out[j].SourceTime)
			}
			return out[i].ReceptionTime.Before(out[j].ReceptionTime)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].ReceptionTime.Before(out[j].ReceptionTime)
		})
	}
	return out
}

// Len returns the number of samples currently cached.
func (c *Cache) Len() int { return len(c.changes) }

// ByInstance returns the cached changes for a single instance, oldest
// first.
func (c *Cache) ByInstance(inst InstanceHandle) []Change {
	idxs := c.perInstance[inst]
	out := make([]Change, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, c.changes[i])
	}
	return out
}
