// Package status implements the per-entity status-condition bitmask and
// the endpoint → group → participant listener fan-out described in
// spec.md §4.8.
package status

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Kind is one of the fixed DDS status kinds; the bit position doubles as
// the status-condition mask bit.
type Kind uint32

const (
	DataAvailable Kind = 1 << iota
	DataOnReaders
	RequestedDeadlineMissed
	OfferedDeadlineMissed
	RequestedIncompatibleQoS
	OfferedIncompatibleQoS
	SampleRejected
	SampleLost
	LivelinessChanged
	LivelinessLost
	PublicationMatched
	SubscriptionMatched
	InconsistentTopic
)

// Counts holds the generic total_count/total_count_change plus the
// kind-specific last_* fields a real status struct would carry; policy_id
// and instance_handle are the two last_* shapes spec.md §4.7/§4.2 need.
type Counts struct {
	TotalCount       int32
	TotalCountChange int32
	LastPolicyID     int
	LastInstanceHandle [16]byte
}

func (c *Counts) bump(policyID int) {
	c.TotalCount++
	c.TotalCountChange++
	c.LastPolicyID = policyID
}

// readAndClear returns the current counts and resets total_count_change,
// matching spec.md §4.8 point 4: "clears the *_change counters only when
// the status is read via its getter."
func (c *Counts) readAndClear() Counts {
	out := *c
	c.TotalCountChange = 0
	return out
}

// Listener is invoked with the status kind that fired; handlers read the
// updated Counts off the owning Dispatcher themselves via its getters.
type Listener func(kind Kind)

// Dispatcher owns one entity's condition mask, per-kind counters, and the
// three-level listener chain (endpoint → group → participant) spec.md
// §4.8 describes. A Dispatcher is also used, unchained, for group- and
// participant-level listeners themselves.
type Dispatcher struct {
	mu sync.Mutex

	condition Kind
	counts    map[Kind]*Counts

	// listenerMask and listener are the single installed listener and the
	// mask it was set with; SetListener replaces rather than accumulates,
	// per SPEC_FULL.md §10 item 3.
	listenerMask Kind
	listener     Listener

	group       *Dispatcher
	participant *Dispatcher

	log *log.Entry
}

// New constructs a Dispatcher with no listener installed and no group or
// participant parent; wire those with SetParentChain.
func New(entry *log.Entry) *Dispatcher {
	return &Dispatcher{counts: make(map[Kind]*Counts), log: entry}
}

// SetParentChain wires the group and participant listeners this
// dispatcher falls back to when its own listener doesn't cover a kind.
func (d *Dispatcher) SetParentChain(group, participant *Dispatcher) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.group = group
	d.participant = participant
}

// SetListener installs listener for the given mask, replacing whatever
// was previously installed (spec.md is silent; SPEC_FULL.md §10 item 3
// resolves this as replace-not-accumulate, following the original's
// set_listener semantics).
func (d *Dispatcher) SetListener(mask Kind, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listenerMask = mask
	d.listener = listener
}

// Counts returns a snapshot of kind's counters and clears its
// total_count_change (spec.md §4.8 point 4 — this method is the "getter").
func (d *Dispatcher) Counts(kind Kind) Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.counts[kind]
	if !ok {
		return Counts{}
	}
	return c.readAndClear()
}

// ConditionSet reports whether kind's bit is currently set in the
// status-condition mask.
func (d *Dispatcher) ConditionSet(kind Kind) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.condition&kind != 0
}

// Raise mutates kind's counters, sets the condition bit, and walks the
// listener chain (spec.md §4.8 points 1-3). policyID is recorded as
// last_policy_id on every call, zero included; callers raising kinds
// without a policy pass 0.
func (d *Dispatcher) Raise(kind Kind, policyID int) {
	d.mu.Lock()
	c, ok := d.counts[kind]
	if !ok {
		c = &Counts{}
		d.counts[kind] = c
	}
	c.bump(policyID)
	d.condition |= kind

	chain := d.listenerChain()
	d.mu.Unlock()

	d.dispatch(kind, chain)
}

// listenerChain must be called with d.mu held; it returns the three
// dispatchers to try in order (endpoint, group, participant).
func (d *Dispatcher) listenerChain() []*Dispatcher {
	chain := []*Dispatcher{d}
	if d.group != nil {
		chain = append(chain, d.group)
	}
	if d.participant != nil {
		chain = append(chain, d.participant)
	}
	return chain
}

// dispatch invokes the first listener in chain whose installed mask
// includes kind. DATA_AVAILABLE and DATA_ON_READERS go through the same
// chain as every other kind: no code in this module routes DATA_AVAILABLE
// to the subscriber's DATA_ON_READERS listener instead.
func (d *Dispatcher) dispatch(kind Kind, chain []*Dispatcher) {
	for _, link := range chain {
		link.mu.Lock()
		listener, mask := link.listener, link.listenerMask
		link.mu.Unlock()
		if listener != nil && mask&kind != 0 {
			d.safeInvoke(listener, kind)
			return
		}
	}
}

// safeInvoke recovers a panicking listener callback (spec.md §7: "panics
// there are caught and logged") so one bad listener cannot take down the
// participant.
func (d *Dispatcher) safeInvoke(listener Listener, kind Kind) {
	defer func() {
		if r := recover(); r != nil {
			if d.log != nil {
				d.log.Errorf("status listener panicked for kind %d: %v", kind, r)
			}
		}
	}()
	listener(kind)
}
