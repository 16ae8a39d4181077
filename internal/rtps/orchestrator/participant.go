// Package orchestrator implements the per-participant task group spec.md
// §5 describes: one goroutine per receive socket and periodic sender, a
// status-evaluator tick, a listener-dispatch queue, all serialized by one
// logical lock over the participant's entity graph. Grounded on
// controller/cmd/destination/main.go's admin-server + signal-channel +
// done-chan shutdown shape, generalized from one gRPC server to this
// task set (SPEC_FULL.md §4.9).
package orchestrator

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lanterndds/rtpscore/internal/rtps/locator"
	"github.com/lanterndds/rtpscore/internal/rtps/status"
	"github.com/lanterndds/rtpscore/internal/rtps/transport"
)

// ListenerEvent is one entry on the listener-dispatch queue (spec.md §5:
// "a queue of (entity, status_kind) events").
type ListenerEvent struct {
	Entity *status.Dispatcher
	Kind   status.Kind
}

// ReceiveHandler processes one raw, undecoded frame arriving on a bound socket;
// it runs under Participant's logical lock.
type ReceiveHandler func(source locator.Locator, frame []byte)

// SenderTick is invoked each time a periodic sender's timer fires; it
// runs under Participant's logical lock.
type SenderTick func(now time.Time)

// StatusEvaluator is invoked each status-evaluator tick, for deadline and
// lifespan checks across the participant's caches; it runs under
// Participant's logical lock.
type StatusEvaluator func(now time.Time)

// Participant owns one domain participant's task group. The zero value
// is not usable; construct with New.
type Participant struct {
	mu sync.Mutex // the single logical lock spec.md §5 requires

	Timers *TimerQueue

	wg       sync.WaitGroup
	cancel   context.CancelFunc
	ctx      context.Context
	events   chan ListenerEvent
	log      *log.Entry

	statusEvaluators []StatusEvaluator
	evaluatorPeriod  time.Duration
}

// New constructs a Participant with its task group not yet started.
func New(entry *log.Entry, evaluatorPeriod time.Duration) *Participant {
	ctx, cancel := context.WithCancel(context.Background())
	return &Participant{
		Timers:          NewTimerQueue(),
		ctx:             ctx,
		cancel:          cancel,
		events:          make(chan ListenerEvent, 256),
		log:             entry,
		evaluatorPeriod: evaluatorPeriod,
	}
}

// Lock/Unlock expose the single logical lock to orchestrator-external
// code (e.g. façade calls from user goroutines) that must serialize with
// the task group per spec.md §5: "held across at most one operation,
// never across a suspension point."
func (p *Participant) Lock()   { p.mu.Lock() }
func (p *Participant) Unlock() { p.mu.Unlock() }

// StartReceiver spawns one receive task for t, suspending on "next
// datagram available" and invoking handler under the logical lock for
// each frame, per spec.md §5's task list.
func (p *Participant) StartReceiver(t transport.Transport, handler ReceiveHandler) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			source, frame, err := t.Recv(p.ctx)
			if err != nil {
				if p.ctx.Err() != nil {
					return
				}
				if p.log != nil {
					p.log.WithError(err).Debug("receive task error")
				}
				continue
			}
			p.mu.Lock()
			handler(source, frame)
			p.mu.Unlock()
		}
	}()
}

// StartPeriodicSender spawns one periodic sender task ticking every
// period, invoking tick under the logical lock, per spec.md §5.
func (p *Participant) StartPeriodicSender(period time.Duration, tick SenderTick) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-p.ctx.Done():
				return
			case now := <-ticker.C:
				p.mu.Lock()
				tick(now)
				p.mu.Unlock()
			}
		}
	}()
}

// AddStatusEvaluator registers a function the status-evaluator task runs
// every tick (deadline checks, lifespan eviction, lease expiry).
func (p *Participant) AddStatusEvaluator(eval StatusEvaluator) {
	p.statusEvaluators = append(p.statusEvaluators, eval)
}

// StartStatusEvaluator spawns the status-evaluator task spec.md §5 names,
// running every registered StatusEvaluator once per tick.
func (p *Participant) StartStatusEvaluator() {
	if p.evaluatorPeriod <= 0 {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.evaluatorPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-p.ctx.Done():
				return
			case now := <-ticker.C:
				p.mu.Lock()
				for _, eval := range p.statusEvaluators {
					eval(now)
				}
				p.mu.Unlock()
			}
		}
	}()
}

// Enqueue posts a listener-dispatch event; called from code already
// holding the logical lock (e.g. status.Dispatcher.Raise callers), never
// blocking on listener execution itself.
func (p *Participant) Enqueue(ev ListenerEvent) {
	select {
	case p.events <- ev:
	default:
		if p.log != nil {
			p.log.Warn("listener-dispatch queue full, dropping event")
		}
	}
}

// StartListenerDispatch spawns the listener-dispatch task spec.md §5
// names: it consumes (entity, status_kind) events and raises them,
// deliberately outside the logical lock so a slow or panicking listener
// (recovered inside status.Dispatcher.Raise) never blocks the receive or
// sender tasks.
func (p *Participant) StartListenerDispatch() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-p.ctx.Done():
				return
			case ev := <-p.events:
				ev.Entity.Raise(ev.Kind, 0)
			}
		}
	}()
}

// Shutdown sets the quit flag, cancels every task's context, and joins
// them, matching spec.md §5's cancellation model.
func (p *Participant) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
