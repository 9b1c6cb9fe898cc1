package sim

import (
	"fmt"
	"log"
	"sync"
)

// TimeTeller can be used to get the current simulated time.
type TimeTeller interface {
	CurrentTime() VTime
}

// A Scheduler owns the simulated clock and the event queue and drives every
// process in the simulation. Execution is strictly single-threaded and
// non-preemptive: a resumed process runs uninterrupted until it suspends or
// terminates before control returns to the drive loop.
type Scheduler struct {
	HookableBase

	timeLock sync.RWMutex
	now      VTime

	queue EventQueue
	seq   uint64

	processes []*Process

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewScheduler creates a Scheduler with an empty queue and the clock at
// zero.
func NewScheduler() *Scheduler {
	s := new(Scheduler)
	s.queue = NewEventQueue()
	return s
}

// A StartOption adjusts how Start launches a process.
type StartOption func(*startConfig)

type startConfig struct {
	args []any
	name string

	at    VTime
	atSet bool

	delay    VTime
	delaySet bool
}

// Args passes arguments to the process-executing function.
func Args(args ...any) StartOption {
	return func(c *startConfig) {
		c.args = args
	}
}

// Name assigns a name to the process, for logs and traces.
func Name(name string) StartOption {
	return func(c *startConfig) {
		c.name = name
	}
}

// At schedules the first resumption of the process at an absolute time,
// which must not be earlier than the current clock.
func At(t VTime) StartOption {
	return func(c *startConfig) {
		c.at = t
		c.atSet = true
	}
}

// Delay schedules the first resumption of the process after a non-negative
// delay. Delay takes precedence over At when both are given.
func Delay(d VTime) StartOption {
	return func(c *startConfig) {
		c.delay = d
		c.delaySet = true
	}
}

// Start creates a process around the given process-executing function and
// schedules its first resumption. The function must be a ProcessFunc, a
// Runner, or one of the recognized function forms; anything else fails with
// ErrNotAProcess. Validation happens before any clock movement.
func (s *Scheduler) Start(pem any, opts ...StartOption) (*Process, error) {
	cfg := startConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	fn, err := asProcessFunc(pem)
	if err != nil {
		return nil, err
	}

	now := s.readNow()
	startTime := now
	switch {
	case cfg.delaySet:
		if cfg.delay < 0 {
			return nil, fmt.Errorf("%w: %v", ErrNegativeDelay, cfg.delay)
		}
		startTime = now + cfg.delay
	case cfg.atSet:
		if cfg.at < now {
			return nil, fmt.Errorf("%w: %v < %v", ErrStartInPast, cfg.at, now)
		}
		startTime = cfg.at
	}

	p := &Process{
		id:        GetIDGenerator().Generate(),
		state:     StateScheduled,
		fn:        fn,
		args:      cfg.args,
		scheduler: s,
		resume:    make(chan resumeSignal),
		yield:     make(chan yieldSignal),
	}
	p.name = cfg.name
	if p.name == "" {
		p.name = "process-" + p.id
	}
	p.ctx = &Context{scheduler: s, proc: p}
	p.termination = s.newEvent("terminate", startTime)

	startEvt := s.newEvent("start", startTime)
	startEvt.Register(p)
	s.push(startEvt)

	s.processes = append(s.processes, p)

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosProcessStart,
		Item:   p,
	})

	return p, nil
}

// asProcessFunc resolves the accepted process-executing forms into the
// canonical ProcessFunc.
func asProcessFunc(pem any) (ProcessFunc, error) {
	switch fn := pem.(type) {
	case ProcessFunc:
		return fn, nil
	case func(ctx *Context, args ...any) (any, error):
		return fn, nil
	case func(ctx *Context) (any, error):
		return func(ctx *Context, _ ...any) (any, error) {
			return fn(ctx)
		}, nil
	case func(ctx *Context) error:
		return func(ctx *Context, _ ...any) (any, error) {
			return nil, fn(ctx)
		}, nil
	case Runner:
		return fn.Run, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotAProcess, pem)
}

// Simulate drives the simulation until the clock reaches the given bound.
// Events scheduled exactly at the bound stay in the queue for a later run;
// the clock is left at the bound. The bound must not be earlier than the
// current clock.
func (s *Scheduler) Simulate(until VTime) error {
	if until < s.readNow() {
		return fmt.Errorf("%w: %v", ErrUntilInPast, until)
	}
	return s.run(until, true)
}

// SimulateAll drives the simulation until the event queue is exhausted.
func (s *Scheduler) SimulateAll() error {
	return s.run(0, false)
}

func (s *Scheduler) run(until VTime, bounded bool) error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	for s.queue.Len() > 0 {
		s.pauseLock.Lock()

		evt := s.queue.Peek()
		if bounded && evt.Time() >= until {
			s.pauseLock.Unlock()
			break
		}
		s.queue.Pop()

		now := s.readNow()
		if evt.Time() < now {
			log.Panicf(
				"cannot fire event in the past, evt %s @ %.10f, now %.10f",
				evt.Kind(), evt.Time(), now,
			)
		}
		s.writeNow(evt.Time())

		hookCtx := HookCtx{
			Domain: s,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		s.InvokeHook(hookCtx)

		err := s.deliver(evt)

		hookCtx.Pos = HookPosAfterEvent
		s.InvokeHook(hookCtx)

		s.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}

	if bounded {
		s.writeNow(until)
	}

	return nil
}

// deliver fires the event and resumes every process on its resume list in
// registration order. Entries whose process has moved on to wait on a
// different event, after an interrupt for example, are skipped.
func (s *Scheduler) deliver(evt *Event) error {
	evt.fired = true

	for _, p := range evt.resumeList {
		if p.waitingOn != evt || !p.IsAlive() {
			continue
		}
		p.waitingOn = nil

		if err := s.resumeProcess(p, evt.value, evt.err); err != nil {
			return err
		}
	}

	return nil
}

// resumeProcess feeds the carried value or failure into the computation and
// runs it until its next suspension or completion.
func (s *Scheduler) resumeProcess(p *Process, value any, err error) error {
	p.state = StateActive

	if !p.started {
		p.started = true
		if err != nil {
			// Interrupted before the first run; there is no suspension
			// point to deliver the failure to.
			return s.finish(p, nil, err)
		}
		go p.run()
	} else {
		p.resume <- resumeSignal{value: value, err: err}
	}

	ys := <-p.yield
	if ys.done {
		return s.finish(p, ys.value, ys.err)
	}
	return s.handleYield(p, ys.request)
}

// handleYield classifies the suspension request the process produced and
// registers the process accordingly.
func (s *Scheduler) handleYield(p *Process, request any) error {
	if err := s.checkHoldProtocol(p, request); err != nil {
		p.kill()
		return err
	}

	switch req := request.(type) {
	case *Event:
		if req.isHold && req.holdDelta < 0 {
			p.kill()
			return fmt.Errorf("%w: %v", ErrNegativeHold, req.holdDelta)
		}
		req.Register(p)
		// Only holds are scheduled here. Other unfired events, a
		// termination event for example, enter the queue when they fire;
		// pushing them early would deliver them with no payload.
		if req.isHold && !req.fired && !req.queued {
			s.push(req)
		}
	case *Process:
		req.termination.Register(p)
	case nil:
		p.kill()
		return ErrEmptyYield
	default:
		p.kill()
		return fmt.Errorf("%w: %T", ErrIllegalYield, request)
	}

	p.state = StateSuspended
	return nil
}

// checkHoldProtocol catches the common mistake of building a hold without
// immediately suspending on it.
func (s *Scheduler) checkHoldProtocol(p *Process, request any) error {
	ctx := p.ctx

	if ctx.holdViolation || (ctx.pendingHold != nil && ctx.pendingHold != request) {
		return &ProtocolError{
			Process: p.name,
			Reason:  "hold constructed but not suspended on",
		}
	}

	ctx.pendingHold = nil
	return nil
}

// finish retires the process and fires its termination event with the final
// value or failure. A failure with no process waiting on the termination
// event has nowhere to be delivered and fails the simulation instead.
func (s *Scheduler) finish(p *Process, value any, err error) error {
	if protoErr := s.checkHoldProtocol(p, nil); protoErr != nil {
		p.state = StateFailed
		return protoErr
	}

	if err != nil {
		p.state = StateFailed
	} else {
		p.state = StateTerminated
	}

	p.termination.fire(value, err)

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosProcessTerminate,
		Item:   p,
		Detail: err,
	})

	if err != nil && len(p.termination.resumeList) == 0 {
		return fmt.Errorf("process %s failed: %w", p.name, err)
	}

	return nil
}

// newEvent creates an unfired event with a fresh sequence number.
func (s *Scheduler) newEvent(kind string, t VTime) *Event {
	return &Event{
		id:        GetIDGenerator().Generate(),
		kind:      kind,
		time:      t,
		seq:       s.nextSeq(),
		scheduler: s,
	}
}

// nextSeq mints the next sequence number. Termination events draw a fresh
// one when they fire, since that is the moment they become schedulable.
func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

// push commits an event to the queue.
func (s *Scheduler) push(evt *Event) {
	if evt.Time() < s.readNow() {
		log.Panic("scheduling an event earlier than current time")
	}
	evt.queued = true
	s.queue.Push(evt)
}

func (s *Scheduler) readNow() VTime {
	s.timeLock.RLock()
	t := s.now
	s.timeLock.RUnlock()
	return t
}

func (s *Scheduler) writeNow(t VTime) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

// CurrentTime returns the current simulated time.
func (s *Scheduler) CurrentTime() VTime {
	return s.readNow()
}

// QueueLen returns the number of events waiting in the queue.
func (s *Scheduler) QueueLen() int {
	return s.queue.Len()
}

// Processes returns a snapshot of every process the scheduler has started.
func (s *Scheduler) Processes() []*Process {
	out := make([]*Process, len(s.processes))
	copy(out, s.processes)
	return out
}

// Teardown kills every live process, releasing the goroutines parked on
// their suspension points, and drains the event queue. Call it to abandon a
// simulation, after a fatal error for example. The scheduler cannot be
// resumed afterwards.
func (s *Scheduler) Teardown() {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	for _, p := range s.processes {
		if p.IsAlive() {
			p.kill()
		}
	}

	for s.queue.Len() > 0 {
		s.queue.Pop()
	}
}

// Pause prevents the scheduler from firing more events until Continue is
// called.
func (s *Scheduler) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows a paused scheduler to fire events again.
func (s *Scheduler) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}
