package sim

import "fmt"

// VTime defines a point in the simulated time space.
type VTime float64

// An Event is a single-fire token scheduled at a point in simulated time.
// Processes register on an event to be resumed when it fires, receiving the
// value or failure the event carries. Events sharing a time are ordered by
// their sequence number, which is assigned monotonically at creation, so
// simultaneous events always resume in creation order.
type Event struct {
	id   string
	kind string
	time VTime
	seq  uint64

	value any
	err   error

	fired  bool
	queued bool

	// Hold events validate their delta lazily, when the scheduler registers
	// the suspension, not when the event is built.
	isHold    bool
	holdDelta VTime

	resumeList []*Process

	scheduler *Scheduler
}

// ID returns the identifier assigned to the event at creation.
func (e *Event) ID() string {
	return e.id
}

// Kind describes what the event represents, such as "hold" or "terminate".
func (e *Event) Kind() string {
	return e.kind
}

// Time returns the simulated time at which the event fires. For termination
// events the time is only meaningful once the owning process has completed.
func (e *Event) Time() VTime {
	return e.time
}

// Seq returns the sequence number that breaks ties among same-time events.
func (e *Event) Seq() uint64 {
	return e.seq
}

// Value returns the value the event carries to its registered processes.
func (e *Event) Value() any {
	return e.value
}

// Err returns the failure the event carries, if any.
func (e *Event) Err() error {
	return e.err
}

// Fired returns true once the event has been delivered. A fired event is
// inert; it is retained only for diagnostics.
func (e *Event) Fired() bool {
	return e.fired
}

// Targets returns the names of the processes registered on the event.
func (e *Event) Targets() []string {
	names := make([]string, 0, len(e.resumeList))
	for _, p := range e.resumeList {
		names = append(names, p.Name())
	}
	return names
}

// Register adds a process to the event's resume list. Registering on an
// event that has already fired does not reanimate it; instead the process is
// resumed through a fresh immediate event at the current clock time, with a
// freshly assigned sequence number, carrying the same value or failure.
func (e *Event) Register(p *Process) {
	if e.fired {
		re := e.scheduler.newEvent("immediate", e.scheduler.readNow())
		re.value = e.value
		re.err = e.err
		re.Register(p)
		e.scheduler.push(re)
		return
	}

	e.resumeList = append(e.resumeList, p)
	p.waitingOn = e
}

// fire commits the event's payload and schedules it for delivery at the
// current clock time. Used for events whose time is unknown at creation,
// such as process termination.
func (e *Event) fire(value any, err error) {
	if e.fired || e.queued {
		panic(fmt.Sprintf("event %s fired more than once", e.id))
	}

	e.value = value
	e.err = err
	e.time = e.scheduler.readNow()
	e.seq = e.scheduler.nextSeq()
	e.scheduler.push(e)
}
